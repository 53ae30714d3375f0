// Package tui is the interactive dashboard of a multiplication run: one
// progress row per strategy, an event log, runtime metrics and the system
// load.
package tui

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/sysmon"
)

// Job runs one multiplication session, reporting through reporter and
// presenter, and returns the exit code of the session. The dashboard calls
// it again when the user asks for a rerun.
type Job func(ctx context.Context, reporter orchestration.ProgressReporter, presenter *TUIResultPresenter) int

// Options describes a dashboard session.
type Options struct {
	// Names are the strategies of the run, in execution order.
	Names []string
	// Workload is a one-line description of the operands.
	Workload string
	Version  string
}

// ExecutionState holds the execution-related fields of a session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	done       bool
	exitCode   int
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
	rows   int // strategy rows
}

// Layout constants of the dashboard.
const (
	headerHeight          = 1
	footerHeight          = 1
	minBodyHeight         = 8
	LogsPanelWidthPercent = 60
	MetricsPanelHeight    = 9
	tickInterval          = 500 * time.Millisecond
)

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) leftWidth() int {
	return l.width * LogsPanelWidthPercent / 100
}

func (l LayoutManager) rightWidth() int {
	return l.width - l.leftWidth()
}

// strategiesHeight fits the title, the column header and one line per row.
func (l LayoutManager) strategiesHeight() int {
	return min(l.rows+4, l.bodyHeight()/2)
}

func (l LayoutManager) logsHeight() int {
	return l.bodyHeight() - l.strategiesHeight()
}

func (l LayoutManager) metricsHeight() int {
	return min(MetricsPanelHeight, l.bodyHeight()/2)
}

func (l LayoutManager) chartHeight() int {
	return l.bodyHeight() - l.metricsHeight()
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header     HeaderModel
	strategies StrategiesModel
	logs       LogsModel
	metrics    MetricsModel
	chart      ChartModel
	footer     FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	job       Job
	opts      Options
	ref       *programRef
	paused    bool
}

// NewModel creates a dashboard that runs job under parentCtx.
func NewModel(parentCtx context.Context, job Job, opts Options) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	keys := DefaultKeyMap()

	logs := NewLogsModel()
	logs.AddStart(opts.Workload, opts.Names)

	return Model{
		header:     NewHeaderModel(opts.Version, opts.Workload),
		strategies: NewStrategiesModel(opts.Names),
		logs:       logs,
		metrics:    NewMetricsModel(),
		chart:      NewChartModel(),
		footer:     NewFooterModel(keys),
		keymap:     keys,
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		LayoutManager: LayoutManager{rows: len(opts.Names)},
		parentCtx:     parentCtx,
		job:           job,
		opts:          opts,
		ref:           &programRef{},
	}
}

// Init starts the run, the sampling ticker and the context watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startCalculationCmd(m.ref, m.ctx, m.job, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// stale reports whether a message belongs to an earlier run.
func (m Model) stale(gen uint64) bool { return gen != m.generation }

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if m.stale(msg.Generation) || m.paused {
			return m, nil
		}
		m.strategies.Update(msg)
		m.chart.AddDataPoint(msg.AverageProgress, msg.ETA)
		m.metrics.UpdateProgress(msg.AverageProgress)
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case ComparisonResultsMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		m.strategies.SetResults(msg.Results)
		m.logs.AddResults(msg.Results)
		return m, nil

	case FinalResultMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		m.logs.AddFinalResult(msg)
		m.metrics.SetResult(msg.Result)
		return m, nil

	case EvaluationMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		m.logs.AddEvaluation(msg.Comparison, msg.T0, msg.T1)
		m.metrics.SetEvaluation(msg.Comparison)
		return m, nil

	case ErrorMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		m.logs.AddError(msg)
		m.footer.SetError(true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		return m, nil

	case CalculationCompleteMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.chart.SetDone(m.header.Elapsed())
		m.footer.SetDone(true)
		m.footer.SetError(msg.ExitCode != apperrors.ExitSuccess)
		m.logs.AddStatus(msg.ExitCode, statusText(msg.ExitCode))
		return m, nil

	case ContextCancelledMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		if !m.done {
			m.done = true
			m.exitCode = apperrors.ExitCode(msg.Err)
			m.header.SetDone()
			m.footer.SetDone(true)
		}
		return m, tea.Quit
	}

	return m, nil
}

func statusText(code int) string {
	switch code {
	case apperrors.ExitSuccess:
		return "Run complete. Press r to rerun or q to quit."
	case apperrors.ExitErrorMismatch:
		return "Products disagree beyond the tolerance."
	default:
		return fmt.Sprintf("Run failed (exit code %d).", code)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		m.cancel()
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)

		m.header.Reset()
		m.strategies.Reset()
		m.logs.Reset()
		m.logs.AddStart(m.opts.Workload, m.opts.Names)
		m.chart.Reset()
		m.metrics = NewMetricsModel()
		m.footer.SetDone(false)
		m.footer.SetError(false)
		m.footer.SetPaused(false)
		m.layoutPanels()
		m.done = false
		m.paused = false
		m.exitCode = apperrors.ExitSuccess

		return m, tea.Batch(
			tickCmd(),
			startCalculationCmd(m.ref, m.ctx, m.job, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)

	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down),
		key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		m.logs.Update(msg)
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	left := lipgloss.JoinVertical(lipgloss.Left, m.strategies.View(), m.logs.View())
	right := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.strategies.SetSize(m.leftWidth(), m.strategiesHeight())
	m.logs.SetSize(m.leftWidth(), m.logsHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// Run shows the dashboard until the user quits or ctx ends, and returns the
// exit code of the last run.
func Run(ctx context.Context, job Job, opts Options, programOpts ...tea.ProgramOption) int {
	// The ui theme is set by now.
	initTUIStyles()

	model := NewModel(ctx, job, opts)
	defer model.cancel()

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, programOpts...)...)
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startCalculationCmd runs job in the command goroutine.
func startCalculationCmd(ref *programRef, ctx context.Context, job Job, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref, gen: gen}
		presenter := &TUIResultPresenter{ref: ref, gen: gen}
		return CalculationCompleteMsg{ExitCode: job(ctx, reporter, presenter), Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			Alloc:        ms.Alloc,
			HeapSys:      ms.HeapSys,
			NumGC:        ms.NumGC,
			PauseTotalNs: ms.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd waits for ctx to end.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
