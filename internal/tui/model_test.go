package tui

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/pseries/internal/coefficient"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/workload"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func noopJob(context.Context, orchestration.ProgressReporter, *TUIResultPresenter) int {
	return apperrors.ExitSuccess
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(context.Background(), noopJob, Options{
		Names:    []string{"dense", "hashed"},
		Workload: "3 args, degree 6",
		Version:  "v1.2.3",
	})
	t.Cleanup(m.cancel)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	view := m.View()
	for _, s := range []string{"pseries monitor v1.2.3", "3 args, degree 6", "Strategies", "dense", "hashed", "Events", "Metrics", "Progress", "RUNNING", "quit"} {
		assert.Contains(t, view, s)
	}
}

func TestModel_RunLifecycle(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})

	m, _ = update(t, m, ProgressMsg{TaskIndex: 1, Value: 0.5, AverageProgress: 0.25})
	assert.Equal(t, 0.5, m.strategies.progress[1])
	assert.Equal(t, statusRunning, m.strategies.status[1])
	assert.Equal(t, 0.25, m.chart.averageProgress)

	// Messages of an earlier run are ignored.
	m, _ = update(t, m, ProgressMsg{TaskIndex: 0, Value: 0.9, Generation: 7})
	assert.Zero(t, m.strategies.progress[0])

	results := []orchestration.CalculationResult{stubResult("hashed"), stubResult("dense")}
	m, _ = update(t, m, ComparisonResultsMsg{Results: results})
	assert.Equal(t, []taskStatus{statusDone, statusDone}, m.strategies.status)
	assert.Same(t, &results[1], m.strategies.results[0])

	m, _ = update(t, m, FinalResultMsg{Result: results[0], Details: true})
	require.NotNil(t, m.metrics.result)
	m, _ = update(t, m, EvaluationMsg{Comparison: series.Comparison{Samples: 5, MaxError: 1e-13}, T0: 0, T1: 1})
	require.NotNil(t, m.metrics.evaluation)

	m, cmd := update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitSuccess})
	assert.Nil(t, cmd)
	assert.True(t, m.done)
	assert.Equal(t, apperrors.ExitSuccess, m.exitCode)
	view := m.View()
	assert.Contains(t, view, "DONE")
	assert.Contains(t, view, "Run complete")

	// Ticks stop once done.
	_, cmd = update(t, m, TickMsg{})
	assert.Nil(t, cmd)
}

func TestModel_FailedRun(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m, _ = update(t, m, ErrorMsg{Err: apperrors.CapacityError{Resource: "operand terms", Requested: 9, Limit: 4}})
	m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitErrorCapacity})

	assert.Equal(t, apperrors.ExitErrorCapacity, m.exitCode)
	view := m.View()
	assert.Contains(t, view, "ERROR")
	assert.Contains(t, view, "operand terms")
}

func TestModel_Keys(t *testing.T) {
	t.Run("quit while running", func(t *testing.T) {
		m := newTestModel(t)
		m, cmd := update(t, m, runeKey('q'))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, apperrors.ExitErrorCanceled, m.exitCode)
		assert.Error(t, m.ctx.Err())
	})

	t.Run("quit when done keeps the exit code", func(t *testing.T) {
		m := newTestModel(t)
		m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitErrorMismatch})
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
		assert.Equal(t, apperrors.ExitErrorMismatch, m.exitCode)
	})

	t.Run("pause", func(t *testing.T) {
		m := newTestModel(t)
		m, _ = update(t, m, runeKey('p'))
		assert.True(t, m.paused)
		m, _ = update(t, m, ProgressMsg{TaskIndex: 0, Value: 0.5})
		assert.Zero(t, m.strategies.progress[0])
		_, cmd := update(t, m, TickMsg{})
		assert.NotNil(t, cmd)
		m, _ = update(t, m, runeKey('p'))
		assert.False(t, m.paused)
	})

	t.Run("rerun", func(t *testing.T) {
		m := newTestModel(t)
		m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
		oldCtx := m.ctx
		m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitErrorGeneric})

		m, cmd := update(t, m, runeKey('r'))
		t.Cleanup(m.cancel)
		require.NotNil(t, cmd)
		assert.Equal(t, uint64(1), m.generation)
		assert.False(t, m.done)
		assert.Equal(t, apperrors.ExitSuccess, m.exitCode)
		assert.Error(t, oldCtx.Err())
		assert.NoError(t, m.ctx.Err())

		// The completion of the first run no longer counts.
		m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitErrorGeneric, Generation: 0})
		assert.False(t, m.done)
	})

	t.Run("scroll", func(t *testing.T) {
		m := newTestModel(t)
		m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Nil(t, cmd)
	})
}

func TestModel_ContextCancelled(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, ContextCancelledMsg{Err: context.DeadlineExceeded})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, apperrors.ExitErrorTimeout, m.exitCode)

	// The run finished first: the dashboard closes with the run's code.
	m = newTestModel(t)
	m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitErrorMismatch})
	m, cmd = update(t, m, ContextCancelledMsg{Err: context.DeadlineExceeded})
	require.NotNil(t, cmd)
	assert.Equal(t, apperrors.ExitErrorMismatch, m.exitCode)

	m = newTestModel(t)
	_, cmd = update(t, m, ContextCancelledMsg{Err: context.Canceled, Generation: 3})
	assert.Nil(t, cmd)
}

func TestStartCalculationCmd(t *testing.T) {
	job := func(ctx context.Context, reporter orchestration.ProgressReporter, presenter *TUIResultPresenter) int {
		env := series.NewEnv[coefficient.Real](series.DefaultSettings())
		a, b, err := workload.Generate(env, workload.Spec{Width: 2, Degree: 3, Spread: 0.5}, func(x float64) coefficient.Real { return coefficient.Real(x) })
		if err != nil {
			return presenter.HandleError(err, 0, io.Discard)
		}
		results := orchestration.ExecuteMultiplications(ctx, a, b, series.Strategies, reporter, io.Discard)
		return orchestration.AnalyzeComparisonResults(results, orchestration.PresentationOptions{}, presenter, presenter, io.Discard)
	}

	msg := startCalculationCmd(&programRef{}, context.Background(), job, 4)()
	assert.Equal(t, CalculationCompleteMsg{ExitCode: apperrors.ExitSuccess, Generation: 4}, msg)
}

func TestSampleCmds(t *testing.T) {
	mem, ok := sampleMemStatsCmd()().(MemStatsMsg)
	require.True(t, ok)
	assert.NotZero(t, mem.HeapSys)
	assert.Positive(t, mem.NumGoroutine)

	_, ok = sampleSysStatsCmd()().(SysStatsMsg)
	assert.True(t, ok)
}

func TestWatchContextCmd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, ContextCancelledMsg{Err: context.Canceled, Generation: 2}, watchContextCmd(ctx, 2)())
}

func TestLayoutManager(t *testing.T) {
	l := LayoutManager{width: 100, height: 30, rows: 3}
	assert.Equal(t, 28, l.bodyHeight())
	assert.Equal(t, 60, l.leftWidth())
	assert.Equal(t, 40, l.rightWidth())
	assert.Equal(t, 7, l.strategiesHeight())
	assert.Equal(t, 21, l.logsHeight())
	assert.Equal(t, MetricsPanelHeight, l.metricsHeight())
	assert.Equal(t, 19, l.chartHeight())

	small := LayoutManager{width: 40, height: 3, rows: 8}
	assert.Equal(t, minBodyHeight, small.bodyHeight())
	assert.Equal(t, minBodyHeight/2, small.strategiesHeight())
}
