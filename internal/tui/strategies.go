package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/pseries/internal/format"
	"github.com/agbru/pseries/internal/orchestration"
)

type taskStatus int

const (
	statusPending taskStatus = iota
	statusRunning
	statusDone
	statusFailed
)

func (s taskStatus) render() string {
	switch s {
	case statusRunning:
		return accentStyle.Render("RUN ")
	case statusDone:
		return successStyle.Render("OK  ")
	case statusFailed:
		return errorStyle.Render("ERR ")
	default:
		return dimStyle.Render("WAIT")
	}
}

// strategyColumns is the width of every column but the progress bar, the
// border included.
const strategyColumns = 48

// StrategiesModel shows one progress row per running strategy.
type StrategiesModel struct {
	names    []string
	progress []float64
	status   []taskStatus
	results  []*orchestration.CalculationResult
	bar      progress.Model
	width    int
	height   int
}

// NewStrategiesModel creates a table with one pending row per name.
func NewStrategiesModel(names []string) StrategiesModel {
	s := StrategiesModel{
		names: names,
		bar:   progress.New(progress.WithSolidFill(progressColor), progress.WithoutPercentage()),
	}
	s.Reset()
	return s
}

// SetSize updates dimensions.
func (s *StrategiesModel) SetSize(w, h int) {
	s.width, s.height = w, h
	s.bar.Width = max(w-strategyColumns, 4)
}

// Reset marks every row pending.
func (s *StrategiesModel) Reset() {
	s.progress = make([]float64, len(s.names))
	s.status = make([]taskStatus, len(s.names))
	s.results = make([]*orchestration.CalculationResult, len(s.names))
}

// Update records a progress update.
func (s *StrategiesModel) Update(msg ProgressMsg) {
	i := msg.TaskIndex
	if i < 0 || i >= len(s.names) || s.status[i] >= statusDone {
		return
	}
	s.progress[i] = msg.Value
	s.status[i] = statusRunning
}

// SetResults matches the results to the rows by name, in row order.
func (s *StrategiesModel) SetResults(results []orchestration.CalculationResult) {
	assigned := make([]bool, len(s.names))
	for k := range results {
		r := &results[k]
		for i, name := range s.names {
			if assigned[i] || name != r.Name {
				continue
			}
			assigned[i] = true
			s.results[i] = r
			if r.Err != nil {
				s.status[i] = statusFailed
			} else {
				s.status[i] = statusDone
				s.progress[i] = 1
			}
			break
		}
	}
}

// View renders the table.
func (s StrategiesModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(" Strategies"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-8s %-*s %7s %10s %-4s %10s",
		"Name", s.bar.Width, "Progress", "%", "Duration", "", "Deviation")))

	for i, name := range s.names {
		dur, dev := "-", "-"
		if r := s.results[i]; r != nil {
			dur = format.FormatExecutionDuration(r.Duration)
			if r.Err == nil {
				dev = fmt.Sprintf("%.2g", r.Deviation)
			}
		}
		fmt.Fprintf(&b, "\n  %-8s %s %6.1f%% %10s %s %10s",
			name, s.bar.ViewAs(s.progress[i]), s.progress[i]*100, dur, s.status[i].render(), dev)
	}

	return panelStyle.
		Width(max(s.width-2, 0)).
		Height(max(s.height-2, 0)).
		Render(b.String())
}

// Height returns the rendered height of the table.
func (s StrategiesModel) Height() int {
	return lipgloss.Height(s.View())
}
