package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/pseries/internal/format"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
)

// maxDetailTerms bounds the product terms written to the log.
const maxDetailTerms = 200

// LogsModel is the scrollable event log.
type LogsModel struct {
	vp    viewport.Model
	lines []string
	width int
}

// NewLogsModel creates an empty log.
func NewLogsModel() LogsModel {
	return LogsModel{vp: viewport.New(0, 0)}
}

// SetSize updates dimensions. The title and the border take three rows.
func (l *LogsModel) SetSize(w, h int) {
	l.width = w
	l.vp.Width = max(w-2, 0)
	l.vp.Height = max(h-3, 1)
	l.refresh()
}

// Reset clears the log.
func (l *LogsModel) Reset() {
	l.lines = nil
	l.refresh()
}

// Update forwards scrolling keys to the viewport.
func (l *LogsModel) Update(msg tea.Msg) {
	l.vp, _ = l.vp.Update(msg)
}

func (l *LogsModel) add(line string) {
	l.lines = append(l.lines, dimStyle.Render(time.Now().Format("15:04:05"))+" "+line)
	l.refresh()
}

func (l *LogsModel) refresh() {
	l.vp.SetContent(strings.Join(l.lines, "\n"))
	l.vp.GotoBottom()
}

// AddStart logs the start of a run.
func (l *LogsModel) AddStart(workload string, names []string) {
	l.add(fmt.Sprintf("%s %s with %s", accentStyle.Render("Multiplying"), workload, strings.Join(names, ", ")))
}

// AddResults logs one line per strategy.
func (l *LogsModel) AddResults(results []orchestration.CalculationResult) {
	for _, r := range results {
		if r.Err != nil {
			l.add(fmt.Sprintf("%s %s: %v", errorStyle.Render("✗"), r.Name, r.Err))
			continue
		}
		l.add(fmt.Sprintf("%s %s: %s terms in %s (used %s, deviation %.2g)",
			successStyle.Render("✓"), r.Name, format.FormatCount(r.Report.Terms),
			format.FormatExecutionDuration(r.Duration), r.Report.Used, r.Deviation))
	}
}

// AddFinalResult logs the retained product and, with details, its terms.
func (l *LogsModel) AddFinalResult(msg FinalResultMsg) {
	r := msg.Result
	if r.Product == nil {
		return
	}
	line := fmt.Sprintf("Product: %s terms, norm %.12g, footprint %s",
		format.FormatCount(r.Product.Len()), r.Product.Norm(), format.FormatBytes(r.Product.Footprint()))
	if r.Report.Fallback {
		line += warningStyle.Render(" (dense scratch over budget)")
	}
	l.add(line)
	if !msg.Details {
		return
	}
	terms := strings.Split(strings.TrimRight(r.Product.String(), "\n"), "\n")
	if len(terms) > 0 {
		terms = terms[1:] // header
	}
	for i, t := range terms {
		if i == maxDetailTerms {
			l.add(dimStyle.Render(fmt.Sprintf("  ... %d more", len(terms)-maxDetailTerms)))
			break
		}
		l.add("  " + t)
	}
}

// AddEvaluation logs the pointwise check.
func (l *LogsModel) AddEvaluation(c series.Comparison, t0, t1 float64) {
	l.add(fmt.Sprintf("Evaluation on [%g, %g] (%d samples): max error %.3g, rms %.3g", t0, t1, c.Samples, c.MaxError, c.Sigma))
}

// AddError logs a failed run.
func (l *LogsModel) AddError(msg ErrorMsg) {
	l.add(errorStyle.Render(fmt.Sprintf("Error: %v", msg.Err)))
}

// AddStatus logs the outcome of a run.
func (l *LogsModel) AddStatus(exitCode int, text string) {
	style := successStyle
	if exitCode != 0 {
		style = errorStyle
	}
	l.add(style.Render(text))
}

// View renders the log panel.
func (l LogsModel) View() string {
	return panelStyle.
		Width(max(l.width-2, 0)).
		Render(panelTitleStyle.Render(" Events") + "\n" + l.vp.View())
}
