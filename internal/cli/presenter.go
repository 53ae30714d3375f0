package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/format"
	"github.com/agbru/pseries/internal/metrics"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and a progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numTasks int, out io.Writer) {
	DisplayProgress(wg, progressChan, numTasks, out)
}

// CLIColorProvider supplies the active theme's colors to error handling.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// CLIResultPresenter presents results as styled terminal output.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// comparisonHeaders are the columns of the comparison table.
var comparisonHeaders = []string{"Strategy", "Used", "Duration", "Terms", "Pairs kept", "Truncated", "Status"}

// PresentComparisonTable renders one row per strategy. Cells are padded
// before styling so escape codes do not break the alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.CalculationResult, out io.Writer) {
	st := ui.CurrentStyles()
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		used := res.Report.Used.String()
		if res.Report.Fallback {
			used += " (fallback)"
		} else if res.Report.Scalar {
			used = "scalar"
		}
		row := []string{res.Name, used, formatDuration(res.Duration), "-", "-", "-"}
		if res.Err == nil {
			row[3] = format.FormatCount(res.Report.Terms)
			row[4] = format.FormatCount(res.Report.Kept)
			row[5] = format.FormatCount(res.Report.Truncated)
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(comparisonHeaders)-1)
	for i := range widths {
		widths[i] = lipgloss.Width(comparisonHeaders[i])
		for _, row := range rows {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	fmt.Fprintf(out, "\n%s\n", st.Border.Render("--- Comparison Summary ---"))
	var header strings.Builder
	for i, h := range comparisonHeaders {
		if i < len(widths) {
			header.WriteString(st.Header.Render(h) + strings.Repeat(" ", widths[i]-lipgloss.Width(h)+3))
		} else {
			header.WriteString(st.Header.Render(h))
		}
	}
	fmt.Fprintln(out, header.String())

	for i, row := range rows {
		var line strings.Builder
		for j, cell := range row {
			padded := cell + strings.Repeat(" ", widths[j]-lipgloss.Width(cell)+3)
			if j == 0 {
				line.WriteString(st.Name.Render(padded))
			} else {
				line.WriteString(st.Value.Render(padded))
			}
		}
		if err := results[i].Err; err != nil {
			line.WriteString(st.Failure.Render(fmt.Sprintf("❌ Failure (%v)", err)))
		} else if results[i].Deviation > 0 {
			line.WriteString(st.Success.Render(fmt.Sprintf("✅ Success (deviation %.2g)", results[i].Deviation)))
		} else {
			line.WriteString(st.Success.Render("✅ Success"))
		}
		fmt.Fprintln(out, line.String())
	}
}

// PresentResult displays the retained product.
func (CLIResultPresenter) PresentResult(result orchestration.CalculationResult, details bool, out io.Writer) {
	DisplayResult(result, details, out)
}

// FormatDuration formats a duration with the CLI's duration formatting.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError reports a failed run and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// DisplayMemoryStats shows the runtime memory activity of a run.
func DisplayMemoryStats(m metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(m.HeapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(m.TotalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", m.NumGC)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(m.PauseTotalNs)/1e6)
}

// DisplayMetrics lists the counters recorded during the run.
func DisplayMetrics(samples []metrics.Sample, out io.Writer) {
	if len(samples) == 0 {
		return
	}
	fmt.Fprintf(out, "\nCounters:\n")
	for _, s := range samples {
		name := s.Name
		if s.Labels != "" {
			name += "{" + s.Labels + "}"
		}
		fmt.Fprintf(out, "  %-56s %s\n", name, format.FormatNumberString(fmt.Sprintf("%.0f", s.Value)))
	}
}
