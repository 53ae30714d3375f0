package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/agbru/pseries/internal/format"
)

const (
	// sparklineOverhead is the width taken by the border, label and value
	// around a sparkline.
	sparklineOverhead = 17
	// minSparklineHeight is the panel height below which sparklines are hidden.
	minSparklineHeight = 9
	defaultHistory     = 60
)

// ChartModel shows the average progress of the run and the system load.
type ChartModel struct {
	bar             progress.Model
	averageProgress float64
	eta             time.Duration
	done            bool
	total           time.Duration
	cpuHistory      *History
	memHistory      *History
	width           int
	height          int
}

// NewChartModel creates an empty chart panel.
func NewChartModel() ChartModel {
	return ChartModel{
		bar:        progress.New(progress.WithSolidFill(progressColor), progress.WithoutPercentage()),
		cpuHistory: NewHistory(defaultHistory),
		memHistory: NewHistory(defaultHistory),
	}
}

// SetSize updates dimensions and resizes the histories to the sparkline width.
func (c *ChartModel) SetSize(w, h int) {
	c.width, c.height = w, h
	c.bar.Width = max(w-14, 0)
	c.cpuHistory.Resize(w - sparklineOverhead)
	c.memHistory.Resize(w - sparklineOverhead)
}

// AddDataPoint records an aggregated progress update.
func (c *ChartModel) AddDataPoint(avg float64, eta time.Duration) {
	c.averageProgress = avg
	c.eta = eta
}

// UpdateSysStats records a system sample.
func (c *ChartModel) UpdateSysStats(cpuPct, memPct float64) {
	c.cpuHistory.Push(cpuPct)
	c.memHistory.Push(memPct)
}

// SetDone freezes the panel with the total run time.
func (c *ChartModel) SetDone(total time.Duration) {
	c.done = true
	c.total = total
	c.averageProgress = 1
}

// Reset clears the panel for a new run.
func (c *ChartModel) Reset() {
	c.averageProgress, c.eta = 0, 0
	c.done, c.total = false, 0
	c.cpuHistory.Reset()
	c.memHistory.Reset()
}

func (c ChartModel) renderProgressBar() string {
	if c.bar.Width < 4 {
		return ""
	}
	return fmt.Sprintf("  %s %5.1f%%", c.bar.ViewAs(c.averageProgress), c.averageProgress*100)
}

// View renders the panel.
func (c ChartModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(" Progress"))
	if bar := c.renderProgressBar(); bar != "" {
		b.WriteString("\n" + bar)
	}
	if c.done {
		fmt.Fprintf(&b, "\n  %s %s", metricLabelStyle.Render("Done in"), metricValueStyle.Render(format.FormatExecutionDuration(c.total)))
	} else {
		fmt.Fprintf(&b, "\n  %s %s", metricLabelStyle.Render("ETA:"), metricValueStyle.Render(format.FormatETA(c.eta)))
	}

	if c.height >= minSparklineHeight {
		b.WriteString("\n")
		fmt.Fprintf(&b, "\n  %s %s %s", metricLabelStyle.Render("CPU"),
			cpuSparklineStyle.Render(RenderSparkline(c.cpuHistory.Samples())),
			metricValueStyle.Render(fmt.Sprintf("%5.1f%%", c.cpuHistory.Last())))
		fmt.Fprintf(&b, "\n  %s %s %s", metricLabelStyle.Render("MEM"),
			memSparklineStyle.Render(RenderSparkline(c.memHistory.Samples())),
			metricValueStyle.Render(fmt.Sprintf("%5.1f%%", c.memHistory.Last())))
	}

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(b.String())
}
