package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/pseries/internal/format"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
)

// MetricsModel displays runtime memory statistics and, once known, the
// figures of the retained product.
type MetricsModel struct {
	alloc        uint64
	heapSys      uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int

	speed        float64 // progress per second
	lastProgress float64
	lastUpdate   time.Time

	result     *orchestration.CalculationResult
	evaluation *series.Comparison

	width  int
	height int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{lastUpdate: time.Now()}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapSys = msg.HeapSys
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.NumGoroutine
}

// UpdateProgress updates the smoothed progress rate.
func (m *MetricsModel) UpdateProgress(progress float64) {
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt <= 0.05 {
		return
	}
	if dp := progress - m.lastProgress; dp > 0 {
		instant := dp / dt
		if m.speed > 0 {
			m.speed = 0.7*m.speed + 0.3*instant
		} else {
			m.speed = instant
		}
	}
	m.lastProgress = progress
	m.lastUpdate = now
}

// SetResult stores the retained product.
func (m *MetricsModel) SetResult(r orchestration.CalculationResult) {
	m.result = &r
}

// SetEvaluation stores the pointwise check of the retained product.
func (m *MetricsModel) SetEvaluation(c series.Comparison) {
	m.evaluation = &c
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder
	rows.WriteString(panelTitleStyle.Render(" Metrics"))

	pipe := metricLabelStyle.Render(" | ")
	fmt.Fprintf(&rows, "\n  %s %s%s%s %s",
		metricLabelStyle.Render("Heap:"), metricValueStyle.Render(format.FormatBytes(m.alloc)+" / "+format.FormatBytes(m.heapSys)),
		pipe,
		metricLabelStyle.Render("GC:"), metricValueStyle.Render(fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6)))

	colWidth := max((m.width-6)/2, 0)
	left := []string{formatMetricCol("Rate:", fmt.Sprintf("%.1f%%/s", m.speed*100), colWidth)}
	right := []string{formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth)}

	if r := m.result; r != nil && r.Product != nil {
		load := "-"
		if r.Report.Cardinality > 0 {
			load = fmt.Sprintf("%.3f", float64(r.Report.Terms)/float64(r.Report.Cardinality))
		}
		left = append(left,
			formatMetricCol("Terms:", format.FormatCount(r.Product.Len()), colWidth),
			formatMetricCol("Kept:", format.FormatCount(r.Report.Kept), colWidth),
			formatMetricCol("Used:", r.Report.Used.String(), colWidth),
		)
		right = append(right,
			formatMetricCol("Norm:", fmt.Sprintf("%.6g", r.Product.Norm()), colWidth),
			formatMetricCol("Truncated:", format.FormatCount(r.Report.Truncated), colWidth),
			formatMetricCol("Load:", load, colWidth),
		)
	}
	if e := m.evaluation; e != nil {
		left = append(left, formatMetricCol("Max error:", fmt.Sprintf("%.3g", e.MaxError), colWidth))
		right = append(right, formatMetricCol("RMS:", fmt.Sprintf("%.3g", e.Sigma), colWidth))
	}

	for i := range left {
		rows.WriteString("\n")
		rows.WriteString(left[i])
		rows.WriteString(right[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-11s", label)),
		metricValueStyle.Render(value))
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}
