package tui

import (
	"time"

	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
)

// ProgressMsg carries one aggregated progress update of a running strategy.
type ProgressMsg struct {
	TaskIndex       int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	Generation      uint64
}

// ProgressDoneMsg is sent once the progress channel of a run is closed.
type ProgressDoneMsg struct {
	Generation uint64
}

// ComparisonResultsMsg carries the sorted results of every strategy.
type ComparisonResultsMsg struct {
	Results    []orchestration.CalculationResult
	Generation uint64
}

// FinalResultMsg carries the retained product.
type FinalResultMsg struct {
	Result     orchestration.CalculationResult
	Details    bool
	Generation uint64
}

// EvaluationMsg carries the pointwise check of the retained product.
type EvaluationMsg struct {
	Comparison series.Comparison
	T0, T1     float64
	Generation uint64
}

// ErrorMsg reports a failed run.
type ErrorMsg struct {
	Err        error
	Duration   time.Duration
	Generation uint64
}

// TickMsg drives the periodic sampling of runtime and system statistics.
type TickMsg time.Time

// MemStatsMsg is a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapSys      uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg is a system-wide CPU and memory sample, in percent.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// CalculationCompleteMsg is sent when a run returns.
type CalculationCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the run context ends before the run.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
