package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/pseries/internal/series"
)

// ProgressUpdate carries the completed fraction of one running strategy.
type ProgressUpdate struct {
	// TaskIndex is the position of the strategy in the executed list.
	TaskIndex int
	// Value is the completed fraction, in [0, 1].
	Value float64
}

// Product is the read-only view of a product series used by presenters.
type Product interface {
	Len() int
	Norm() float64
	Footprint() uint64
	String() string
}

// CalculationResult is the outcome of one strategy. It is the shared type
// between orchestration and presentation.
type CalculationResult struct {
	// Name is the strategy requested.
	Name string
	// Product is nil when Err is set.
	Product Product
	// Report describes the multiplication that ran.
	Report series.Report
	// Duration is the wall time of the multiplication.
	Duration time.Duration
	// Deviation is the norm of the difference with the reference product,
	// relative to the reference norm.
	Deviation float64
	// Err is any error the multiplication returned.
	Err error
}

// PresentationOptions configures how results are presented.
type PresentationOptions struct {
	// Details prints the product terms.
	Details bool
	// Tolerance is the largest relative deviation accepted between products.
	Tolerance float64
}

// ProgressReporter displays the progress of running strategies. It is run in
// its own goroutine and returns once progressChan is closed.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer) {
	f(wg, progressChan, numTasks, out)
}

// NullProgressReporter drains the progress channel without output.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter presents strategy results.
type ResultPresenter interface {
	// PresentComparisonTable displays the summary of every strategy.
	PresentComparisonTable(results []CalculationResult, out io.Writer)
	// PresentResult displays the retained product.
	PresentResult(result CalculationResult, details bool, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a failed run and returns its exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
