package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/pseries/internal/coefficient"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/series"
)

// ProgressBufferMultiplier sizes the progress channel per strategy, so that
// a slow display rarely blocks a multiplication.
const ProgressBufferMultiplier = 5

// DefaultTolerance is the relative deviation accepted between products of
// different strategies. Strategies differ only in summation order.
const DefaultTolerance = 1e-9

// ExecuteMultiplications computes a·b once per strategy, concurrently, and
// returns one result per strategy in the given order. The operands are only
// read. The first successful product is the reference every other product's
// Deviation is measured against.
func ExecuteMultiplications[C coefficient.Coefficient[C]](ctx context.Context, a, b *series.Series[C], strategies []series.Strategy, progressReporter ProgressReporter, out io.Writer) []CalculationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]CalculationResult, len(strategies))
	products := make([]*series.Series[C], len(strategies))
	progressChan := make(chan ProgressUpdate, len(strategies)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(strategies), out)

	for i, strategy := range strategies {
		g.Go(func() error {
			report := func(done float64) {
				select {
				case progressChan <- ProgressUpdate{TaskIndex: i, Value: done}:
				case <-ctx.Done():
				}
			}
			start := time.Now()
			p, rep, err := series.MultiplyWithProgress(ctx, a, b, strategy, report)
			results[i] = CalculationResult{
				Name: strategy.String(), Report: rep, Duration: time.Since(start), Err: err,
			}
			if err == nil {
				products[i], results[i].Product = p, p
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	measureDeviations(results, products)
	return results
}

func measureDeviations[C coefficient.Coefficient[C]](results []CalculationResult, products []*series.Series[C]) {
	var ref *series.Series[C]
	for _, p := range products {
		if p != nil {
			ref = p
			break
		}
	}
	if ref == nil {
		return
	}
	scale := ref.Norm()
	if scale == 0 {
		scale = 1
	}
	for i, p := range products {
		if p == nil || p == ref {
			continue
		}
		d, err := series.Distance(p, ref)
		if err != nil {
			results[i].Err = apperrors.WrapError(err, "comparing %s product", results[i].Name)
			results[i].Product = nil
			continue
		}
		results[i].Deviation = d / scale
	}
}

// AnalyzeComparisonResults sorts the results by success then duration,
// presents the comparison table, and checks that every successful product
// lies within the tolerance of the reference. It returns the exit code of
// the run.
func AnalyzeComparisonResults(results []CalculationResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var firstValidResult *CalculationResult
	var firstError error
	successCount := 0

	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
		} else {
			successCount++
			if firstValidResult == nil {
				firstValidResult = &results[i]
			}
		}
	}

	presenter.PresentComparisonTable(results, out)

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No strategy could complete the multiplication.\n")
		return errHandler.HandleError(firstError, 0, out)
	}

	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	for _, res := range results {
		if res.Err == nil && res.Deviation > tolerance {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! The %s product deviates from the reference by %.3g (tolerance %.3g).\n",
				res.Name, res.Deviation, tolerance)
			return apperrors.ExitErrorMismatch
		}
	}

	if successCount > 1 {
		fmt.Fprintf(out, "\nGlobal Status: Success. All valid products are consistent.\n")
	} else {
		fmt.Fprintf(out, "\nGlobal Status: Success.\n")
	}
	presenter.PresentResult(*firstValidResult, opts.Details, out)
	return apperrors.ExitSuccess
}
