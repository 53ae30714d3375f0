// Package calibration measures the tuning settings of the multiplication
// engine and of range evaluation on the running machine.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/config"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/workload"
)

// calibrationResult is one row of a summary table.
type calibrationResult struct {
	Label    string
	Duration time.Duration
	Err      error
}

// errDenseOverBudget marks a shape whose dense scratch space did not fit.
var errDenseOverBudget = errors.New("dense scratch space over budget")

// shapeTiming holds the best times of both coded strategies on one shape.
type shapeTiming struct {
	spec   workload.Spec
	load   float64
	dense  time.Duration
	hashed time.Duration
	// denseErr is set when dense could not run on the shape.
	denseErr error
}

// calibrator holds what one calibration run measures.
type calibrator struct {
	settings    series.Settings
	shapes      []workload.Spec
	loadFactors []float64
	grains      []int
	samples     int
	repeats     int
}

const calibrationSamples = 8192

func newCalibrator(cfg config.AppConfig) calibrator {
	return calibrator{
		settings:    cfg.Settings(),
		shapes:      GenerateShapes(),
		loadFactors: GenerateLoadFactors(),
		grains:      GenerateParallelGrains(calibrationSamples),
		samples:     calibrationSamples,
		repeats:     3,
	}
}

// RunCalibration times the dense strategy against the hashed one over the
// MinLoadFactor candidates and range evaluation over the ParallelGrain
// candidates. It prints both summaries to out and returns cfg with the
// measured settings applied through config.ApplyAdaptiveDefaults.
func RunCalibration(ctx context.Context, cfg config.AppConfig, out io.Writer) (config.AppConfig, error) {
	measured, err := newCalibrator(cfg).run(ctx, out)
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyAdaptiveDefaults(cfg, measured)
	printCalibrationOutput(cfg, out)
	return cfg, nil
}

func (c calibrator) run(ctx context.Context, out io.Writer) (config.Calibration, error) {
	timings, err := c.timeShapes(ctx)
	if err != nil {
		return config.Calibration{}, apperrors.WrapError(err, "calibrating min-load-factor")
	}
	loadResults, bestLoad := c.chooseLoadFactor(timings)
	printCalibrationResults(out, "Min load factor", loadResults, bestLoad)

	grainResults, bestGrain, err := c.timeGrains(ctx)
	if err != nil {
		return config.Calibration{}, apperrors.WrapError(err, "calibrating parallel-grain")
	}
	printCalibrationResults(out, "Parallel grain", grainResults, bestGrain)

	measured := config.Calibration{MinLoadFactor: c.loadFactors[bestLoad]}
	if bestGrain >= 0 {
		measured.ParallelGrain = c.grains[bestGrain]
	}
	return measured, nil
}

// timeShapes multiplies the operands of every shape with the dense and the
// hashed strategies.
func (c calibrator) timeShapes(ctx context.Context) ([]shapeTiming, error) {
	env := series.NewEnv[coefficient.Real](c.settings)
	timings := make([]shapeTiming, 0, len(c.shapes))
	for _, spec := range c.shapes {
		x, y, err := workload.Generate(env, spec, func(v float64) coefficient.Real { return coefficient.Real(v) })
		if err != nil {
			return nil, err
		}
		st := shapeTiming{spec: spec}
		var report series.Report
		st.dense, report, err = c.best(ctx, x, y, series.Dense)
		switch {
		case errors.Is(err, apperrors.ErrCapacity) || report.Used == series.Plain:
			// The code range does not fit: no coded strategy runs on it.
			continue
		case err != nil:
			return nil, err
		case report.Fallback:
			st.denseErr = errDenseOverBudget
		}
		st.load = float64(x.Len()) * float64(y.Len()) / float64(report.Cardinality)
		if st.hashed, _, err = c.best(ctx, x, y, series.Hashed); err != nil {
			return nil, err
		}
		timings = append(timings, st)
	}
	return timings, nil
}

// best returns the shortest of c.repeats multiplications.
func (c calibrator) best(ctx context.Context, x, y *series.Series[coefficient.Real], strategy series.Strategy) (time.Duration, series.Report, error) {
	fastest := time.Duration(math.MaxInt64)
	var report series.Report
	for i := 0; i < max(c.repeats, 1); i++ {
		start := time.Now()
		_, r, err := series.MultiplyWith(ctx, x, y, strategy)
		elapsed := time.Since(start)
		if err != nil {
			return 0, r, err
		}
		report = r
		fastest = min(fastest, elapsed)
	}
	return fastest, report, nil
}

// chooseLoadFactor totals, for every candidate, the time the automatic
// strategy would spend on the shapes: dense at or above the candidate load
// factor, hashed under it. It returns the results and the index of the
// fastest candidate, the smallest one on ties.
func (c calibrator) chooseLoadFactor(timings []shapeTiming) ([]calibrationResult, int) {
	results := make([]calibrationResult, len(c.loadFactors))
	best := -1
	for i, lf := range c.loadFactors {
		var total time.Duration
		for _, st := range timings {
			if st.load >= lf && st.denseErr == nil {
				total += st.dense
			} else {
				total += st.hashed
			}
		}
		results[i] = calibrationResult{Label: fmt.Sprintf("%g", lf), Duration: total}
		if best < 0 || total < results[best].Duration {
			best = i
		}
	}
	return results, best
}

// timeGrains evaluates one operand over c.samples points with every grain
// candidate. It returns -1 as the best index when no candidate ran.
func (c calibrator) timeGrains(ctx context.Context) ([]calibrationResult, int, error) {
	results := make([]calibrationResult, len(c.grains))
	best := -1
	for i, g := range c.grains {
		label := fmt.Sprintf("%d", g)
		if g >= c.samples {
			label = "Sequential"
		}
		results[i] = calibrationResult{Label: label}

		settings := c.settings
		settings.ParallelGrain = g
		env := series.NewEnv[coefficient.Real](settings)
		x, _, err := workload.Generate(env, workload.DefaultSpec(), func(v float64) coefficient.Real { return coefficient.Real(v) })
		if err != nil {
			return nil, -1, err
		}
		fastest := time.Duration(math.MaxInt64)
		for r := 0; r < max(c.repeats, 1); r++ {
			start := time.Now()
			_, err = x.RangeEvaluate(ctx, 0, 100, c.samples)
			if err != nil {
				break
			}
			fastest = min(fastest, time.Since(start))
		}
		if apperrors.IsContextError(err) {
			return nil, -1, err
		}
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Duration = fastest
		if best < 0 || fastest < results[best].Duration {
			best = i
		}
	}
	return results, best, nil
}
