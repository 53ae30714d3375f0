package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/pseries/internal/cli"
	"github.com/agbru/pseries/internal/coefficient"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/metrics"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/server"
	"github.com/agbru/pseries/internal/tui"
	"github.com/agbru/pseries/internal/workload"
)

const shutdownTimeout = 5 * time.Second

// coefficientKind binds the generic run functions to one coefficient type.
type coefficientKind interface {
	run(ctx context.Context, a *Application, strategies []series.Strategy, rec *metrics.Recorder, out io.Writer) int
	job(a *Application, strategies []series.Strategy, rec *metrics.Recorder) tui.Job
}

// kindOf is the coefficientKind of C; cf converts the generated real
// coefficients.
type kindOf[C coefficient.Coefficient[C]] struct {
	cf func(float64) C
}

func (k kindOf[C]) run(ctx context.Context, a *Application, strategies []series.Strategy, rec *metrics.Recorder, out io.Writer) int {
	return runWorkload(ctx, a, strategies, rec, k.cf, out)
}

func (k kindOf[C]) job(a *Application, strategies []series.Strategy, rec *metrics.Recorder) tui.Job {
	return dashboardJob(a, strategies, rec, k.cf)
}

// kinds maps --coefficient values to their kind.
var kinds = map[string]coefficientKind{
	"real":     kindOf[coefficient.Real]{cf: func(x float64) coefficient.Real { return coefficient.Real(x) }},
	"rational": kindOf[coefficient.Rational]{cf: coefficient.RationalFromFloat},
}

// runCalculate generates the operands, multiplies them with every selected
// strategy and checks the product.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	strategies, err := orchestration.GetStrategiesToRun(a.Config.Strategy)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	kind, ok := kinds[a.Config.Coefficient]
	if !ok {
		fmt.Fprintf(a.ErrWriter, "Error: unknown coefficient kind %q\n", a.Config.Coefficient)
		return apperrors.ExitErrorConfig
	}

	rec := metrics.NewRecorder()
	if a.Config.MetricsAddr != "" {
		srv := server.New(a.Config.MetricsAddr, rec, a.Logger)
		if err := srv.Start(); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorConfig
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				a.Logger.Error("metrics server shutdown", err)
			}
		}()
	}
	if a.Config.TUI {
		return a.runDashboard(ctx, kind, strategies, rec)
	}
	return kind.run(ctx, a, strategies, rec, out)
}

func runWorkload[C coefficient.Coefficient[C]](ctx context.Context, a *Application, strategies []series.Strategy, rec *metrics.Recorder, cf func(float64) C, out io.Writer) int {
	cfg := a.Config
	presenter := cli.CLIResultPresenter{}
	env := series.NewEnv(cfg.Settings(), series.WithLogger[C](a.Logger), series.WithMetrics[C](rec))

	x, y, err := workload.Generate(env, cfg.Spec(), cf)
	if err != nil {
		return presenter.HandleError(err, 0, out)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut, analysisOut := out, out
	if cfg.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut, analysisOut = io.Discard, io.Discard
	} else {
		cli.PrintExecutionConfig(cfg, x.Len(), y.Len(), out)
		cli.PrintExecutionMode(strategies, out)
	}

	before := metrics.ReadMemory()
	results := orchestration.ExecuteMultiplications(ctx, x, y, strategies, reporter, progressOut)
	memory := metrics.ReadMemory().Since(before)

	opts := orchestration.PresentationOptions{Details: cfg.Details, Tolerance: cfg.Tolerance}
	code := orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, analysisOut)

	// Successful results come first once analyzed.
	best := results[0]
	if best.Err != nil {
		if cfg.Quiet {
			cli.DisplayQuietResult(out, best)
		}
		return code
	}

	if cfg.Samples > 0 {
		product := best.Product.(*series.Series[C])
		cmp, err := product.Compare(ctx, workload.Reference(x, y), cfg.T0, cfg.T1, cfg.Samples)
		if err != nil {
			return presenter.HandleError(err, best.Duration, out)
		}
		a.Logger.Debug("evaluation check",
			logging.Float64("max_error", cmp.MaxError),
			logging.Float64("sigma", cmp.Sigma))
		if !cfg.Quiet {
			cli.DisplayEvaluation(cmp, cfg.T0, cfg.T1, out)
		}
	}

	outputCfg := cli.OutputConfig{OutputFile: cfg.OutputFile, Quiet: cfg.Quiet, Details: cfg.Details}
	if cfg.Quiet {
		if err := cli.DisplayResultWithConfig(out, best, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving product: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return code
	}
	if cfg.OutputFile != "" {
		if err := cli.WriteResultToFile(best, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving product: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		fmt.Fprintf(out, "\nProduct saved to: %s\n", cfg.OutputFile)
	}
	if cfg.Details {
		cli.DisplayMemoryStats(memory, out)
		if samples, err := rec.Snapshot(); err == nil {
			cli.DisplayMetrics(samples, out)
		}
	}
	return code
}
