package app

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/pseries/internal/cli"
	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/metrics"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/tui"
	"github.com/agbru/pseries/internal/workload"
)

// WithProgramOptions passes options to the dashboard program.
func WithProgramOptions(opts ...tea.ProgramOption) AppOption {
	return func(a *Application) { a.programOptions = append(a.programOptions, opts...) }
}

// runDashboard shows the run in the terminal dashboard until the user quits.
func (a *Application) runDashboard(ctx context.Context, kind coefficientKind, strategies []series.Strategy, rec *metrics.Recorder) int {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.String()
	}
	spec := a.Config.Spec()
	return tui.Run(ctx, kind.job(a, strategies, rec), tui.Options{
		Names:    names,
		Workload: fmt.Sprintf("%d args, degree %d, %s coefficients", spec.Width, spec.Degree, a.Config.Coefficient),
		Version:  Version,
	}, a.programOptions...)
}

// dashboardJob is the dashboard counterpart of runWorkload: every outcome
// goes through the presenter.
func dashboardJob[C coefficient.Coefficient[C]](a *Application, strategies []series.Strategy, rec *metrics.Recorder, cf func(float64) C) tui.Job {
	return func(ctx context.Context, reporter orchestration.ProgressReporter, presenter *tui.TUIResultPresenter) int {
		cfg := a.Config
		env := series.NewEnv(cfg.Settings(), series.WithLogger[C](a.Logger), series.WithMetrics[C](rec))

		x, y, err := workload.Generate(env, cfg.Spec(), cf)
		if err != nil {
			return presenter.HandleError(err, 0, io.Discard)
		}

		results := orchestration.ExecuteMultiplications(ctx, x, y, strategies, reporter, io.Discard)
		opts := orchestration.PresentationOptions{Details: cfg.Details, Tolerance: cfg.Tolerance}
		code := orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, io.Discard)

		best := results[0]
		if best.Err != nil {
			return code
		}
		if cfg.Samples > 0 {
			product := best.Product.(*series.Series[C])
			cmp, err := product.Compare(ctx, workload.Reference(x, y), cfg.T0, cfg.T1, cfg.Samples)
			if err != nil {
				return presenter.HandleError(err, best.Duration, io.Discard)
			}
			presenter.PresentEvaluation(cmp, cfg.T0, cfg.T1)
		}
		if err := cli.WriteResultToFile(best, cli.OutputConfig{OutputFile: cfg.OutputFile}); err != nil {
			return presenter.HandleError(fmt.Errorf("saving product: %w", err), 0, io.Discard)
		}
		return code
	}
}
