package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/agbru/pseries/internal/calibration"
	"github.com/agbru/pseries/internal/cli"
	"github.com/agbru/pseries/internal/config"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/sysmon"
	"github.com/agbru/pseries/internal/ui"
)

// Application represents the pseries application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	In        io.Reader // feeds the interactive session
	Logger    logging.Logger

	// availableMemory reports the memory the dense budget is capped by.
	availableMemory func() (uint64, error)
	programOptions  []tea.ProgramOption
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets the diagnostics logger. By default diagnostics go to the
// error writer.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithAvailableMemory replaces the system memory query.
func WithAvailableMemory(f func() (uint64, error)) AppOption {
	return func(a *Application) { a.availableMemory = f }
}

// strategyNames lists the values accepted by --strategy, besides "all".
func strategyNames() []string {
	names := []string{series.Auto.String()}
	for _, s := range series.Strategies {
		names = append(names, s.String())
	}
	return names
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin, availableMemory: sysmon.AvailableMemory}
	for _, opt := range opts {
		opt(app)
	}

	programName := "pseries"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, strategyNames())
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	if app.Logger == nil {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: errWriter}).With().Timestamp().Logger()
		app.Logger = logging.NewZerologAdapter(zl)
	}
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	level := logLevel(a.Config.LogLevel)
	if a.Config.TUI {
		// The dashboard owns the terminal.
		level = zerolog.Disabled
	}
	zerolog.SetGlobalLevel(level)
	ui.InitTheme(a.Config.NoColor)
	if ui.GetCurrentTheme().Name != "none" {
		ui.SetTheme(a.Config.Theme)
	}
	a.capDenseBudget()
	if a.Config.Calibrate {
		if code := a.runCalibration(ctx, out); code != apperrors.ExitSuccess {
			return code
		}
	}

	if a.Config.Interactive {
		return a.runInteractive(out)
	}
	return a.runCalculate(ctx, out)
}

func logLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// capDenseBudget lowers the dense scratch budget to a share of the memory
// the system has available.
func (a *Application) capDenseBudget() {
	available, err := a.availableMemory()
	if err != nil {
		a.Logger.Debug("available memory unknown, dense budget left as configured", logging.Err(err))
		return
	}
	if capped := sysmon.CapBudget(a.Config.DenseBudget, available); capped < a.Config.DenseBudget {
		a.Logger.Debug("dense budget capped",
			logging.Uint64("requested", a.Config.DenseBudget),
			logging.Uint64("capped", capped),
			logging.Uint64("available", available))
		a.Config.DenseBudget = capped
	}
}

// runCalibration measures the tuning settings and applies those left
// unpinned to the run.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	if a.Config.Quiet || a.Config.TUI {
		out = io.Discard
	}
	cfg, err := calibration.RunCalibration(ctx, a.Config, out)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	a.Logger.Debug("calibration applied",
		logging.Float64("min_load_factor", cfg.MinLoadFactor),
		logging.Int("parallel_grain", cfg.ParallelGrain))
	a.Config = cfg
	return apperrors.ExitSuccess
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, strategyNames()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runInteractive starts a REPL session reading from a.In.
func (a *Application) runInteractive(out io.Writer) int {
	r := cli.NewREPL(cli.REPLConfig{
		Strategy: a.Config.Strategy,
		Timeout:  a.Config.Timeout,
		Spec:     a.Config.Spec(),
		Settings: a.Config.Settings(),
		Logger:   a.Logger,
	})
	r.SetInput(a.In)
	r.SetOutput(out)
	r.Start()
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
