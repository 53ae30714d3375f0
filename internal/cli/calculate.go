package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/pseries/internal/config"
	"github.com/agbru/pseries/internal/format"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/ui"
)

// PrintExecutionConfig displays the workload, the numerical settings and the
// environment of the run.
func PrintExecutionConfig(cfg config.AppConfig, terms1, terms2 int, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Multiplying %s%d%s × %s%d%s terms (%d arguments, degree %d, %s coefficients) with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), terms1, ui.ColorReset(), ui.ColorMagenta(), terms2, ui.ColorReset(),
		cfg.Width, cfg.Degree, cfg.Coefficient, ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "Settings: truncation=%s%g%s, min load factor=%s%g%s, dense budget=%s%s%s.\n",
		ui.ColorCyan(), cfg.Truncation, ui.ColorReset(),
		ui.ColorCyan(), cfg.MinLoadFactor, ui.ColorReset(),
		ui.ColorCyan(), format.FormatBytes(cfg.DenseBudget), ui.ColorReset())
}

// PrintExecutionMode displays whether one strategy runs or several are
// cross-checked.
func PrintExecutionMode(strategies []series.Strategy, out io.Writer) {
	var modeDesc string
	if len(strategies) > 1 {
		modeDesc = fmt.Sprintf("Parallel cross-check of %d strategies", len(strategies))
	} else {
		modeDesc = fmt.Sprintf("Single multiplication with the %s%s%s strategy",
			ui.ColorGreen(), strategies[0], ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
