// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/pseries/internal/format"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the product to (empty for no file output).
	OutputFile string
	// Quiet mode prints a single summary line.
	Quiet bool
	// Details prints the leading product terms.
	Details bool
}

// WriteResultToFile writes the product of result to config.OutputFile.
func WriteResultToFile(result orchestration.CalculationResult, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}
	if result.Product == nil {
		return fmt.Errorf("no product to write")
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Poisson series product\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Strategy: %s (used %s)\n", result.Name, result.Report.Used)
	fmt.Fprintf(file, "# Duration: %s\n", result.Duration)
	fmt.Fprintf(file, "# Terms: %d\n", result.Product.Len())
	fmt.Fprintf(file, "# Norm: %g\n", result.Product.Norm())
	fmt.Fprintf(file, "\n%s", result.Product.String())
	return file.Close()
}

// FormatQuietResult formats a result as a single line suitable for scripting.
func FormatQuietResult(result orchestration.CalculationResult) string {
	if result.Product == nil {
		return fmt.Sprintf("%s error=%q", result.Name, fmt.Sprint(result.Err))
	}
	return fmt.Sprintf("%s used=%s terms=%d norm=%.12g duration=%s",
		result.Name, result.Report.Used, result.Product.Len(), result.Product.Norm(),
		format.FormatExecutionDuration(result.Duration))
}

// DisplayQuietResult writes the quiet summary line.
func DisplayQuietResult(out io.Writer, result orchestration.CalculationResult) {
	fmt.Fprintln(out, FormatQuietResult(result))
}

// DisplayResult writes the product summary, and with details its leading
// terms.
func DisplayResult(result orchestration.CalculationResult, details bool, out io.Writer) {
	r := result.Report
	fmt.Fprintf(out, "\n%s--- Product ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "Strategy: %s%s%s", ui.ColorGreen(), r.Used, ui.ColorReset())
	if r.Fallback {
		fmt.Fprintf(out, " %s(dense scratch over budget)%s", ui.ColorYellow(), ui.ColorReset())
	}
	if r.Scalar {
		fmt.Fprintf(out, " %s(scalar operand)%s", ui.ColorCyan(), ui.ColorReset())
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Time: %s%s%s\n", ui.ColorGreen(), format.FormatExecutionDuration(result.Duration), ui.ColorReset())
	if result.Product == nil {
		return
	}
	fmt.Fprintf(out, "Terms: %s%s%s, norm %s%.12g%s, footprint %s%s%s\n",
		ui.ColorCyan(), format.FormatCount(result.Product.Len()), ui.ColorReset(),
		ui.ColorCyan(), result.Product.Norm(), ui.ColorReset(),
		ui.ColorCyan(), format.FormatBytes(result.Product.Footprint()), ui.ColorReset())
	fmt.Fprintf(out, "Pairs: %s kept, %s truncated", format.FormatCount(r.Kept), format.FormatCount(r.Truncated))
	if r.Cardinality > 0 {
		fmt.Fprintf(out, ", code range %s", format.FormatNumberString(fmt.Sprint(r.Cardinality)))
	}
	fmt.Fprintln(out)

	if !details {
		return
	}
	lines := strings.Split(strings.TrimRight(result.Product.String(), "\n"), "\n")
	if len(lines) > 0 {
		lines = lines[1:] // header
	}
	fmt.Fprintf(out, "\n%sTerms (key order):%s\n", ui.ColorBold(), ui.ColorReset())
	for i, l := range lines {
		if i == TermsPreview {
			fmt.Fprintf(out, "  ... %d more (use --output to save them all)\n", len(lines)-TermsPreview)
			break
		}
		fmt.Fprintf(out, "  %s\n", l)
	}
}

// DisplayEvaluation writes the outcome of the evaluation check.
func DisplayEvaluation(c series.Comparison, t0, t1 float64, out io.Writer) {
	fmt.Fprintf(out, "\nEvaluation check on [%g, %g] (%d samples): max error %s%.3g%s, rms %.3g\n",
		t0, t1, c.Samples, ui.ColorCyan(), c.MaxError, ui.ColorReset(), c.Sigma)
}

// DisplayResultWithConfig displays a result with the given output
// configuration and saves it when requested.
func DisplayResultWithConfig(out io.Writer, result orchestration.CalculationResult, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, result)
	} else {
		DisplayResult(result, config.Details, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(result, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Product saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
