package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/orchestration"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/ui"
	"github.com/agbru/pseries/internal/workload"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Strategy is the initial multiplication strategy name.
	Strategy string
	// Timeout bounds each multiplication.
	Timeout time.Duration
	// Spec describes the synthetic operands.
	Spec workload.Spec
	// Settings are the numerical settings of the session's series.
	Settings series.Settings
	// Logger receives diagnostics. Nil logs nowhere.
	Logger logging.Logger
}

// REPL is an interactive session multiplying real-coefficient workloads.
// Operands are regenerated lazily after the workload or the settings
// change.
type REPL struct {
	config   REPLConfig
	strategy series.Strategy
	a, b     *series.Series[coefficient.Real]
	product  *series.Series[coefficient.Real]
	in       io.Reader
	out      io.Writer
}

// NewREPL creates a REPL. An unknown or "all" strategy starts on auto.
func NewREPL(config REPLConfig) *REPL {
	strategy, err := series.ParseStrategy(config.Strategy)
	if err != nil {
		strategy = series.Auto
	}
	return &REPL{
		config:   config,
		strategy: strategy,
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

// SetInput sets a custom input reader.
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer.
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads and runs commands until exit or EOF.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"pseries> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if line := strings.TrimSpace(input); line != "" && !r.processCommand(line) {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			}
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sPoisson Series Multiplier - Interactive Mode%s         %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	cmd := func(name, desc string) {
		fmt.Fprintf(r.out, "  %s%-18s%s - %s\n", ui.ColorYellow(), name, ui.ColorReset(), desc)
	}
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	cmd("mul", "Multiply the operands with the current strategy")
	cmd("strategy <name>", "Change strategy (auto, dense, hashed, plain)")
	cmd("compare", "Cross-check every strategy")
	cmd("width <n>", "Set the number of arguments")
	cmd("degree <n>", "Set the largest harmonic order")
	cmd("spread <x>", "Set the coefficient ratio between orders")
	cmd("truncation <x>", "Set the relative truncation")
	cmd("eval <t>", "Evaluate the last product against a(t)·b(t)")
	cmd("terms [n]", "List the leading terms of the last product")
	cmd("crop <x>", "Drop product terms with norm below x")
	cmd("status", "Display current configuration")
	cmd("help", "Display this help")
	cmd("exit / quit", "Exit interactive mode")
}

// processCommand runs one command line and reports whether the session
// goes on.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "mul", "m", "run":
		r.cmdMul()
	case "strategy", "s":
		r.cmdStrategy(args)
	case "compare", "cmp":
		r.cmdCompare()
	case "width", "degree", "spread", "truncation":
		r.cmdSet(cmd, args)
	case "eval", "e":
		r.cmdEval(args)
	case "terms", "t":
		r.cmdTerms(args)
	case "crop":
		r.cmdCrop(args)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		r.errorf("Unknown command: %s", cmd)
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

func (r *REPL) errorf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s%s%s\n", ui.ColorRed(), fmt.Sprintf(format, args...), ui.ColorReset())
}

// operands returns the session's operands, generating them when needed.
func (r *REPL) operands() (a, b *series.Series[coefficient.Real], err error) {
	if r.a == nil {
		var opts []series.Option[coefficient.Real]
		if r.config.Logger != nil {
			opts = append(opts, series.WithLogger[coefficient.Real](r.config.Logger))
		}
		env := series.NewEnv(r.config.Settings, opts...)
		r.a, r.b, err = workload.Generate(env, r.config.Spec, func(x float64) coefficient.Real { return coefficient.Real(x) })
		if err != nil {
			r.a, r.b = nil, nil
			return nil, nil, err
		}
	}
	return r.a, r.b, nil
}

// run multiplies the operands with each strategy.
func (r *REPL) run(strategies []series.Strategy, reporter orchestration.ProgressReporter) ([]orchestration.CalculationResult, bool) {
	a, b, err := r.operands()
	if err != nil {
		r.errorf("Error: %v", err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	fmt.Fprintf(r.out, "Multiplying %s%d%s × %s%d%s terms...\n",
		ui.ColorMagenta(), a.Len(), ui.ColorReset(), ui.ColorMagenta(), b.Len(), ui.ColorReset())
	return orchestration.ExecuteMultiplications(ctx, a, b, strategies, reporter, r.out), true
}

func (r *REPL) cmdMul() {
	results, ok := r.run([]series.Strategy{r.strategy}, CLIProgressReporter{})
	if !ok {
		return
	}
	res := results[0]
	if res.Err != nil {
		r.errorf("Error: %v", res.Err)
		return
	}
	r.product = res.Product.(*series.Series[coefficient.Real])
	DisplayResult(res, false, r.out)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStrategy(args []string) {
	if len(args) == 0 {
		r.errorf("Usage: strategy <name>")
		return
	}
	s, err := series.ParseStrategy(args[0])
	if err != nil {
		r.errorf("%v", err)
		return
	}
	r.strategy = s
	fmt.Fprintf(r.out, "Strategy changed to: %s%s%s\n", ui.ColorGreen(), s, ui.ColorReset())
}

func (r *REPL) cmdCompare() {
	results, ok := r.run(series.Strategies, orchestration.NullProgressReporter{})
	if !ok {
		return
	}
	CLIResultPresenter{}.PresentComparisonTable(results, r.out)
	for _, res := range results {
		if res.Deviation > orchestration.DefaultTolerance {
			r.errorf("%s deviates from the reference by %.3g", res.Name, res.Deviation)
		}
	}
	fmt.Fprintln(r.out)
}

// cmdSet updates a workload or settings value. The operands and the
// product are discarded.
func (r *REPL) cmdSet(name string, args []string) {
	if len(args) == 0 {
		r.errorf("Usage: %s <value>", name)
		return
	}
	spec, settings := r.config.Spec, r.config.Settings
	var err error
	switch name {
	case "width", "degree":
		var n int
		if n, err = strconv.Atoi(args[0]); err == nil {
			if name == "width" {
				spec.Width = n
			} else {
				spec.Degree = n
			}
		}
	case "spread":
		spec.Spread, err = strconv.ParseFloat(args[0], 64)
	case "truncation":
		settings.Truncation, err = strconv.ParseFloat(args[0], 64)
		if err == nil && settings.Truncation < 0 {
			err = errors.New("truncation must be >= 0")
		}
	}
	if err == nil {
		err = spec.Validate()
	}
	if err != nil {
		r.errorf("Invalid value: %v", err)
		return
	}
	r.config.Spec, r.config.Settings = spec, settings
	r.a, r.b, r.product = nil, nil, nil
	fmt.Fprintf(r.out, "%s set to %s%s%s\n", name, ui.ColorGreen(), args[0], ui.ColorReset())
}

// lastProduct returns the last product, or reports that there is none.
func (r *REPL) lastProduct() (*series.Series[coefficient.Real], bool) {
	if r.product == nil {
		r.errorf("No product yet: run %smul%s first", ui.ColorYellow(), ui.ColorRed())
	}
	return r.product, r.product != nil
}

func (r *REPL) cmdEval(args []string) {
	if len(args) == 0 {
		r.errorf("Usage: eval <t>")
		return
	}
	t, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		r.errorf("Invalid value: %s", args[0])
		return
	}
	p, ok := r.lastProduct()
	if !ok {
		return
	}
	got, want := p.Eval(t), workload.Reference(r.a, r.b)(t)
	fmt.Fprintf(r.out, "  product(%g)   = %s%.15g%s\n", t, ui.ColorGreen(), got, ui.ColorReset())
	fmt.Fprintf(r.out, "  a(%g)·b(%g) = %s%.15g%s\n", t, t, ui.ColorCyan(), want, ui.ColorReset())
	fmt.Fprintf(r.out, "  error        = %.3g\n", got-want)
}

func (r *REPL) cmdTerms(args []string) {
	n := TermsPreview
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			r.errorf("Invalid value: %s", args[0])
			return
		}
		n = v
	}
	p, ok := r.lastProduct()
	if !ok {
		return
	}
	terms := p.Terms()
	for i, t := range terms {
		if i == n {
			fmt.Fprintf(r.out, "  ... %d more\n", len(terms)-n)
			break
		}
		fmt.Fprintf(r.out, "  %s\n", t)
	}
}

func (r *REPL) cmdCrop(args []string) {
	if len(args) == 0 {
		r.errorf("Usage: crop <x>")
		return
	}
	eps, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		r.errorf("Invalid value: %s", args[0])
		return
	}
	p, ok := r.lastProduct()
	if !ok {
		return
	}
	before := p.Len()
	p.Crop(eps)
	fmt.Fprintf(r.out, "Dropped %s%d%s terms, %d left\n", ui.ColorYellow(), before-p.Len(), ui.ColorReset(), p.Len())
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Strategy:    %s%s%s\n", ui.ColorCyan(), r.strategy, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:     %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintf(r.out, "  Width:       %s%d%s\n", ui.ColorCyan(), r.config.Spec.Width, ui.ColorReset())
	fmt.Fprintf(r.out, "  Degree:      %s%d%s\n", ui.ColorCyan(), r.config.Spec.Degree, ui.ColorReset())
	fmt.Fprintf(r.out, "  Spread:      %s%g%s\n", ui.ColorCyan(), r.config.Spec.Spread, ui.ColorReset())
	fmt.Fprintf(r.out, "  Truncation:  %s%g%s\n", ui.ColorCyan(), r.config.Settings.Truncation, ui.ColorReset())
	if r.product != nil {
		fmt.Fprintf(r.out, "  Product:     %s%d%s terms\n", ui.ColorCyan(), r.product.Len(), ui.ColorReset())
	}
	fmt.Fprintln(r.out)
}
