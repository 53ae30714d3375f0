package cli

import (
	"fmt"
	"io"
	"strings"
)

// programName is the command the completion scripts register for.
const programName = "pseries"

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so a new flag only needs an entry
// there.
type FlagCompletion struct {
	Long       string   // long flag name without "--"
	Short      string   // short flag without "-"
	Help       string   // description text
	Values     []string // suggested values (nil = boolean or free value)
	ValueName  string   // label for the value in zsh
	IsFile     bool     // the flag takes a file path
	IsStrategy bool     // values come from the strategy list
	Section    string   // fish comment section
}

var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message", Section: "Help and version"},
	{Long: "version", Short: "V", Help: "Show version information", Section: "Help and version"},
	{Long: "width", Help: "Number of angular arguments", Values: []string{"2", "3", "4", "6"}, ValueName: "count", Section: "Workload"},
	{Long: "degree", Help: "Largest harmonic order", Values: []string{"4", "6", "8", "12"}, ValueName: "order", Section: "Workload"},
	{Long: "spread", Help: "Coefficient ratio between orders", ValueName: "ratio", Section: "Workload"},
	{Long: "coefficient", Help: "Coefficient kind", Values: []string{"real", "rational"}, ValueName: "kind", Section: "Workload"},
	{Long: "strategy", Help: "Multiplication strategy", IsStrategy: true, ValueName: "strategy", Section: "Multiplication"},
	{Long: "truncation", Help: "Relative truncation of term products", Values: []string{"1e-4", "1e-6", "1e-9", "0"}, ValueName: "precision", Section: "Multiplication"},
	{Long: "min-load-factor", Help: "Minimum load factor for dense accumulation", ValueName: "ratio", Section: "Multiplication"},
	{Long: "dense-budget", Help: "Dense scratch budget in bytes", ValueName: "bytes", Section: "Multiplication"},
	{Long: "numerical-zero", Help: "Magnitude of negligible coefficients", ValueName: "magnitude", Section: "Multiplication"},
	{Long: "max-width", Help: "Maximum number of arguments", ValueName: "count", Section: "Multiplication"},
	{Long: "tolerance", Help: "Accepted deviation between strategies", ValueName: "ratio", Section: "Multiplication"},
	{Long: "t0", Help: "Start of the evaluation interval", ValueName: "time", Section: "Evaluation"},
	{Long: "t1", Help: "End of the evaluation interval", ValueName: "time", Section: "Evaluation"},
	{Long: "samples", Help: "Evaluation check samples", Values: []string{"0", "100", "1000"}, ValueName: "count", Section: "Evaluation"},
	{Long: "parallel-grain", Help: "Minimum samples per evaluation chunk", ValueName: "count", Section: "Evaluation"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"1m", "5m", "10m", "30m", "1h"}, ValueName: "duration", Section: "Execution"},
	{Long: "config", Help: "YAML settings file", IsFile: true, ValueName: "file", Section: "Execution"},
	{Long: "metrics-addr", Help: "Prometheus metrics address", ValueName: "address", Section: "Execution"},
	{Long: "log-level", Help: "Diagnostics level", Values: []string{"debug", "info", "error", "disabled"}, ValueName: "level", Section: "Execution"},
	{Long: "interactive", Short: "i", Help: "Start an interactive session", Section: "Execution"},
	{Long: "tui", Help: "Show the run in a terminal dashboard", Section: "Execution"},
	{Long: "calibrate", Help: "Measure tuning settings before the run", Section: "Execution"},
	{Long: "details", Short: "d", Help: "Print the product terms", Section: "Output"},
	{Long: "output", Short: "o", Help: "Write the product to a file", IsFile: true, ValueName: "file", Section: "Output"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts", Section: "Output"},
	{Long: "no-color", Help: "Disable colored output", Section: "Output"},
	{Long: "theme", Help: "Color theme", Values: []string{"dark", "light", "orange", "none"}, ValueName: "theme", Section: "Output"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell", Section: "Completion"},
}

// GenerateCompletion writes the completion script of shell ("bash", "zsh",
// "fish" or "powershell") to out. strategies are the names offered for
// --strategy, besides "all".
func GenerateCompletion(out io.Writer, shell string, strategies []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, strategies)
	case "zsh":
		return generateZshCompletion(out, strategies)
	case "fish":
		return generateFishCompletion(out, strategies)
	case "powershell", "ps":
		return generatePowerShellCompletion(out, strategies)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

// strategyValues returns the --strategy suggestions.
func strategyValues(strategies []string) []string {
	return append(append([]string(nil), strategies...), "all")
}

func generateBashCompletion(out io.Writer, strategies []string) error {
	var opts []string
	for _, f := range flagRegistry {
		if f.Long != "" {
			opts = append(opts, "--"+f.Long)
		}
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	var cases strings.Builder
	writeCase := func(patterns []string, body string) {
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(patterns, "|"), body)
	}
	var filePatterns []string
	for _, f := range flagRegistry {
		switch {
		case f.IsStrategy:
			writeCase([]string{"--" + f.Long}, `COMPREPLY=( $(compgen -W "${strategies}" -- "${cur}") )`)
		case f.IsFile:
			filePatterns = append(filePatterns, "--"+f.Long)
			if f.Short != "" {
				filePatterns = append(filePatterns, "-"+f.Short)
			}
		case len(f.Values) > 0:
			writeCase([]string{"--" + f.Long}, fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")))
		}
	}
	if len(filePatterns) > 0 {
		writeCase(filePatterns, `COMPREPLY=( $(compgen -f -- "${cur}") )`)
	}

	_, err := fmt.Fprintf(out, `# Bash completion script for %[1]s
# Add this to your ~/.bashrc or ~/.bash_completion

_%[1]s_completions() {
    local cur prev opts strategies
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%[2]s"
    strategies="%[3]s"

    case "${prev}" in
%[4]s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _%[1]s_completions %[1]s
`, programName, strings.Join(opts, " "), strings.Join(strategyValues(strategies), " "), cases.String())
	if err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer, strategies []string) error {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	_, err := fmt.Fprintf(out, `#compdef %[1]s

# Zsh completion script for %[1]s
# Add this to your ~/.zshrc or place in $fpath

_%[1]s() {
    local -a strategies
    strategies=(%[2]s)

    _arguments -s \
%[3]s
}

_%[1]s "$@"
`, programName, strings.Join(strategyValues(strategies), " "), strings.Join(args, " \\\n"))
	if err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats f as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsStrategy:
		valueSuffix = fmt.Sprintf(":%s:($strategies)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

func generateFishCompletion(out io.Writer, strategies []string) error {
	lines := []string{
		"# Fish completion script for " + programName,
		"# Add this to ~/.config/fish/completions/" + programName + ".fish",
		"",
		"complete -c " + programName + " -f",
	}
	section := ""
	for _, f := range flagRegistry {
		if f.Section != section {
			section = f.Section
			lines = append(lines, "", "# "+section)
		}
		lines = append(lines, fishCompleteLine(f, strategies))
	}
	lines = append(lines, "")

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats f as a fish complete command.
func fishCompleteLine(f FlagCompletion, strategies []string) string {
	parts := []string{"complete -c " + programName}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	parts = append(parts, "-l "+f.Long, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsStrategy:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(strategyValues(strategies), " ")))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

func generatePowerShellCompletion(out io.Writer, strategies []string) error {
	var options []string
	for _, f := range flagRegistry {
		if f.Short != "" {
			options = append(options, fmt.Sprintf("        @{Name = '-%s'; Description = '%s' }", f.Short, f.Help))
		}
		options = append(options, fmt.Sprintf("        @{Name = '--%s'; Description = '%s' }", f.Long, f.Help))
	}

	quote := func(vals []string) string {
		q := make([]string, len(vals))
		for i, v := range vals {
			q[i] = "'" + v + "'"
		}
		return strings.Join(q, ", ")
	}
	var switches []string
	for _, f := range flagRegistry {
		vals := f.Values
		if f.IsStrategy {
			vals = strategyValues(strategies)
		}
		if len(vals) == 0 {
			continue
		}
		switches = append(switches, fmt.Sprintf(`        '--%s' {
            @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, f.Long, quote(vals)))
	}

	_, err := fmt.Fprintf(out, `# PowerShell completion script for %[1]s
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName '%[1]s' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%[2]s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
%[3]s
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, programName, strings.Join(options, "\n"), strings.Join(switches, "\n"))
	if err != nil {
		return fmt.Errorf("completion powershell generation failed: %w", err)
	}
	return nil
}
