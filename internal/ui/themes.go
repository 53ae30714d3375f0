package ui

import (
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the ANSI escape codes of the inline report colors.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
}

const (
	bold      = "\033[1m"
	underline = "\033[4m"
	reset     = "\033[0m"
)

func ansi256(n string) string { return "\033[38;5;" + n + "m" }

var (
	// DarkTheme suits dark terminal backgrounds. It is the default.
	DarkTheme = Theme{
		Name: "dark", Primary: ansi256("39"), Secondary: ansi256("245"),
		Success: ansi256("82"), Warning: ansi256("220"), Error: ansi256("196"), Info: ansi256("141"),
		Bold: bold, Underline: underline, Reset: reset,
	}

	// LightTheme uses darker tones for light backgrounds.
	LightTheme = Theme{
		Name: "light", Primary: ansi256("27"), Secondary: ansi256("240"),
		Success: ansi256("28"), Warning: ansi256("130"), Error: ansi256("124"), Info: ansi256("54"),
		Bold: bold, Underline: underline, Reset: reset,
	}

	// OrangeTheme matches the dashboard palette.
	OrangeTheme = Theme{
		Name: "orange", Primary: ansi256("208"), Secondary: ansi256("245"),
		Success: ansi256("82"), Warning: ansi256("214"), Error: ansi256("196"), Info: ansi256("69"),
		Bold: bold, Underline: underline, Reset: reset,
	}

	// NoColorTheme is selected by --no-color and NO_COLOR.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		OrangeTheme.Name:  OrangeTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames returns the accepted theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the theme called name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// Palette holds the lipgloss colors of the report table and the dashboard.
type Palette struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
}

var (
	// DarkPalette is used by the dark and orange themes.
	DarkPalette = Palette{
		Text:    lipgloss.Color("#E0E0E0"),
		Border:  lipgloss.Color("#FF6600"),
		Accent:  lipgloss.Color("#FF8C00"),
		Success: lipgloss.Color("#9ece6a"),
		Warning: lipgloss.Color("#FFB347"),
		Error:   lipgloss.Color("#FF4444"),
		Dim:     lipgloss.Color("#666666"),
	}

	LightPalette = Palette{
		Text:    lipgloss.Color("#1F1F1F"),
		Border:  lipgloss.Color("#005FAF"),
		Accent:  lipgloss.Color("#0060C0"),
		Success: lipgloss.Color("#2E7D32"),
		Warning: lipgloss.Color("#A65E00"),
		Error:   lipgloss.Color("#B00020"),
		Dim:     lipgloss.Color("#8A8A8A"),
	}

	// NoColorPalette renders with the terminal's default colors.
	NoColorPalette = Palette{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
	}
)

// GetCurrentPalette returns the palette matching the active theme.
func GetCurrentPalette() Palette {
	switch GetCurrentTheme().Name {
	case NoColorTheme.Name:
		return NoColorPalette
	case LightTheme.Name:
		return LightPalette
	default:
		return DarkPalette
	}
}

// Styles are the lipgloss styles of the report table.
type Styles struct {
	Header  lipgloss.Style
	Name    lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style
	Border  lipgloss.Style
}

// CurrentStyles builds the table styles from the active palette.
func CurrentStyles() Styles {
	p := GetCurrentPalette()
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(p.Text),
		Name:    lipgloss.NewStyle().Foreground(p.Accent),
		Value:   lipgloss.NewStyle().Foreground(p.Text),
		Success: lipgloss.NewStyle().Foreground(p.Success),
		Failure: lipgloss.NewStyle().Foreground(p.Error),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Border:  lipgloss.NewStyle().Foreground(p.Border),
	}
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	currentTheme = t
	themeMutex.Unlock()
}

// SetTheme activates the theme called name, or the dark theme for an
// unknown name.
func SetTheme(name string) {
	t, ok := LookupTheme(name)
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme selects the no-color theme when noColor is set or NO_COLOR is
// present in the environment (https://no-color.org/), and the dark theme
// otherwise.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
