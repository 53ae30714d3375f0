package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// Theme tests mutate the package-level theme and do not run in parallel.

func TestSetTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	tests := []struct {
		name, want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"orange", "orange"},
		{"none", "none"},
		{"unknown", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) gave %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitThemeNoColor(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	InitTheme(true)
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("colors should be empty without color")
	}
	if _, ok := GetCurrentPalette().Accent.(lipgloss.NoColor); !ok {
		t.Error("palette should have no color")
	}
}

func TestInitThemeEnv(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("NO_COLOR should disable colors, got %q", GetCurrentTheme().Name)
	}
}

func TestColors(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	SetCurrentTheme(DarkTheme)
	if ColorGreen() != DarkTheme.Success || ColorBlue() != DarkTheme.Primary || ColorUnderline() != DarkTheme.Underline {
		t.Error("colors should follow the dark theme")
	}
	if GetCurrentPalette() != DarkPalette {
		t.Error("dark theme should use the dark palette")
	}
	s := CurrentStyles()
	if s.Name.Render("x") == "" {
		t.Error("styled rendering should not be empty")
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"dark", "light", "none", "orange"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ThemeNames()[%d] = %q, want %q", i, names[i], want[i])
		}
		if _, ok := LookupTheme(want[i]); !ok {
			t.Errorf("LookupTheme(%q) not found", want[i])
		}
	}
	if _, ok := LookupTheme("solarized"); ok {
		t.Error("unknown theme should not be found")
	}
}

func TestLightPalette(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	SetTheme("light")
	if GetCurrentPalette() != LightPalette {
		t.Error("light theme should use the light palette")
	}
	SetTheme("orange")
	if GetCurrentPalette() != DarkPalette {
		t.Error("orange theme should use the dark palette")
	}
}
