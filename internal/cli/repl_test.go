package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/ui"
	"github.com/agbru/pseries/internal/workload"
)

// session runs the commands through a fresh REPL and returns its output.
func session(t *testing.T, commands ...string) (*REPL, string) {
	t.Helper()
	r := NewREPL(REPLConfig{
		Strategy: "hashed",
		Timeout:  time.Minute,
		Spec:     workload.Spec{Width: 2, Degree: 2, Spread: 0.5},
		Settings: series.DefaultSettings(),
	})
	var out bytes.Buffer
	r.SetInput(strings.NewReader(strings.Join(commands, "\n") + "\n"))
	r.SetOutput(&out)
	r.Start()
	return r, out.String()
}

func TestREPLSession(t *testing.T) {
	ui.InitTheme(true)
	t.Cleanup(func() { ui.InitTheme(false) })

	tests := []struct {
		name     string
		commands []string
		contains []string
	}{
		{"help", []string{"help"}, []string{"Available commands", "strategy <name>"}},
		{"multiply", []string{"mul"}, []string{"Multiplying 7 × 7 terms", "--- Product ---", "Strategy: hashed"}},
		{"eval", []string{"mul", "eval 0.5"}, []string{"product(0.5)", "a(0.5)·b(0.5)"}},
		{"eval without product", []string{"eval 1"}, []string{"No product yet"}},
		{"terms", []string{"m", "terms 2"}, []string{"... "}},
		{"crop", []string{"mul", "crop 1"}, []string{"Dropped"}},
		{"compare", []string{"compare"}, []string{"Comparison Summary", "dense", "plain"}},
		{"strategy", []string{"strategy PLAIN", "status"}, []string{"Strategy changed to: plain", "Strategy:    plain"}},
		{"unknown strategy", []string{"strategy fft"}, []string{`unknown multiplication strategy "fft"`}},
		{"set width", []string{"width 3", "status"}, []string{"width set to 3", "Width:       3"}},
		{"invalid spread", []string{"spread 2"}, []string{"Invalid value"}},
		{"invalid number", []string{"degree x"}, []string{"Invalid value"}},
		{"negative truncation", []string{"truncation -1"}, []string{"truncation must be >= 0"}},
		{"unknown command", []string{"fly"}, []string{"Unknown command: fly"}},
		{"exit", []string{"exit", "mul"}, []string{"Goodbye!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := session(t, tt.commands...)
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output should contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestREPLExitStopsReading(t *testing.T) {
	ui.InitTheme(true)
	t.Cleanup(func() { ui.InitTheme(false) })
	r, out := session(t, "quit", "mul")
	if r.product != nil || strings.Contains(out, "Multiplying") {
		t.Error("commands after exit should not run")
	}
}

func TestREPLSettingResetsProduct(t *testing.T) {
	ui.InitTheme(true)
	t.Cleanup(func() { ui.InitTheme(false) })
	r, _ := session(t, "mul", "degree 3")
	if r.product != nil || r.a != nil {
		t.Error("changing the workload should discard operands and product")
	}
	if r.config.Spec.Degree != 3 {
		t.Errorf("degree = %d, want 3", r.config.Spec.Degree)
	}
}

func TestNewREPLDefaultsToAuto(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", "all", "bogus"} {
		if r := NewREPL(REPLConfig{Strategy: name}); r.strategy != series.Auto {
			t.Errorf("NewREPL(%q).strategy = %v, want auto", name, r.strategy)
		}
	}
}
