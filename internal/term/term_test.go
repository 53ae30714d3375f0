package term

import (
	"math"
	"testing"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/trigkey"
)

func argSet(cf, trig int) symbol.ArgSet {
	var a symbol.ArgSet
	for i := 0; i < cf; i++ {
		a.Cf = append(a.Cf, symbol.New("c"+string(rune('a'+i)), 1))
	}
	for i := 0; i < trig; i++ {
		a.Trig = append(a.Trig, symbol.New("t"+string(rune('a'+i)), 0.1*float64(i+1), 1))
	}
	return a
}

func TestCanonical(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      Term[coefficient.Real]
		want    string
		changed bool
	}{
		{"canonical cos untouched", New(coefficient.Real(5), trigkey.Cos(1)), "5*cos[1]", false},
		{"cos is even", New(coefficient.Real(2), trigkey.Cos(-1)), "2*cos[1]", true},
		{"sin is odd", New(coefficient.Real(2), trigkey.Sin(-1)), "-2*sin[1]", true},
		{"leading zero skipped", New(coefficient.Real(3), trigkey.Sin(0, -4, 1)), "-3*sin[0,4,-1]", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, changed := tt.in.Canonical()
			if got.String() != tt.want || changed != tt.changed {
				t.Errorf("Canonical() = %s, %v; want %s, %v", got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestWidthPredicates(t *testing.T) {
	t.Parallel()
	args := argSet(2, 2)
	narrow := New(coefficient.NewMonomial(1, 1), trigkey.Cos(1))
	if !narrow.NeedsPadding(args) || !narrow.IsInsertable(args) {
		t.Fatal("narrow term must be insertable after padding")
	}
	padded := narrow.PadRight(args)
	if padded.NeedsPadding(args) || padded.Key.Width() != 2 || padded.Cf.Width() != 2 {
		t.Errorf("PadRight gave widths cf=%d key=%d", padded.Cf.Width(), padded.Key.Width())
	}
	wide := New(coefficient.Real(1), trigkey.Cos(1, 2, 3))
	if wide.IsInsertable(args) {
		t.Error("a key wider than the arguments is not insertable")
	}
}

func TestIgnorable(t *testing.T) {
	t.Parallel()
	args := argSet(0, 1)
	if !New(coefficient.Real(100), trigkey.Sin(0)).IsIgnorable(args, 1e-80) {
		t.Error("sin(0) term must be ignorable whatever its coefficient")
	}
	if !New(coefficient.Real(1e-90), trigkey.Cos(1)).IsIgnorable(args, 1e-80) {
		t.Error("tiny coefficient must be ignorable")
	}
	if New(coefficient.Real(1), trigkey.Cos(0)).IsIgnorable(args, 1e-80) {
		t.Error("constant term is not ignorable")
	}
}

func TestEval(t *testing.T) {
	t.Parallel()
	args := argSet(0, 2)
	tm := New(coefficient.Real(-2), trigkey.Sin(1, 3))
	c := trigkey.NewExpCache(1.5, args.Trig)
	want := -2 * math.Sin(args.Trig[0].Eval(1.5)+3*args.Trig[1].Eval(1.5))
	if got := tm.Eval(1.5, args); math.Abs(got-want) > 1e-12 {
		t.Errorf("Eval = %g, want %g", got, want)
	}
	if got := tm.EvalCached(args, c); math.Abs(got-want) > 1e-12 {
		t.Errorf("EvalCached = %g, want %g", got, want)
	}
	if tm.Norm(args) != 2 {
		t.Errorf("Norm = %g, want 2", tm.Norm(args))
	}
}
