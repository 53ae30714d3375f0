package series

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/metrics"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/term"
)

func TestMultiplySingleTerms(t *testing.T) {
	t.Parallel()
	for _, strategy := range []Strategy{Auto, Dense, Hashed, Plain} {
		t.Run(strategy.String(), func(t *testing.T) {
			t.Parallel()
			env := testEnv()
			a := build(t, env, args(1), cos(1, 2))
			b := build(t, env, args(1), cos(1, 3))
			p, report, err := MultiplyWith(context.Background(), a, b, strategy)
			require.NoError(t, err)
			assert.Equal(t, map[string]float64{"cos[1]": 0.5, "cos[5]": 0.5}, contents(p))
			assert.Equal(t, 1, report.Kept)
			assert.Equal(t, 2, report.Terms)
			require.NoError(t, p.Checkup())
		})
	}
}

func TestWernerTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b term.Term[num]
		want map[string]float64
	}{
		{"cos cos", cos(1, 3), cos(1, 1), map[string]float64{"cos[2]": 0.5, "cos[4]": 0.5}},
		{"sin sin", sin(1, 3), sin(1, 1), map[string]float64{"cos[2]": 0.5, "cos[4]": -0.5}},
		{"cos sin", cos(1, 3), sin(1, 1), map[string]float64{"sin[2]": -0.5, "sin[4]": 0.5}},
		{"sin cos", sin(1, 3), cos(1, 1), map[string]float64{"sin[2]": 0.5, "sin[4]": 0.5}},
		{"cos sin with negative difference", cos(1, 1), sin(1, 3), map[string]float64{"sin[2]": 0.5, "sin[4]": 0.5}},
		{"sin sin with negative difference", sin(1, 1), sin(1, 3), map[string]float64{"cos[2]": 0.5, "cos[4]": -0.5}},
		{"equal keys", sin(2, 1), sin(3, 1), map[string]float64{"cos[0]": 3, "cos[2]": -3}},
		{"cos by sin of itself", cos(2, 1), sin(3, 1), map[string]float64{"sin[2]": 3}},
	}
	for _, tt := range tests {
		for _, strategy := range Strategies {
			t.Run(tt.name+"/"+strategy.String(), func(t *testing.T) {
				t.Parallel()
				env := testEnv()
				a := build(t, env, args(1), tt.a)
				b := build(t, env, args(1), tt.b)
				p, _, err := MultiplyWith(context.Background(), a, b, strategy)
				require.NoError(t, err)
				assert.Equal(t, tt.want, contents(p))
			})
		}
	}
}

func TestMultiplyMatchesEvaluation(t *testing.T) {
	t.Parallel()
	settings := DefaultSettings()
	settings.Truncation = 0
	env := NewEnv[num](settings)
	a := build(t, env, args(2), cos(1, 0, 0), cos(0.5, 1, 0), sin(0.25, 1, -1), cos(0.1, 2, 1))
	b := build(t, env, args(2), sin(0.7, 0, 1), cos(0.3, 1, 1), cos(-0.2, 3, -2))
	for _, strategy := range Strategies {
		p, report, err := MultiplyWith(context.Background(), a, b, strategy)
		require.NoError(t, err)
		assert.Equal(t, strategy, report.Used)
		assert.Zero(t, report.Truncated)
		for _, tm := range []float64{0, 0.3, 1.7, -4} {
			assert.InDelta(t, a.Eval(tm)*b.Eval(tm), p.Eval(tm), 1e-12, "%s at t=%g", strategy, tm)
		}
		require.NoError(t, p.Checkup())
	}
}

func TestMultiplyByCoefficientSeries(t *testing.T) {
	t.Parallel()
	env := testEnv()
	s := build(t, env, args(2), cos(2, 1, 0), sin(-3, 1, 1), cos(0.5, 0, 0))
	c := build(t, env, args(2), cos(4, 0, 0))

	for _, pair := range [][2]*Series[num]{{s, c}, {c, s}} {
		p, report, err := MultiplyWith(context.Background(), pair[0], pair[1], Dense)
		require.NoError(t, err)
		assert.True(t, report.Scalar)
		assert.Equal(t, map[string]float64{"cos[1,0]": 8, "sin[1,1]": -12, "cos[0,0]": 2}, contents(p))
	}

	// The scalar shortcut leaves the operand untouched.
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, map[string]float64{"cos[1,0]": 2, "sin[1,1]": -3, "cos[0,0]": 0.5}, contents(s))
}

func TestMultiplyEmptyOperand(t *testing.T) {
	t.Parallel()
	env := testEnv()
	a := build(t, env, args(1), cos(1, 1))
	p, err := Multiply(a, New(env, args(2)))
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Len(t, p.Args().Trig, 2)
}

func TestMultiplyMergesArguments(t *testing.T) {
	t.Parallel()
	env := testEnv()
	x, y := symbol.New("x", 0.1, 1), symbol.New("y", 0.2, 3)
	a := build(t, env, symbol.ArgSet{Trig: symbol.Vector{x}}, cos(1, 1))
	b := build(t, env, symbol.ArgSet{Trig: symbol.Vector{y}}, cos(1, 1))
	p, err := Multiply(a, b)
	require.NoError(t, err)
	assert.Equal(t, "[y,x]", p.Args().Trig.String())
	assert.Equal(t, map[string]float64{"cos[1,-1]": 0.5, "cos[1,1]": 0.5}, contents(p))
}

func TestMultiplyLinearArguments(t *testing.T) {
	t.Parallel()
	env := testEnv()
	a := build(t, env, args(1), cos(1, 1))
	b := build(t, env, args(1), cos(1, 2))
	require.NoError(t, b.SetLinArgs([]int{1}))
	_, err := Multiply(a, b)
	assert.True(t, errors.Is(err, ErrLinearArguments))
}

func TestMultiplyExponentOverflow(t *testing.T) {
	t.Parallel()
	for _, strategy := range []Strategy{Auto, Dense, Hashed, Plain} {
		t.Run(strategy.String(), func(t *testing.T) {
			t.Parallel()
			env := testEnv()
			a := build(t, env, args(1), cos(1, 20000))
			b := build(t, env, args(1), cos(1, 20000))
			_, _, err := MultiplyWith(context.Background(), a, b, strategy)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrCapacity))
		})
	}
}

// TestMultiplyTruncatedPairOutOfRange checks that a pair whose product key
// would overflow the exponent range is harmless when truncation drops it.
func TestMultiplyTruncatedPairOutOfRange(t *testing.T) {
	t.Parallel()
	for _, strategy := range []Strategy{Auto, Dense, Hashed, Plain} {
		t.Run(strategy.String(), func(t *testing.T) {
			t.Parallel()
			env := testEnv()
			a := build(t, env, args(1), cos(1, 1), cos(1e-9, 20000))
			b := build(t, env, args(1), cos(1, 2), cos(1e-9, 20000))
			p, report, err := MultiplyWith(context.Background(), a, b, strategy)
			require.NoError(t, err)
			assert.Equal(t, 1, report.Kept)
			assert.Equal(t, 3, report.Truncated)
			assert.Equal(t, map[string]float64{"cos[1]": 0.5, "cos[3]": 0.5}, contents(p))
			require.NoError(t, p.Checkup())
		})
	}
}

func TestMultiplyWideRangeUsesPlain(t *testing.T) {
	t.Parallel()
	env := testEnv()
	const w = 16
	e1, e2 := make([]int16, w), make([]int16, w)
	for i := range e1 {
		e1[i], e2[i] = 300, 1
	}
	e2[0] = 300
	a := build(t, env, args(w), cos(1, e1...), sin(1, e2...))
	b := build(t, env, args(w), cos(1, e2...))
	for _, strategy := range []Strategy{Auto, Dense, Hashed} {
		p, report, err := MultiplyWith(context.Background(), a, b, strategy)
		require.NoError(t, err)
		assert.Equal(t, Plain, report.Used)
		assert.Zero(t, report.Cardinality)
		// sin·cos of equal keys leaves an ignorable sin(0).
		assert.Equal(t, 3, p.Len())
	}
}

func TestDenseFallsBackToHashed(t *testing.T) {
	t.Parallel()
	settings := DefaultSettings()
	settings.DenseBudget = 64
	rec := metrics.NewRecorder()
	env := NewEnv[num](settings, WithMetrics[num](rec))
	a := build(t, env, args(1), cos(1, 10), cos(1, 1))
	b := build(t, env, args(1), cos(1, 7), sin(1, 2))

	p, report, err := MultiplyWith(context.Background(), a, b, Dense)
	require.NoError(t, err)
	assert.True(t, report.Fallback)
	assert.Equal(t, Hashed, report.Used)
	assert.Equal(t, 4, report.Kept)

	want, _, err := MultiplyWith(context.Background(), a, b, Plain)
	require.NoError(t, err)
	assert.Equal(t, contents(want), contents(p))

	samples, err := rec.Snapshot()
	require.NoError(t, err)
	var fallbacks float64
	for _, s := range samples {
		if s.Name == "pseries_dense_fallbacks_total" {
			fallbacks = s.Value
		}
	}
	assert.Equal(t, 1.0, fallbacks)
	assert.Zero(t, env.Pool.InUse())
}

func TestAutoStrategySelection(t *testing.T) {
	t.Parallel()
	env := testEnv()
	// Full set of harmonics: the coded range is small and densely hit.
	var ta, tb []term.Term[num]
	for k := int16(0); k < 8; k++ {
		ta = append(ta, cos(1/float64(k+1), k))
		tb = append(tb, sin(1/float64(k+1), k+1))
	}
	_, report, err := MultiplyWith(context.Background(), build(t, env, args(1), ta...), build(t, env, args(1), tb...), Auto)
	require.NoError(t, err)
	assert.Equal(t, Dense, report.Used)

	// Two far apart terms: a sparse coded range.
	a := build(t, env, args(2), cos(1, 100, 0), cos(1, 0, 100))
	b := build(t, env, args(2), cos(1, 50, 50), cos(1, 1, 1))
	_, report, err = MultiplyWith(context.Background(), a, b, Auto)
	require.NoError(t, err)
	assert.Equal(t, Hashed, report.Used)
}

func TestMultiplyTruncation(t *testing.T) {
	t.Parallel()
	settings := DefaultSettings()
	settings.Truncation = 0.1
	env := NewEnv[num](settings)
	a := build(t, env, args(1), cos(1, 1), cos(1e-3, 2))
	b := build(t, env, args(1), cos(1, 3), cos(1e-3, 5))
	// threshold = 1.001² · 0.1 / 8 ≈ 0.0125; only the 1·1 pair survives.
	p, report, err := MultiplyWith(context.Background(), a, b, Hashed)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, 3, report.Truncated)
	assert.Equal(t, map[string]float64{"cos[2]": 0.5, "cos[4]": 0.5}, contents(p))
}

func TestMultiplyCanceled(t *testing.T) {
	t.Parallel()
	env := testEnv()
	a := build(t, env, args(1), cos(1, 1), cos(1, 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := MultiplyWith(ctx, a, a, Plain)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMultiplyReportsProgress(t *testing.T) {
	t.Parallel()
	env := testEnv()
	a := New(env, args(1))
	for i := int16(1); i <= 250; i++ {
		require.NoError(t, a.Insert(cos(1/float64(i), i)))
	}
	var seen []float64
	_, _, err := MultiplyWithProgress(context.Background(), a, a, Hashed, func(done float64) {
		seen = append(seen, done)
	})
	require.NoError(t, err)
	require.NotEmpty(t, seen)
	assert.Zero(t, seen[0])
	assert.Equal(t, 1.0, seen[len(seen)-1])
	assert.IsNonDecreasing(t, seen)
}

func TestDistance(t *testing.T) {
	t.Parallel()
	env := testEnv()
	a := build(t, env, args(2), cos(2, 1, 0), sin(1, 0, 1))
	b := build(t, env, args(2), cos(2.5, 1, 0), cos(3, 1, 1))
	d, err := Distance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5+1+3, d, 1e-12)

	d, err = Distance(a, a.Clone())
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestMulInPlace(t *testing.T) {
	t.Parallel()
	env := testEnv()
	s := build(t, env, args(1), cos(2, 1))
	require.NoError(t, s.Mul(s.Clone()))
	assert.Equal(t, map[string]float64{"cos[0]": 2, "cos[2]": 2}, contents(s))
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	for _, s := range []Strategy{Auto, Dense, Hashed, Plain} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrategy("fft")
	assert.Error(t, err)
}

// genSeries generates up to 10 terms over two arguments with coefficients
// spread over several orders of magnitude.
func genSeries(env *Env[num]) gopter.Gen {
	termGen := gopter.CombineGens(
		gen.Float64Range(-6, 0),
		gen.Bool(),
		gen.Bool(),
		gen.Int16Range(-6, 6),
		gen.Int16Range(-6, 6),
	).Map(func(v []interface{}) term.Term[num] {
		c := math.Pow(10, v[0].(float64))
		if v[1].(bool) {
			c = -c
		}
		key := cos
		if v[2].(bool) {
			key = sin
		}
		return key(c, v[3].(int16), v[4].(int16))
	})
	return gen.SliceOfN(10, termGen).Map(func(ts []term.Term[num]) *Series[num] {
		s, err := FromTerms(env, args(2), ts...)
		if err != nil {
			panic(err)
		}
		return s
	})
}

func TestMultiply_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	env := testEnv()

	properties.Property("strategies agree", prop.ForAll(
		func(a, b *Series[num]) bool {
			if a.Empty() || b.Empty() {
				return true
			}
			ref, _, err := MultiplyWith(context.Background(), a, b, Plain)
			if err != nil {
				return false
			}
			want := contents(ref)
			for _, strategy := range []Strategy{Dense, Hashed} {
				p, _, err := MultiplyWith(context.Background(), a, b, strategy)
				if err != nil || p.Len() != len(want) {
					return false
				}
				for k, v := range contents(p) {
					if math.Abs(v-want[k]) > 1e-12*math.Max(1, math.Abs(v)) {
						return false
					}
				}
			}
			return true
		},
		genSeries(env), genSeries(env),
	))

	properties.Property("tighter truncation never loses terms", prop.ForAll(
		func(a, b *Series[num], exp float64) bool {
			loose := env.Settings
			loose.Truncation = math.Pow(10, exp)
			tight := loose
			tight.Truncation /= 100
			looseA, tightA := a.Clone(), a.Clone()
			looseA.env, tightA.env = NewEnv[num](loose), NewEnv[num](tight)
			pl, err1 := Multiply(looseA, b)
			pt, err2 := Multiply(tightA, b)
			return err1 == nil && err2 == nil && pt.Len() >= pl.Len()
		},
		genSeries(env), genSeries(env), gen.Float64Range(-6, -1),
	))

	properties.Property("scalar series multiply like scalars", prop.ForAll(
		func(s *Series[num], c float64) bool {
			cs, err := FromTerms(env, args(2), cos(c, 0, 0))
			if err != nil {
				return false
			}
			p, err := Multiply(s, cs)
			if err != nil {
				return false
			}
			want := s.Clone()
			if want.MulScalar(c) != nil {
				return false
			}
			got, exp := contents(p), contents(want)
			if len(got) != len(exp) {
				return false
			}
			for k, v := range exp {
				if got[k] != v {
					return false
				}
			}
			return true
		},
		genSeries(env), gen.Float64Range(-10, 10).SuchThat(func(c float64) bool { return c != 0 }),
	))

	properties.TestingRun(t)
}
