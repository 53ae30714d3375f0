package series

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/container"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/logging/mocks"
	"github.com/agbru/pseries/internal/metrics"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

type num = coefficient.Real

// args returns n angular arguments x0..x(n-1) with distinct phases and
// frequencies.
func args(n int) symbol.ArgSet {
	var a symbol.ArgSet
	for i := 0; i < n; i++ {
		a.Trig = append(a.Trig, symbol.New(fmt.Sprintf("x%d", i), 0.1*float64(i+1), float64(i+1)))
	}
	return a
}

func cos(c float64, exps ...int16) term.Term[num] { return term.New(num(c), trigkey.Cos(exps...)) }
func sin(c float64, exps ...int16) term.Term[num] { return term.New(num(c), trigkey.Sin(exps...)) }

func testEnv() *Env[num] { return NewEnv[num](DefaultSettings()) }

func build(t *testing.T, env *Env[num], a symbol.ArgSet, terms ...term.Term[num]) *Series[num] {
	t.Helper()
	s, err := FromTerms(env, a, terms...)
	require.NoError(t, err)
	return s
}

// contents maps key strings to coefficients.
func contents(s *Series[num]) map[string]float64 {
	out := make(map[string]float64, s.Len())
	for _, t := range s.Terms() {
		out[t.Key.String()] = float64(t.Cf)
	}
	return out
}

func TestInsertScenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		terms []term.Term[num]
		want  map[string]float64
	}{
		{"cancellation empties the series", []term.Term[num]{cos(3, 1), cos(-3, 1)}, map[string]float64{}},
		{"cosine canonicalization keeps the sign", []term.Term[num]{cos(5, 1), cos(2, -1)}, map[string]float64{"cos[1]": 7}},
		{"sine canonicalization negates", []term.Term[num]{sin(5, 1), sin(2, -1)}, map[string]float64{"sin[1]": 3}},
		{"zero sine is never stored", []term.Term[num]{sin(1e6, 0)}, map[string]float64{}},
		{"zero cosine is the constant", []term.Term[num]{cos(2, 0), cos(1, 0)}, map[string]float64{"cos[0]": 3}},
		{"flavours are distinct", []term.Term[num]{cos(1, 2), sin(1, 2)}, map[string]float64{"cos[2]": 1, "sin[2]": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := build(t, testEnv(), args(1), tt.terms...)
			assert.Equal(t, tt.want, contents(s))
			require.NoError(t, s.Checkup())
		})
	}
}

func TestInsertPadsNarrowTerms(t *testing.T) {
	t.Parallel()
	s := build(t, testEnv(), args(3), cos(1, 1), sin(2, -1, 2))
	assert.Equal(t, map[string]float64{"cos[1,0,0]": 1, "sin[1,-2,0]": -2}, contents(s))
	require.NoError(t, s.Checkup())
}

func TestInsertTooWide(t *testing.T) {
	t.Parallel()
	s := New(testEnv(), args(1))
	err := s.Insert(cos(1, 1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrCapacity))
	var opErr apperrors.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "insert", opErr.Op)
	assert.True(t, s.Empty())
}

func TestInsertSignedSub(t *testing.T) {
	t.Parallel()
	s := build(t, testEnv(), args(2), cos(3, 1))
	require.NoError(t, s.InsertSigned(cos(1, 1), container.Sub))
	require.NoError(t, s.InsertSigned(sin(2, -1), container.Sub))
	require.NoError(t, s.InsertSigned(cos(2, 1, 0), container.Sub))
	assert.Equal(t, map[string]float64{"sin[1,0]": 2}, contents(s))
	require.NoError(t, s.Checkup())

	require.Error(t, s.InsertSigned(cos(1, 1, 1, 1), container.Sub))
	assert.Equal(t, 1, s.Len())
}

func TestInsertRecordsOutcomes(t *testing.T) {
	t.Parallel()
	rec := metrics.NewRecorder()
	env := NewEnv[num](DefaultSettings(), WithMetrics[num](rec))
	build(t, env, args(1), cos(1, 1), cos(1, 1), cos(-2, 1), sin(1, 0))

	samples, err := rec.Snapshot()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, s := range samples {
		if s.Name == "pseries_insert_outcomes_total" {
			got[s.Labels] = s.Value
		}
	}
	assert.Equal(t, map[string]float64{
		"outcome=inserted": 1, "outcome=updated": 1, "outcome=erased": 1, "outcome=skipped": 1,
	}, got)
}

func TestAppendArgumentPads(t *testing.T) {
	t.Parallel()
	s := build(t, testEnv(), args(1), cos(4, 1))
	require.NoError(t, s.SetLinArgs([]int{2}))
	y := symbol.New("y", 0, 3)
	s.AppendArgument(symbol.Trig, y)

	assert.Equal(t, map[string]float64{"cos[1,0]": 4}, contents(s))
	assert.Equal(t, []int{2, 0}, s.LinArgs())
	assert.Equal(t, "[x0,y]", s.Args().Trig.String())
	require.NoError(t, s.Checkup())

	s.AppendArgument(symbol.Trig, y)
	assert.Len(t, s.Args().Trig, 2, "appending a present symbol is a no-op")
}

func TestPrependArgumentShifts(t *testing.T) {
	t.Parallel()
	s := build(t, testEnv(), args(1), sin(4, 1))
	require.NoError(t, s.SetLinArgs([]int{2}))
	s.PrependArgument(symbol.Trig, symbol.New("y", 0, 3))

	assert.Equal(t, map[string]float64{"sin[0,1]": 4}, contents(s))
	assert.Equal(t, []int{0, 2}, s.LinArgs())
	assert.Equal(t, "[y,x0]", s.Args().Trig.String())
	require.NoError(t, s.Checkup())
}

func TestAppendArgumentCapacityIsLogged(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, err error, _ ...logging.Field) {
			assert.True(t, errors.Is(err, apperrors.ErrCapacity))
		}).Times(2)

	settings := DefaultSettings()
	settings.MaxWidth = 1
	env := NewEnv[num](settings, WithLogger[num](logger))
	s := build(t, env, args(1), cos(1, 1))
	s.AppendArgument(symbol.Trig, symbol.New("y"))
	s.PrependArgument(symbol.Trig, symbol.New("y"))

	assert.Len(t, s.Args().Trig, 1)
	assert.Equal(t, map[string]float64{"cos[1]": 1}, contents(s))
}

func TestMergeArgsIncompatible(t *testing.T) {
	t.Parallel()
	x, y, z := symbol.New("x", 0, 1), symbol.New("y", 0, 2), symbol.New("z", 0, 3)
	s := build(t, testEnv(), symbol.ArgSet{Trig: symbol.Vector{x, y}}, cos(1, 1, -2))
	require.NoError(t, s.MergeArgs(symbol.ArgSet{Trig: symbol.Vector{y, z}}))

	// y, z first, then the symbols of s that the other set lacks.
	assert.Equal(t, "[y,z,x]", s.Args().Trig.String())
	// cos(x − 2y) = cos(−2y + x) = cos(2y − x) after canonicalization.
	assert.Equal(t, map[string]float64{"cos[2,0,-1]": 1}, contents(s))
	require.NoError(t, s.Checkup())
}

func TestMergeArgsOverCapacity(t *testing.T) {
	t.Parallel()
	settings := DefaultSettings()
	settings.MaxWidth = 2
	s := build(t, NewEnv[num](settings), args(2), cos(1, 1, 1))
	err := s.MergeArgs(symbol.ArgSet{Trig: symbol.Vector{symbol.New("other")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrCapacity))
	assert.Len(t, s.Args().Trig, 2)
}

func TestAddSub(t *testing.T) {
	t.Parallel()
	env := testEnv()
	x, y := symbol.New("x", 0.2, 1), symbol.New("y", 0.4, 2)
	a := build(t, env, symbol.ArgSet{Trig: symbol.Vector{x}}, cos(1, 1), sin(2, 2))
	b := build(t, env, symbol.ArgSet{Trig: symbol.Vector{y}}, cos(3, 1))
	require.NoError(t, b.SetLinArgs([]int{1}))

	sum := a.Clone()
	require.NoError(t, sum.Add(b))
	assert.Equal(t, 3, sum.Len())
	for _, tm := range []float64{0, 0.5, 2} {
		assert.InDelta(t, a.Eval(tm)+b.Eval(tm), sum.Eval(tm), 1e-12)
	}
	require.NoError(t, sum.Checkup())

	require.NoError(t, sum.Sub(b))
	for _, tm := range []float64{0, 0.5, 2} {
		assert.InDelta(t, a.Eval(tm), sum.Eval(tm), 1e-12)
	}
	assert.Equal(t, []int{0, 0}, sum.LinArgs())

	self := a.Clone()
	require.NoError(t, self.Sub(self))
	assert.True(t, self.Empty())
}

func TestScalarArithmetic(t *testing.T) {
	t.Parallel()
	env := testEnv()
	s := build(t, env, args(1), cos(2, 1), sin(-4, 3))

	require.NoError(t, s.MulScalar(0.5))
	assert.Equal(t, map[string]float64{"cos[1]": 1, "sin[3]": -2}, contents(s))

	require.NoError(t, s.DivScalar(2))
	assert.Equal(t, map[string]float64{"cos[1]": 0.5, "sin[3]": -1}, contents(s))

	s.Neg()
	assert.Equal(t, map[string]float64{"cos[1]": -0.5, "sin[3]": 1}, contents(s))

	require.NoError(t, s.AddScalar(num(7)))
	assert.Equal(t, 7.0, contents(s)["cos[0]"])

	require.NoError(t, s.MulScalar(0))
	assert.True(t, s.Empty())
}

func TestMulIntScalesLinearArguments(t *testing.T) {
	t.Parallel()
	s := build(t, testEnv(), args(2), cos(1, 1, 0))
	require.NoError(t, s.SetLinArgs([]int{1, -2}))
	s.MulInt(3)
	assert.Equal(t, []int{3, -6}, s.LinArgs())
	assert.Equal(t, map[string]float64{"cos[1,0]": 3}, contents(s))

	err := s.MulScalar(2)
	assert.True(t, errors.Is(err, ErrLinearArguments))
}

func TestDivisionByZeroIsLogged(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any(), gomock.Nil(), gomock.Any()).Times(1)

	env := NewEnv[num](DefaultSettings(), WithLogger[num](logger))
	s := build(t, env, args(1), cos(2, 1))
	require.NoError(t, s.DivScalar(0))
	assert.Equal(t, map[string]float64{"cos[1]": 2}, contents(s))
}

func TestSetLinArgsWidth(t *testing.T) {
	t.Parallel()
	s := New(testEnv(), args(2))
	assert.Error(t, s.SetLinArgs([]int{1}))
	assert.NoError(t, s.SetLinArgs([]int{1, 2}))
}

func TestQueries(t *testing.T) {
	t.Parallel()
	env := testEnv()
	s := build(t, env, args(2), cos(3, 1, 0), sin(-4, 0, 1))
	assert.InDelta(t, 7, s.Norm(), 1e-15)
	assert.False(t, s.IsCf())
	assert.Greater(t, s.Footprint(), build(t, env, args(2)).Footprint())

	c := build(t, env, args(2), cos(5, 0, 0))
	assert.True(t, c.IsCf())
	assert.False(t, build(t, env, args(2), sin(5, 1, 0)).IsCf())
	assert.Contains(t, s.String(), "len=2")
}

func TestPolynomialCoefficients(t *testing.T) {
	t.Parallel()
	env := NewEnv[coefficient.Polynomial](DefaultSettings())
	a := symbol.ArgSet{Cf: symbol.Vector{symbol.New("e", 0.1)}, Trig: symbol.Vector{symbol.New("l", 0, 1)}}
	e := coefficient.NewMonomial(2, 1)
	s := New(env, a)
	require.NoError(t, s.Insert(term.New(e, trigkey.Cos(1))))
	require.NoError(t, s.Insert(term.New(e.Neg(), trigkey.Cos(-1))))
	assert.True(t, s.Empty())
	require.NoError(t, s.Checkup())

	require.NoError(t, s.Insert(term.New(e, trigkey.Sin(1))))
	assert.InDelta(t, 2*0.1*math.Sin(0.5), s.Eval(0.5), 1e-12)
}
