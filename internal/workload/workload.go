// Package workload builds deterministic synthetic operands for the
// multiplication engine.
//
// An operand of a given width and degree holds one term per canonical
// harmonic k with |k|₁ ≤ degree. Coefficients decay geometrically with the
// order |k|₁, so truncation has something to cut.
package workload

import (
	"fmt"
	"math"

	"github.com/agbru/pseries/internal/coefficient"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

// MaxTerms bounds the length of a generated operand.
const MaxTerms = 1 << 20

// Spec describes a pair of synthetic operands.
type Spec struct {
	// Width is the number of angular arguments.
	Width int
	// Degree is the largest harmonic order.
	Degree int
	// Spread is the coefficient ratio between consecutive orders, in (0, 1].
	Spread float64
}

// DefaultSpec returns a small three-argument workload.
func DefaultSpec() Spec {
	return Spec{Width: 3, Degree: 6, Spread: 0.5}
}

// Validate checks the ranges of the fields.
func (s Spec) Validate() error {
	switch {
	case s.Width < 1:
		return apperrors.ValidationError{Field: "width", Message: "must be at least 1"}
	case s.Degree < 0 || s.Degree > trigkey.MaxExponent/2:
		return apperrors.ValidationError{Field: "degree", Message: fmt.Sprintf("must be in [0, %d]", trigkey.MaxExponent/2)}
	case !(s.Spread > 0 && s.Spread <= 1):
		return apperrors.ValidationError{Field: "spread", Message: "must be in (0, 1]"}
	}
	return nil
}

// Arguments returns width angular arguments l0, l1, ... with distinct phases
// and pairwise incommensurate frequencies.
func Arguments(width int) symbol.ArgSet {
	var a symbol.ArgSet
	for i := 0; i < width; i++ {
		a.Trig = append(a.Trig, symbol.New(fmt.Sprintf("l%d", i), 0.1*float64(i+1), math.Sqrt(float64(i+2))))
	}
	return a
}

// Harmonics calls fn for every canonical exponent vector of the given width
// with |k|₁ ≤ degree, in lexicographic order of the exponents, until fn
// returns false. The zero vector comes first.
func Harmonics(width, degree int, fn func(k []int16, order int) bool) {
	k := make([]int16, width)
	var walk func(i, budget int, leading bool) bool
	walk = func(i, budget int, leading bool) bool {
		if i == width {
			return fn(append([]int16(nil), k...), degree-budget)
		}
		lo := -budget
		if leading {
			// Before the first non-zero exponent only non-negative values are canonical.
			lo = 0
		}
		for e := lo; e <= budget; e++ {
			k[i] = int16(e)
			d := e
			if d < 0 {
				d = -d
			}
			if !walk(i+1, budget-d, leading && e == 0) {
				return false
			}
		}
		k[i] = 0
		return true
	}
	walk(0, degree, true)
}

// Count returns the number of harmonics Harmonics visits, stopping at limit+1.
func Count(width, degree, limit int) int {
	n := 0
	Harmonics(width, degree, func([]int16, int) bool {
		n++
		return n <= limit
	})
	return n
}

// Generate returns the operands of spec:
//
//	a = Σ spread^|k| cos(k·l)
//	b = Σ spread^|k|/(|k|+1) cs(k·l)
//
// where cs is cos for even orders and sin for odd ones. cf converts the real
// coefficients into C.
func Generate[C coefficient.Coefficient[C]](env *series.Env[C], spec Spec, cf func(float64) C) (a, b *series.Series[C], err error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	if n := Count(spec.Width, spec.Degree, MaxTerms); n > MaxTerms {
		return nil, nil, apperrors.CapacityError{Resource: "operand terms", Requested: n, Limit: MaxTerms}
	}

	args := Arguments(spec.Width)
	a, b = series.New(env, args), series.New(env, args)
	Harmonics(spec.Width, spec.Degree, func(k []int16, order int) bool {
		w := math.Pow(spec.Spread, float64(order))
		if err = a.Insert(term.New(cf(w), trigkey.Cos(k...))); err != nil {
			return false
		}
		odd := order%2 == 1
		err = b.Insert(term.New(cf(w/float64(order+1)), trigkey.New(!odd, k...)))
		return err == nil
	})
	if err != nil {
		return nil, nil, apperrors.WrapError(err, "generating workload")
	}
	env.Logger.Debug("workload generated",
		logging.Int("width", spec.Width),
		logging.Int("degree", spec.Degree),
		logging.Int("terms_a", a.Len()),
		logging.Int("terms_b", b.Len()))
	return a, b, nil
}

// Reference returns t ↦ a(t)·b(t), the exact product evaluated pointwise.
func Reference[C coefficient.Coefficient[C]](a, b *series.Series[C]) func(float64) float64 {
	return func(t float64) float64 { return a.Eval(t) * b.Eval(t) }
}
