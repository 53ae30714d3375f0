//go:build gmp

// This file provides a GMP-backed rational coefficient, compiled only with
// the "gmp" build tag (go build -tags=gmp). It requires libgmp on the system.

package coefficient

import (
	"fmt"
	"math"
	"math/big"

	"github.com/agbru/pseries/internal/symbol"
	"github.com/ncw/gmp"
)

// MPQ is an exact rational coefficient backed by GMP's mpq_t. It behaves like
// Rational; GMP pays off on series whose coefficients grow to thousands of
// digits.
type MPQ struct {
	v *gmp.Rat
}

var _ Coefficient[MPQ] = MPQ{}

// NewMPQ returns num/den.
func NewMPQ(num, den int64) MPQ {
	return MPQ{v: gmp.NewRat(num, den)}
}

// MPQFromFloat returns the exact rational value of x.
func MPQFromFloat(x float64) MPQ {
	return MPQ{v: gmpFromFloat(x)}
}

func gmpFromFloat(x float64) *gmp.Rat {
	r, ok := new(gmp.Rat).SetString(ratFromFloat(x).RatString())
	if !ok {
		panic(fmt.Sprintf("coefficient: cannot convert %g to mpq", x))
	}
	return r
}

func (q MPQ) rat() *gmp.Rat {
	if q.v == nil {
		return gmp.NewRat(0, 1)
	}
	return q.v
}

func (q MPQ) float() float64 {
	r, ok := new(big.Rat).SetString(q.rat().RatString())
	if !ok {
		return math.NaN()
	}
	f, _ := r.Float64()
	return f
}

func (q MPQ) Add(o MPQ) MPQ { return MPQ{v: new(gmp.Rat).Add(q.rat(), o.rat())} }
func (q MPQ) Sub(o MPQ) MPQ { return MPQ{v: new(gmp.Rat).Sub(q.rat(), o.rat())} }
func (q MPQ) Mul(o MPQ) MPQ { return MPQ{v: new(gmp.Rat).Mul(q.rat(), o.rat())} }
func (q MPQ) Scale(x float64) MPQ { return MPQ{v: new(gmp.Rat).Mul(q.rat(), gmpFromFloat(x))} }
func (q MPQ) Div(x float64) MPQ { return MPQ{v: new(gmp.Rat).Quo(q.rat(), gmpFromFloat(x))} }
func (q MPQ) Neg() MPQ { return MPQ{v: new(gmp.Rat).Neg(q.rat())} }

func (q MPQ) Norm(symbol.Vector) float64 { return math.Abs(q.float()) }
func (q MPQ) IsIgnorable(symbol.Vector, float64) bool { return q.rat().Sign() == 0 }
func (q MPQ) Width() int { return 0 }
func (q MPQ) IsInsertable(int) bool { return true }
func (q MPQ) NeedsPadding(int) bool { return false }
func (q MPQ) PadRight(int) MPQ { return q }
func (q MPQ) ApplyLayout(symbol.Layout) MPQ { return q }
func (q MPQ) Eval(float64, symbol.Vector) float64 { return q.float() }
func (q MPQ) String() string { return q.rat().RatString() }
