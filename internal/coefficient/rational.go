package coefficient

import (
	"fmt"
	"math"
	"math/big"

	"github.com/agbru/pseries/internal/symbol"
)

// Rational is an exact rational coefficient backed by math/big. The zero
// value is 0. Only an exactly zero Rational is ignorable: exact arithmetic
// does not accumulate rounding noise.
type Rational struct {
	v *big.Rat
}

var _ Coefficient[Rational] = Rational{}

// NewRational returns num/den. It panics if den is zero.
func NewRational(num, den int64) Rational {
	return Rational{v: big.NewRat(num, den)}
}

// RationalFromFloat returns the exact rational value of x.
func RationalFromFloat(x float64) Rational {
	return Rational{v: ratFromFloat(x)}
}

func ratFromFloat(x float64) *big.Rat {
	r := new(big.Rat)
	if r.SetFloat64(x) == nil {
		panic(fmt.Sprintf("coefficient: non-finite scalar %g", x))
	}
	return r
}

func (q Rational) rat() *big.Rat {
	if q.v == nil {
		return new(big.Rat)
	}
	return q.v
}

// Rat returns a copy of the underlying value.
func (q Rational) Rat() *big.Rat { return new(big.Rat).Set(q.rat()) }

// Cmp compares q and o like big.Rat.Cmp.
func (q Rational) Cmp(o Rational) int { return q.rat().Cmp(o.rat()) }

func (q Rational) Add(o Rational) Rational {
	return Rational{v: new(big.Rat).Add(q.rat(), o.rat())}
}

func (q Rational) Sub(o Rational) Rational {
	return Rational{v: new(big.Rat).Sub(q.rat(), o.rat())}
}

func (q Rational) Mul(o Rational) Rational {
	return Rational{v: new(big.Rat).Mul(q.rat(), o.rat())}
}

func (q Rational) Scale(x float64) Rational {
	return Rational{v: new(big.Rat).Mul(q.rat(), ratFromFloat(x))}
}

func (q Rational) Div(x float64) Rational {
	return Rational{v: new(big.Rat).Quo(q.rat(), ratFromFloat(x))}
}

func (q Rational) Neg() Rational {
	return Rational{v: new(big.Rat).Neg(q.rat())}
}

func (q Rational) Norm(symbol.Vector) float64 {
	f, _ := q.rat().Float64()
	return math.Abs(f)
}

func (q Rational) IsIgnorable(symbol.Vector, float64) bool {
	return q.rat().Sign() == 0
}

func (q Rational) Width() int { return 0 }
func (q Rational) IsInsertable(int) bool { return true }
func (q Rational) NeedsPadding(int) bool { return false }
func (q Rational) PadRight(int) Rational { return q }
func (q Rational) ApplyLayout(symbol.Layout) Rational { return q }

func (q Rational) Eval(float64, symbol.Vector) float64 {
	f, _ := q.rat().Float64()
	return f
}

func (q Rational) String() string { return q.rat().RatString() }
