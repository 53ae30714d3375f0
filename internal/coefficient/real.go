package coefficient

import (
	"math"
	"strconv"

	"github.com/agbru/pseries/internal/symbol"
)

// Real is a double-precision numerical coefficient.
type Real float64

var _ Coefficient[Real] = Real(0)

func (r Real) Add(o Real) Real { return r + o }
func (r Real) Sub(o Real) Real { return r - o }
func (r Real) Mul(o Real) Real { return r * o }
func (r Real) Scale(x float64) Real { return r * Real(x) }
func (r Real) Div(x float64) Real { return r / Real(x) }
func (r Real) Neg() Real { return -r }

// Norm is the absolute value.
func (r Real) Norm(symbol.Vector) float64 { return math.Abs(float64(r)) }

// IsIgnorable reports whether |r| is below the numerical zero.
func (r Real) IsIgnorable(_ symbol.Vector, zero float64) bool {
	return math.Abs(float64(r)) < zero
}

func (r Real) Width() int { return 0 }
func (r Real) IsInsertable(int) bool { return true }
func (r Real) NeedsPadding(int) bool { return false }
func (r Real) PadRight(int) Real { return r }
func (r Real) ApplyLayout(symbol.Layout) Real { return r }
func (r Real) Eval(float64, symbol.Vector) float64 { return float64(r) }

func (r Real) String() string {
	return strconv.FormatFloat(float64(r), 'g', -1, 64)
}
