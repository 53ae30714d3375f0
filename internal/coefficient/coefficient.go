// Package coefficient defines the capability set series arithmetic needs from
// a term coefficient, and the concrete coefficient kinds shipped with the
// library.
//
// Coefficients are values: every operation returns a new coefficient and
// leaves its receiver untouched, so a coefficient stored in a container can
// be shared freely between series.
package coefficient

import (
	"fmt"

	"github.com/agbru/pseries/internal/symbol"
)

// Coefficient is the algebraic interface implemented by every coefficient
// kind C. Width-related methods refer to the coefficient argument vector of
// the owning series; numeric kinds have width zero and never need padding.
type Coefficient[C any] interface {
	// Add returns the sum of the receiver and o.
	Add(o C) C
	// Sub returns the receiver minus o.
	Sub(o C) C
	// Mul returns the product of the receiver and o.
	Mul(o C) C
	// Scale returns the receiver multiplied by the scalar x.
	Scale(x float64) C
	// Div returns the receiver divided by the non-zero scalar x.
	Div(x float64) C
	// Neg returns the opposite of the receiver.
	Neg() C

	// Norm is the magnitude used for truncation and norm ordering.
	Norm(args symbol.Vector) float64
	// IsIgnorable reports whether the coefficient is negligible under the
	// numerical-zero threshold.
	IsIgnorable(args symbol.Vector, zero float64) bool

	// Width is the number of coefficient arguments the value refers to.
	Width() int
	// IsInsertable reports whether the value fits a series of the given width.
	IsInsertable(width int) bool
	// NeedsPadding reports whether the value is narrower than width.
	NeedsPadding(width int) bool
	// PadRight widens the value to width with zero exponents.
	PadRight(width int) C
	// ApplyLayout rewrites the value after an argument merge.
	ApplyLayout(l symbol.Layout) C

	// Eval evaluates the coefficient at time t.
	Eval(t float64, args symbol.Vector) float64

	fmt.Stringer
}
