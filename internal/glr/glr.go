// Package glr maps multiplier vectors onto single integers through a
// generalized lexicographic (mixed-radix) representation, so that the
// convolutions of series multiplication become integer additions.
//
// A Coder is built for one multiplication from the exponent bounds of both
// operands. Each dimension i gets the range [min_i, max_i] spanning every
// exponent the operands and their sums and differences can take, and the
// coding vector is
//
//	coding[0] = 1, coding[i+1] = coding[i]·(max_i - min_i + 1)
//
// A vector e is encoded as Σ coding[i]·e_i. Codes are linear, so the code of
// a sum or difference of two vectors is the sum or difference of their codes.
package glr

import (
	"fmt"
	"math"
	"math/big"

	"github.com/agbru/pseries/internal/trigkey"
)

// Limits holds per-dimension exponent bounds of one series.
type Limits struct {
	Min []int
	Max []int
}

// NewLimits returns empty bounds for width dimensions.
func NewLimits(width int) Limits {
	l := Limits{Min: make([]int, width), Max: make([]int, width)}
	for i := range l.Min {
		l.Min[i] = math.MaxInt
		l.Max[i] = math.MinInt
	}
	return l
}

// Observe widens the bounds to include k.
func (l Limits) Observe(k trigkey.Key) {
	for i := range l.Min {
		e := int(k.At(i))
		l.Min[i] = min(l.Min[i], e)
		l.Max[i] = max(l.Max[i], e)
	}
}

// Width returns the number of dimensions.
func (l Limits) Width() int { return len(l.Min) }

// Coder encodes and decodes multiplier vectors of one multiplication.
type Coder struct {
	min, max []int
	coding   []int64
	codeMin  int64
	codeMax  int64
	viable   bool
}

// New builds the coder for the product of two series with bounds l1 and l2.
// Both limits must have the same width and have observed at least one key.
func New(l1, l2 Limits) *Coder {
	if l1.Width() != l2.Width() {
		panic(fmt.Sprintf("glr: limits of widths %d and %d", l1.Width(), l2.Width()))
	}
	w := l1.Width()
	c := &Coder{min: make([]int, w), max: make([]int, w)}
	for i := 0; i < w; i++ {
		candidates := [8]int{
			l1.Min[i], l1.Max[i], l2.Min[i], l2.Max[i],
			l1.Max[i] + l2.Max[i], l1.Min[i] + l2.Min[i],
			l1.Max[i] - l2.Min[i], l1.Min[i] - l2.Max[i],
		}
		c.min[i], c.max[i] = candidates[0], candidates[0]
		for _, v := range candidates[1:] {
			c.min[i] = min(c.min[i], v)
			c.max[i] = max(c.max[i], v)
		}
	}
	c.build()
	return c
}

// build computes the coding vector in arbitrary precision and records
// whether cardinality and the extreme codes fit in an int64.
func (c *Coder) build() {
	w := len(c.min)
	coding := make([]*big.Int, w+1)
	coding[0] = big.NewInt(1)
	hmin, hmax := new(big.Int), new(big.Int)
	tmp := new(big.Int)
	for i := 0; i < w; i++ {
		radix := big.NewInt(int64(c.max[i]) - int64(c.min[i]) + 1)
		coding[i+1] = new(big.Int).Mul(coding[i], radix)
		hmin.Add(hmin, tmp.Mul(coding[i], big.NewInt(int64(c.min[i]))))
		hmax.Add(hmax, tmp.Mul(coding[i], big.NewInt(int64(c.max[i]))))
	}
	if !coding[w].IsInt64() || !hmin.IsInt64() || !hmax.IsInt64() {
		return
	}
	c.coding = make([]int64, w+1)
	for i, v := range coding {
		c.coding[i] = v.Int64()
	}
	c.codeMin, c.codeMax = hmin.Int64(), hmax.Int64()
	c.viable = true
}

// Viable reports whether the coded range fits in an int64. Encode and Decode
// must not be called on a non-viable coder.
func (c *Coder) Viable() bool { return c.viable }

// Width returns the number of dimensions.
func (c *Coder) Width() int { return len(c.min) }

// Range returns the bounds of dimension i.
func (c *Coder) Range(i int) (lo, hi int) { return c.min[i], c.max[i] }

// CodeMin returns the code of the all-minimum vector.
func (c *Coder) CodeMin() int64 { return c.codeMin }

// CodeMax returns the code of the all-maximum vector.
func (c *Coder) CodeMax() int64 { return c.codeMax }

// Cardinality returns the number of codes in [CodeMin, CodeMax], or 0 when
// the coder is not viable.
func (c *Coder) Cardinality() int64 {
	if !c.viable {
		return 0
	}
	return c.coding[len(c.coding)-1]
}

// Encode returns Σ coding[i]·k_i.
func (c *Coder) Encode(k trigkey.Key) int64 {
	c.mustBeViable()
	var code int64
	for i := 0; i < len(c.min); i++ {
		code += c.coding[i] * int64(k.At(i))
	}
	return code
}

// Decode inverts Encode for codes in [CodeMin, CodeMax], writing the
// multipliers into dst, which must have Width elements.
func (c *Coder) Decode(code int64, dst []int) {
	c.mustBeViable()
	if code < c.codeMin || code > c.codeMax {
		panic(fmt.Sprintf("glr: code %d outside [%d, %d]", code, c.codeMin, c.codeMax))
	}
	n := code - c.codeMin
	for i := range c.min {
		dst[i] = int((n%c.coding[i+1])/c.coding[i]) + c.min[i]
	}
}

// DecodeKey decodes code into a key of the given flavour. Ranges are built
// from 16-bit exponents but sums may leave that range, which is reported as
// a capacity error.
func (c *Coder) DecodeKey(code int64, cos bool, scratch []int) (trigkey.Key, error) {
	c.Decode(code, scratch)
	return trigkey.FromInts(cos, scratch)
}

func (c *Coder) mustBeViable() {
	if !c.viable {
		panic("glr: coder is not viable")
	}
}
