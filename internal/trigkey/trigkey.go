// Package trigkey implements the trigonometric part of a Poisson-series term:
// an integer multiplier vector over the angular arguments together with a
// cosine/sine flavour.
//
// Keys are immutable values. Operations that change the exponents return a
// new key and never write into the receiver's backing array, so keys can be
// shared between containers without copying.
package trigkey

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/symbol"
)

// Exponent bounds. Multipliers are stored on 16 bits.
const (
	MaxExponent = math.MaxInt16
	MinExponent = math.MinInt16
)

// Key is a trigonometric key: cos or sin of Σ exps[i]·arg_i.
type Key struct {
	exps []int16
	cos  bool
}

// New returns a key with a private copy of exps.
func New(cos bool, exps ...int16) Key {
	return Key{exps: append([]int16(nil), exps...), cos: cos}
}

// Cos returns a cosine key.
func Cos(exps ...int16) Key { return New(true, exps...) }

// Sin returns a sine key.
func Sin(exps ...int16) Key { return New(false, exps...) }

// FromInts builds a key from wide integers, failing with a CapacityError when
// a multiplier does not fit the exponent range.
func FromInts(cos bool, exps []int) (Key, error) {
	out := make([]int16, len(exps))
	for i, e := range exps {
		if e > MaxExponent || e < MinExponent {
			return Key{}, apperrors.CapacityError{Resource: "trig exponent", Requested: e, Limit: MaxExponent}
		}
		out[i] = int16(e)
	}
	return Key{exps: out, cos: cos}, nil
}

// Width is the number of multipliers.
func (k Key) Width() int { return len(k.exps) }

// At returns the i-th multiplier.
func (k Key) At(i int) int16 { return k.exps[i] }

// Exponents returns a copy of the multipliers.
func (k Key) Exponents() []int16 { return append([]int16(nil), k.exps...) }

// IsCos reports whether the key has cosine flavour.
func (k Key) IsCos() bool { return k.cos }

// WithFlavour returns the key with the given flavour and the same multipliers.
func (k Key) WithFlavour(cos bool) Key { return Key{exps: k.exps, cos: cos} }

// PadRight appends zero multipliers up to width. Shrinking is a programming
// error and panics.
func (k Key) PadRight(width int) Key {
	if width < len(k.exps) {
		panic("trigkey: PadRight to a smaller width")
	}
	if width == len(k.exps) {
		return k
	}
	out := make([]int16, width)
	copy(out, k.exps)
	return Key{exps: out, cos: k.cos}
}

// ApplyLayout reorders the multipliers after an argument merge; positions the
// layout does not map become zero.
func (k Key) ApplyLayout(l symbol.Layout) Key {
	return Key{exps: symbol.Apply(l, k.exps), cos: k.cos}
}

// IsZero reports whether every multiplier is zero.
func (k Key) IsZero() bool {
	for _, e := range k.exps {
		if e != 0 {
			return false
		}
	}
	return true
}

// IsIgnorable reports whether the key is sin(0), which is identically zero.
func (k Key) IsIgnorable() bool { return !k.cos && k.IsZero() }

// Sign returns the sign of the first non-zero multiplier; the zero key has
// sign +1.
func (k Key) Sign() int {
	for _, e := range k.exps {
		switch {
		case e > 0:
			return 1
		case e < 0:
			return -1
		}
	}
	return 1
}

// Inverted returns the key with every multiplier negated.
func (k Key) Inverted() Key {
	out := make([]int16, len(k.exps))
	for i, e := range k.exps {
		out[i] = -e
	}
	return Key{exps: out, cos: k.cos}
}

// Canonical returns the key with a non-negative leading multiplier, and
// whether it had to be inverted.
func (k Key) Canonical() (Key, bool) {
	if k.Sign() < 0 {
		return k.Inverted(), true
	}
	return k, false
}

// Convolve returns the multiplier vectors k-o and k+o as cosine keys. Both
// keys must have the same width. A multiplier outside the exponent range
// fails with a CapacityError.
func (k Key) Convolve(o Key) (diff, sum Key, err error) {
	if len(k.exps) != len(o.exps) {
		panic("trigkey: convolving keys of different widths")
	}
	d := make([]int, len(k.exps))
	s := make([]int, len(k.exps))
	for i, e := range k.exps {
		d[i] = int(e) - int(o.exps[i])
		s[i] = int(e) + int(o.exps[i])
	}
	if diff, err = FromInts(true, d); err != nil {
		return Key{}, Key{}, err
	}
	if sum, err = FromInts(true, s); err != nil {
		return Key{}, Key{}, err
	}
	return diff, sum, nil
}

// Hash combines the flavour with the multipliers through xxhash. Equal keys
// hash equally.
func (k Key) Hash() uint64 {
	var stack [1 + 2*32]byte
	var buf []byte
	if n := 1 + 2*len(k.exps); n <= len(stack) {
		buf = stack[:n]
	} else {
		buf = make([]byte, n)
	}
	if k.cos {
		buf[0] = 1
	}
	for i, e := range k.exps {
		binary.LittleEndian.PutUint16(buf[1+2*i:], uint16(e))
	}
	return xxhash.Sum64(buf)
}

// Equal reports whether both keys have the same flavour and multipliers.
func (k Key) Equal(o Key) bool {
	if k.cos != o.cos || len(k.exps) != len(o.exps) {
		return false
	}
	for i, e := range k.exps {
		if e != o.exps[i] {
			return false
		}
	}
	return true
}

// Compare orders keys by flavour (sine first), then lexicographically by
// multipliers, then by width. It returns -1, 0 or +1.
func (k Key) Compare(o Key) int {
	if k.cos != o.cos {
		if !k.cos {
			return -1
		}
		return 1
	}
	n := min(len(k.exps), len(o.exps))
	for i := 0; i < n; i++ {
		switch {
		case k.exps[i] < o.exps[i]:
			return -1
		case k.exps[i] > o.exps[i]:
			return 1
		}
	}
	switch {
	case len(k.exps) < len(o.exps):
		return -1
	case len(k.exps) > len(o.exps):
		return 1
	}
	return 0
}

// Angle returns Σ exps[i]·args[i](t).
func (k Key) Angle(t float64, args symbol.Vector) float64 {
	var a float64
	for i, e := range k.exps {
		if e != 0 {
			a += float64(e) * args[i].Eval(t)
		}
	}
	return a
}

// Phase returns Σ exps[i]·phase(args[i]).
func (k Key) Phase(args symbol.Vector) float64 {
	var a float64
	for i, e := range k.exps {
		a += float64(e) * args[i].Phase()
	}
	return a
}

// Freq returns Σ exps[i]·freq(args[i]).
func (k Key) Freq(args symbol.Vector) float64 {
	var a float64
	for i, e := range k.exps {
		a += float64(e) * args[i].Freq()
	}
	return a
}

// Eval evaluates cos or sin of the key's angle at time t.
func (k Key) Eval(t float64, args symbol.Vector) float64 {
	if k.cos {
		return math.Cos(k.Angle(t, args))
	}
	return math.Sin(k.Angle(t, args))
}

// EvalCached evaluates the key from the cached complex exponentials of c:
// the product of exp(i·e_j·arg_j(t)) is exp(i·angle), whose real part is the
// cosine and imaginary part the sine.
func (k Key) EvalCached(c *ExpCache) float64 {
	z := complex(1, 0)
	for i, e := range k.exps {
		if e != 0 {
			z *= c.Exp(i, int(e))
		}
	}
	if k.cos {
		return real(z)
	}
	return imag(z)
}

// String renders the key as "cos[1,-2]" or "sin[0,3]".
func (k Key) String() string {
	var b strings.Builder
	if k.cos {
		b.WriteString("cos[")
	} else {
		b.WriteString("sin[")
	}
	for i, e := range k.exps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(e)))
	}
	b.WriteByte(']')
	return b.String()
}
