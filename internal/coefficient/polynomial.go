package coefficient

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/agbru/pseries/internal/symbol"
)

// monomial is c·Π x_i^exps[i] over the coefficient arguments.
type monomial struct {
	exps []int16
	c    float64
}

// Polynomial is a sparse polynomial with real coefficients in the
// coefficient arguments of a series. All monomials share the polynomial's
// width. The zero value is the zero polynomial of width 0.
type Polynomial struct {
	terms map[string]monomial
	width int
}

var _ Coefficient[Polynomial] = Polynomial{}

// NewMonomial returns the single-monomial polynomial c·Π x_i^exps[i].
func NewMonomial(c float64, exps ...int16) Polynomial {
	p := Polynomial{terms: make(map[string]monomial, 1), width: len(exps)}
	p.accumulate(append([]int16(nil), exps...), c)
	return p
}

// Constant returns the constant polynomial c of the given width.
func Constant(c float64, width int) Polynomial {
	return NewMonomial(c, make([]int16, width)...)
}

func expKey(exps []int16) string {
	var b strings.Builder
	b.Grow(2 * len(exps))
	for _, e := range exps {
		b.WriteByte(byte(uint16(e)))
		b.WriteByte(byte(uint16(e) >> 8))
	}
	return b.String()
}

func (p *Polynomial) accumulate(exps []int16, c float64) {
	if c == 0 {
		return
	}
	if p.terms == nil {
		p.terms = make(map[string]monomial)
	}
	k := expKey(exps)
	if m, ok := p.terms[k]; ok {
		m.c += c
		if m.c == 0 {
			delete(p.terms, k)
			return
		}
		p.terms[k] = m
		return
	}
	p.terms[k] = monomial{exps: exps, c: c}
}

func (p Polynomial) mapped(width int, f func(exps []int16) []int16, g func(c float64) float64) Polynomial {
	out := Polynomial{terms: make(map[string]monomial, len(p.terms)), width: width}
	for _, m := range p.terms {
		out.accumulate(f(m.exps), g(m.c))
	}
	return out
}

func same(e []int16) []int16 { return e }

// Len returns the number of monomials.
func (p Polynomial) Len() int { return len(p.terms) }

func (p Polynomial) Add(o Polynomial) Polynomial {
	w := max(p.width, o.width)
	out := p.PadRight(w)
	for _, m := range o.PadRight(w).terms {
		out.accumulate(m.exps, m.c)
	}
	return out
}

func (p Polynomial) Sub(o Polynomial) Polynomial { return p.Add(o.Neg()) }

func (p Polynomial) Mul(o Polynomial) Polynomial {
	w := max(p.width, o.width)
	a, b := p.PadRight(w), o.PadRight(w)
	out := Polynomial{terms: make(map[string]monomial, len(a.terms)*len(b.terms)), width: w}
	for _, m1 := range a.terms {
		for _, m2 := range b.terms {
			exps := make([]int16, w)
			for i := range exps {
				exps[i] = m1.exps[i] + m2.exps[i]
			}
			out.accumulate(exps, m1.c*m2.c)
		}
	}
	return out
}

func (p Polynomial) Scale(x float64) Polynomial {
	return p.mapped(p.width, same, func(c float64) float64 { return c * x })
}

func (p Polynomial) Div(x float64) Polynomial {
	return p.mapped(p.width, same, func(c float64) float64 { return c / x })
}

func (p Polynomial) Neg() Polynomial {
	return p.mapped(p.width, same, func(c float64) float64 { return -c })
}

// Norm is the absolute value of the polynomial evaluated at t = 0, i.e. with
// every argument replaced by its phase.
func (p Polynomial) Norm(args symbol.Vector) float64 {
	return math.Abs(p.Eval(0, args))
}

// IsIgnorable reports whether every monomial coefficient is below the
// numerical zero; the empty polynomial is ignorable.
func (p Polynomial) IsIgnorable(_ symbol.Vector, zero float64) bool {
	for _, m := range p.terms {
		if math.Abs(m.c) >= zero {
			return false
		}
	}
	return true
}

func (p Polynomial) Width() int { return p.width }
func (p Polynomial) IsInsertable(width int) bool { return p.width <= width }
func (p Polynomial) NeedsPadding(width int) bool { return p.width < width }

// PadRight widens every monomial with zero exponents. It panics when width is
// smaller than the current width.
func (p Polynomial) PadRight(width int) Polynomial {
	if width < p.width {
		panic("coefficient: cannot pad polynomial to a smaller width")
	}
	return p.mapped(width, func(e []int16) []int16 {
		out := make([]int16, width)
		copy(out, e)
		return out
	}, func(c float64) float64 { return c })
}

func (p Polynomial) ApplyLayout(l symbol.Layout) Polynomial {
	return p.mapped(len(l), func(e []int16) []int16 {
		return symbol.Apply(l, e)
	}, func(c float64) float64 { return c })
}

func (p Polynomial) Eval(t float64, args symbol.Vector) float64 {
	values := make([]float64, p.width)
	for i := range values {
		if i < len(args) {
			values[i] = args[i].Eval(t)
		}
	}
	var sum float64
	for _, m := range p.terms {
		v := m.c
		for i, e := range m.exps {
			v *= ipow(values[i], int(e))
		}
		sum += v
	}
	return sum
}

func ipow(x float64, n int) float64 {
	if n < 0 {
		return 1 / ipow(x, -n)
	}
	r := 1.0
	for n > 0 {
		if n&1 == 1 {
			r *= x
		}
		x *= x
		n >>= 1
	}
	return r
}

// String renders monomials in lexicographic exponent order, e.g.
// "2*x0^1*x1^2 + -1".
func (p Polynomial) String() string {
	if len(p.terms) == 0 {
		return "0"
	}
	ms := make([]monomial, 0, len(p.terms))
	for _, m := range p.terms {
		ms = append(ms, m)
	}
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i].exps, ms[j].exps
		for k := range a {
			if a[k] != b[k] {
				return a[k] > b[k]
			}
		}
		return false
	})
	parts := make([]string, len(ms))
	for i, m := range ms {
		var b strings.Builder
		b.WriteString(strconv.FormatFloat(m.c, 'g', -1, 64))
		for k, e := range m.exps {
			if e == 0 {
				continue
			}
			b.WriteString("*x")
			b.WriteString(strconv.Itoa(k))
			b.WriteByte('^')
			b.WriteString(strconv.Itoa(int(e)))
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, " + ")
}
