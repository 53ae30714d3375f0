// Package symbol holds the named arguments of a series and the layouts used
// to merge two argument lists.
package symbol

import (
	"fmt"
	"strings"
)

// Symbol is a named argument whose value is a polynomial in time:
// poly[0] + poly[1]·t + poly[2]·t² + ...
// Symbols are immutable and shared by pointer.
type Symbol struct {
	name string
	poly []float64
}

// New creates a symbol with the given time-polynomial coefficients.
func New(name string, poly ...float64) *Symbol {
	p := make([]float64, len(poly))
	copy(p, poly)
	return &Symbol{name: name, poly: p}
}

// Name returns the symbol's name.
func (s *Symbol) Name() string { return s.name }

// Poly returns a copy of the time-polynomial coefficients.
func (s *Symbol) Poly() []float64 {
	p := make([]float64, len(s.poly))
	copy(p, s.poly)
	return p
}

// Eval evaluates the time polynomial at t (Horner's scheme).
func (s *Symbol) Eval(t float64) float64 {
	var v float64
	for i := len(s.poly) - 1; i >= 0; i-- {
		v = v*t + s.poly[i]
	}
	return v
}

// Phase is the constant term of the time polynomial.
func (s *Symbol) Phase() float64 {
	if len(s.poly) == 0 {
		return 0
	}
	return s.poly[0]
}

// Freq is the linear term of the time polynomial.
func (s *Symbol) Freq() float64 {
	if len(s.poly) < 2 {
		return 0
	}
	return s.poly[1]
}

func (s *Symbol) String() string {
	parts := make([]string, len(s.poly))
	for i, c := range s.poly {
		parts[i] = fmt.Sprintf("%g", c)
	}
	return s.name + "[" + strings.Join(parts, ";") + "]"
}

// Kind selects one of the two argument vectors of an ArgSet.
type Kind int

const (
	// Cf is the coefficient argument vector (polynomial coefficients).
	Cf Kind = iota
	// Trig is the angular argument vector (trigonometric keys).
	Trig
)

func (k Kind) String() string {
	if k == Cf {
		return "cf arguments"
	}
	return "trig arguments"
}

// Vector is an ordered list of symbols.
type Vector []*Symbol

// Index returns the position of the symbol with the given name, or -1.
func (v Vector) Index(name string) int {
	for i, s := range v {
		if s.name == name {
			return i
		}
	}
	return -1
}

// Compatible reports whether the shorter of v and o is a prefix of the longer.
func (v Vector) Compatible(o Vector) bool {
	n := min(len(v), len(o))
	for i := 0; i < n; i++ {
		if v[i].name != o[i].name {
			return false
		}
	}
	return true
}

// Clone returns a copy of the slice; symbols are shared.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	return append(Vector(nil), v...)
}

func (v Vector) String() string {
	names := make([]string, len(v))
	for i, s := range v {
		names[i] = s.name
	}
	return "[" + strings.Join(names, ",") + "]"
}

// ArgSet groups the coefficient and angular argument vectors of a series.
type ArgSet struct {
	Cf   Vector
	Trig Vector
}

// Get returns the vector selected by k.
func (a ArgSet) Get(k Kind) Vector {
	if k == Cf {
		return a.Cf
	}
	return a.Trig
}

// With returns a copy of a with the vector selected by k replaced.
func (a ArgSet) With(k Kind, v Vector) ArgSet {
	if k == Cf {
		a.Cf = v
	} else {
		a.Trig = v
	}
	return a
}

// Clone returns a copy of both vectors.
func (a ArgSet) Clone() ArgSet {
	return ArgSet{Cf: a.Cf.Clone(), Trig: a.Trig.Clone()}
}

// Compatible reports whether both vectors of a and o are prefix-compatible.
func (a ArgSet) Compatible(o ArgSet) bool {
	return a.Cf.Compatible(o.Cf) && a.Trig.Compatible(o.Trig)
}
