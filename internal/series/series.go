// Package series implements truncated Poisson series: sums of terms
// C·cos(Σ e_i·x_i) or C·sin(Σ e_i·x_i) over a set of angular arguments.
//
// A Series owns one dual-index container. Every term reaches it through the
// public insertion path, which pads the term to the series' argument widths
// and gives its key a non-negative leading multiplier before merging. Series
// are not safe for concurrent mutation; read-only evaluation may run in
// parallel.
package series

import (
	"fmt"
	"strings"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/container"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/term"
)

// Series is a truncated Poisson series with coefficients of kind C.
type Series[C coefficient.Coefficient[C]] struct {
	env     *Env[C]
	args    symbol.ArgSet
	linArgs []int
	terms   *container.Container[C]
}

// New returns an empty series over args.
func New[C coefficient.Coefficient[C]](env *Env[C], args symbol.ArgSet) *Series[C] {
	return &Series[C]{
		env:     env,
		args:    args.Clone(),
		linArgs: make([]int, len(args.Trig)),
		terms:   container.New[C](),
	}
}

// FromTerms builds a series over args and inserts every term.
func FromTerms[C coefficient.Coefficient[C]](env *Env[C], args symbol.ArgSet, terms ...term.Term[C]) (*Series[C], error) {
	s := New(env, args)
	for _, t := range terms {
		if err := s.Insert(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Env returns the environment the series was built with.
func (s *Series[C]) Env() *Env[C] { return s.env }

// Args returns a copy of the argument vectors.
func (s *Series[C]) Args() symbol.ArgSet { return s.args.Clone() }

// LinArgs returns a copy of the linear (secular) multipliers.
func (s *Series[C]) LinArgs() []int { return append([]int(nil), s.linArgs...) }

// SetLinArgs replaces the linear multipliers; there must be one per angular
// argument.
func (s *Series[C]) SetLinArgs(lin []int) error {
	if len(lin) != len(s.args.Trig) {
		return fmt.Errorf("linear arguments: got %d values for %d trig arguments", len(lin), len(s.args.Trig))
	}
	s.linArgs = append(s.linArgs[:0], lin...)
	return nil
}

func (s *Series[C]) linZero() bool {
	for _, v := range s.linArgs {
		if v != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of terms.
func (s *Series[C]) Len() int { return s.terms.Len() }

// Empty reports whether the series has no terms.
func (s *Series[C]) Empty() bool { return s.terms.Empty() }

// Terms returns the terms in key order.
func (s *Series[C]) Terms() []term.Term[C] { return s.terms.Terms() }

// Find returns the term stored under the key of t, if any.
func (s *Series[C]) Find(t term.Term[C]) (term.Term[C], bool) {
	n := s.terms.Find(t.Key)
	if n == nil {
		return term.Term[C]{}, false
	}
	return n.Term(), true
}

// Clone returns an independent copy sharing the environment.
func (s *Series[C]) Clone() *Series[C] {
	return &Series[C]{
		env:     s.env,
		args:    s.args.Clone(),
		linArgs: s.LinArgs(),
		terms:   s.terms.Clone(),
	}
}

// swap exchanges the contents of s and o.
func (s *Series[C]) swap(o *Series[C]) {
	s.args, o.args = o.args, s.args
	s.linArgs, o.linArgs = o.linArgs, s.linArgs
	s.terms, o.terms = o.terms, s.terms
}

func (s *Series[C]) scope() container.Scope {
	return container.Scope{Args: s.args, Zero: s.env.Settings.NumericalZero}
}

func (s *Series[C]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "series cf=%s trig=%s lin=%v len=%d\n", s.args.Cf, s.args.Trig, s.linArgs, s.Len())
	s.terms.Ascend(func(n *container.Node[C]) bool {
		b.WriteString(n.Term().String())
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
