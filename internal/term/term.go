// Package term pairs a coefficient with a trigonometric key. A term's identity
// is its key: two terms with equal keys occupy the same slot of a container
// whatever their coefficients.
package term

import (
	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/trigkey"
)

// Term is C·trig(Σ e_i·arg_i).
type Term[C coefficient.Coefficient[C]] struct {
	Cf  C
	Key trigkey.Key
}

// New returns the term cf·key.
func New[C coefficient.Coefficient[C]](cf C, key trigkey.Key) Term[C] {
	return Term[C]{Cf: cf, Key: key}
}

// IsIgnorable reports whether the term contributes nothing: a sin(0) key or
// a coefficient below the numerical zero.
func (t Term[C]) IsIgnorable(args symbol.ArgSet, zero float64) bool {
	return t.Key.IsIgnorable() || t.Cf.IsIgnorable(args.Cf, zero)
}

// IsInsertable reports whether both parts fit the argument widths.
func (t Term[C]) IsInsertable(args symbol.ArgSet) bool {
	return t.Cf.IsInsertable(len(args.Cf)) && t.Key.Width() <= len(args.Trig)
}

// NeedsPadding reports whether either part is narrower than its arguments.
func (t Term[C]) NeedsPadding(args symbol.ArgSet) bool {
	return t.Cf.NeedsPadding(len(args.Cf)) || t.Key.Width() < len(args.Trig)
}

// PadRight widens both parts to the argument widths. Parts that already have
// the right width are shared, not copied.
func (t Term[C]) PadRight(args symbol.ArgSet) Term[C] {
	out := t
	if t.Cf.NeedsPadding(len(args.Cf)) {
		out.Cf = t.Cf.PadRight(len(args.Cf))
	}
	if t.Key.Width() < len(args.Trig) {
		out.Key = t.Key.PadRight(len(args.Trig))
	}
	return out
}

// Canonical returns the term with a non-negative leading multiplier. Because
// sin(-x) = -sin(x), inverting a sine key negates the coefficient; cosine is
// even and keeps it. The boolean reports whether a change occurred.
func (t Term[C]) Canonical() (Term[C], bool) {
	key, inverted := t.Key.Canonical()
	if !inverted {
		return t, false
	}
	cf := t.Cf
	if !key.IsCos() {
		cf = cf.Neg()
	}
	return Term[C]{Cf: cf, Key: key}, true
}

// ApplyLayout rewrites both parts after an argument merge.
func (t Term[C]) ApplyLayout(cf, trig symbol.Layout) Term[C] {
	return Term[C]{Cf: t.Cf.ApplyLayout(cf), Key: t.Key.ApplyLayout(trig)}
}

// Norm is the coefficient norm; trigonometric factors have unit norm.
func (t Term[C]) Norm(args symbol.ArgSet) float64 {
	return t.Cf.Norm(args.Cf)
}

// Eval evaluates the term at time t.
func (t Term[C]) Eval(tm float64, args symbol.ArgSet) float64 {
	return t.Cf.Eval(tm, args.Cf) * t.Key.Eval(tm, args.Trig)
}

// EvalCached evaluates the term using the exponential cache built for the
// cache's time.
func (t Term[C]) EvalCached(args symbol.ArgSet, c *trigkey.ExpCache) float64 {
	return t.Cf.Eval(c.Time(), args.Cf) * t.Key.EvalCached(c)
}

func (t Term[C]) String() string {
	return t.Cf.String() + "*" + t.Key.String()
}
