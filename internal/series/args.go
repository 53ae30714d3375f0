package series

import (
	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/container"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/symbol"
)

var kinds = [...]symbol.Kind{symbol.Cf, symbol.Trig}

// widthLimit is the largest width a vector of kind k may reach. Coefficient
// polynomials and keys share the configured limit.
func widthLimit(_ symbol.Kind, maxWidth int) int {
	return maxWidth
}

// mergeArgSets returns the union of a and b. Compatible vectors keep the
// longer of the two; otherwise b's symbols come first, followed by the
// symbols of a that b lacks.
func mergeArgSets(a, b symbol.ArgSet, maxWidth int) (symbol.ArgSet, error) {
	var out symbol.ArgSet
	for _, k := range kinds {
		va, vb := a.Get(k), b.Get(k)
		var merged symbol.Vector
		switch {
		case va.Compatible(vb) && len(va) >= len(vb):
			merged = va.Clone()
		case va.Compatible(vb):
			merged = vb.Clone()
		default:
			merged = symbol.GetLayout(va, vb).Merge(va, vb)
		}
		if limit := widthLimit(k, maxWidth); len(merged) > limit {
			return symbol.ArgSet{}, apperrors.CapacityError{Resource: k.String(), Requested: len(merged), Limit: limit}
		}
		out = out.With(k, merged)
	}
	return out, nil
}

// conformed returns s expressed over args, which must contain every symbol of
// s. When only padding is needed the terms are copied as they are; otherwise
// every term is rewritten through the layouts and inserted again so that the
// canonical sign is restored.
func (s *Series[C]) conformed(args symbol.ArgSet) *Series[C] {
	cfL := symbol.GetLayout(s.args.Cf, args.Cf)
	trigL := symbol.GetLayout(s.args.Trig, args.Trig)
	out := New(s.env, args)
	out.linArgs = symbol.Apply(trigL, s.linArgs)
	if cfL.IsIdentity(len(s.args.Cf)) && trigL.IsIdentity(len(s.args.Trig)) {
		for _, t := range s.terms.Terms() {
			out.insert(t, container.Add)
		}
		return out
	}
	for _, t := range s.terms.Terms() {
		out.insert(t.ApplyLayout(cfL, trigL), container.Add)
	}
	return out
}

// MergeArgs widens s so that its arguments contain those of o. The series is
// unchanged when the merged width would exceed the configured maximum.
func (s *Series[C]) MergeArgs(o symbol.ArgSet) error {
	merged, err := mergeArgSets(s.args, o, s.env.Settings.MaxWidth)
	if err != nil {
		return apperrors.OperationError{Op: "merge arguments", Cause: err}
	}
	if merged.Compatible(s.args) && len(merged.Cf) == len(s.args.Cf) && len(merged.Trig) == len(s.args.Trig) {
		return nil
	}
	c := s.conformed(merged)
	s.swap(c)
	return nil
}

// merged returns copies of a and b over a common argument set. Operands that
// already use it are returned as they are.
func merged[C coefficient.Coefficient[C]](a, b *Series[C]) (*Series[C], *Series[C], error) {
	args, err := mergeArgSets(a.args, b.args, a.env.Settings.MaxWidth)
	if err != nil {
		return nil, nil, err
	}
	return a.over(args), b.over(args), nil
}

func (s *Series[C]) over(args symbol.ArgSet) *Series[C] {
	if len(args.Cf) == len(s.args.Cf) && len(args.Trig) == len(s.args.Trig) && args.Compatible(s.args) {
		return s
	}
	return s.conformed(args)
}

// AppendArgument adds sym at the end of the vector of kind k and pads every
// term with a zero multiplier. A symbol already present is left where it is.
// When the vector is full the series is unchanged and the capacity error is
// logged.
func (s *Series[C]) AppendArgument(k symbol.Kind, sym *symbol.Symbol) {
	v := s.args.Get(k)
	if v.Index(sym.Name()) >= 0 {
		return
	}
	if limit := widthLimit(k, s.env.Settings.MaxWidth); len(v)+1 > limit {
		s.logCapacity("append argument", k, sym, apperrors.CapacityError{Resource: k.String(), Requested: len(v) + 1, Limit: limit})
		return
	}
	s.swap(s.conformed(s.args.With(k, append(v.Clone(), sym))))
}

// PrependArgument adds sym in front of the vector of kind k, shifting every
// multiplier one position to the right. Capacity errors are handled as in
// AppendArgument.
func (s *Series[C]) PrependArgument(k symbol.Kind, sym *symbol.Symbol) {
	v := s.args.Get(k)
	if v.Index(sym.Name()) >= 0 {
		return
	}
	if limit := widthLimit(k, s.env.Settings.MaxWidth); len(v)+1 > limit {
		s.logCapacity("prepend argument", k, sym, apperrors.CapacityError{Resource: k.String(), Requested: len(v) + 1, Limit: limit})
		return
	}
	args := s.args.With(k, append(symbol.Vector{sym}, v...))
	shift := symbol.Prepend(1, len(v))
	cfL, trigL := identity(len(s.args.Cf)), identity(len(s.args.Trig))
	if k == symbol.Cf {
		cfL = shift
	} else {
		trigL = shift
	}
	out := New(s.env, args)
	out.linArgs = symbol.Apply(trigL, s.linArgs)
	for _, t := range s.terms.Terms() {
		out.insert(t.ApplyLayout(cfL, trigL), container.Add)
	}
	s.swap(out)
}

func identity(n int) symbol.Layout { return symbol.Prepend(0, n) }

func (s *Series[C]) logCapacity(op string, k symbol.Kind, sym *symbol.Symbol, err error) {
	s.env.Logger.Error(op+" failed, series unchanged", err,
		logging.String("kind", k.String()),
		logging.String("symbol", sym.Name()))
}
