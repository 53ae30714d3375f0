package series

import (
	"math"

	"github.com/agbru/pseries/internal/container"
	"github.com/agbru/pseries/internal/term"
)

// PhaseOp selects how a phase list entry is applied to a term.
type PhaseOp int

const (
	// PhaseAdd shifts the term's argument by the entry.
	PhaseAdd PhaseOp = iota
	// PhaseAssign shifts the argument so that its phase becomes the entry.
	PhaseAssign
)

// PhaseList holds one phase per term, consumed in key order.
type PhaseList struct {
	Phases []float64
	Op     PhaseOp
}

// InsertPhases applies the i-th phase φ to the i-th term in key order using
//
//	C·cos(α+φ) = C·cos φ·cos α − C·sin φ·sin α
//	C·sin(α+φ) = C·cos φ·sin α + C·sin φ·cos α
//
// With PhaseAssign the shift is φ minus the term's own phase. Terms beyond the
// end of the list are kept as they are and surplus phases are ignored.
func (s *Series[C]) InsertPhases(pl PhaseList) {
	out := New(s.env, s.args)
	out.linArgs = s.LinArgs()
	for i, t := range s.terms.Terms() {
		if i >= len(pl.Phases) {
			out.insert(t, container.Add)
			continue
		}
		phi := pl.Phases[i]
		if pl.Op == PhaseAssign {
			phi -= t.Key.Phase(s.args.Trig)
		}
		sinPhi, cosPhi := math.Sincos(phi)
		out.insert(term.New(t.Cf.Scale(cosPhi), t.Key), container.Add)
		flipped := t.Key.WithFlavour(!t.Key.IsCos())
		if t.Key.IsCos() {
			out.insert(term.New(t.Cf.Scale(-sinPhi), flipped), container.Add)
		} else {
			out.insert(term.New(t.Cf.Scale(sinPhi), flipped), container.Add)
		}
	}
	s.swap(out)
}
