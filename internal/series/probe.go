package series

import (
	"fmt"
	"unsafe"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/container"
)

// Norm returns the sum of the term norms.
func (s *Series[C]) Norm() float64 {
	var n float64
	s.terms.Ascend(func(nd *container.Node[C]) bool {
		n += nd.Term().Norm(s.args)
		return true
	})
	return n
}

// Distance returns the norm of a−b.
func Distance[C coefficient.Coefficient[C]](a, b *Series[C]) (float64, error) {
	d := a.Clone()
	if err := d.Sub(b); err != nil {
		return 0, err
	}
	return d.Norm(), nil
}

// IsCf reports whether the series is a single cos(0) term, i.e. a pure
// coefficient.
func (s *Series[C]) IsCf() bool {
	if s.Len() != 1 {
		return false
	}
	k := s.terms.Terms()[0].Key
	return k.IsCos() && k.IsZero()
}

// Footprint approximates the memory held by the series in bytes.
func (s *Series[C]) Footprint() uint64 {
	var node container.Node[C]
	perTerm := uint64(unsafe.Sizeof(node)) + uint64(len(s.args.Trig))*uint64(unsafe.Sizeof(int16(0)))
	header := uint64(unsafe.Sizeof(*s)) +
		uint64(len(s.args.Cf)+len(s.args.Trig))*uint64(unsafe.Sizeof(uintptr(0))) +
		uint64(len(s.linArgs))*uint64(unsafe.Sizeof(int(0)))
	return header + uint64(s.Len())*perTerm
}

// Checkup verifies the structural invariants: both container views agree,
// every term has the series' widths and a canonical key, and no ignorable
// term is stored.
func (s *Series[C]) Checkup() error {
	if err := s.terms.Verify(); err != nil {
		return err
	}
	if len(s.linArgs) != len(s.args.Trig) {
		return fmt.Errorf("series: %d linear arguments for %d trig arguments", len(s.linArgs), len(s.args.Trig))
	}
	var err error
	s.terms.Ascend(func(n *container.Node[C]) bool {
		t := n.Term()
		switch {
		case t.Key.Width() != len(s.args.Trig) || t.Cf.NeedsPadding(len(s.args.Cf)) || !t.Cf.IsInsertable(len(s.args.Cf)):
			err = fmt.Errorf("series: term %s does not match the argument widths", t)
		case t.Key.Sign() < 0:
			err = fmt.Errorf("series: term %s has a non-canonical key", t)
		case t.IsIgnorable(s.args, s.env.Settings.NumericalZero):
			err = fmt.Errorf("series: ignorable term %s is stored", t)
		}
		return err == nil
	})
	return err
}
