package series

import (
	"math"
	"slices"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/container"
	"github.com/agbru/pseries/internal/logging"
)

type normNode[C coefficient.Coefficient[C]] struct {
	node *container.Node[C]
	norm float64
}

// byNorm returns the stored nodes by decreasing norm. Ties keep key order.
func (s *Series[C]) byNorm() []normNode[C] {
	nodes := s.terms.Nodes()
	out := make([]normNode[C], len(nodes))
	for i, n := range nodes {
		out[i] = normNode[C]{node: n, norm: n.Term().Norm(s.args)}
	}
	slices.SortStableFunc(out, func(a, b normNode[C]) int {
		switch {
		case a.norm > b.norm:
			return -1
		case a.norm < b.norm:
			return 1
		}
		return 0
	})
	return out
}

// Crop erases every term whose norm is below delta.
func (s *Series[C]) Crop(delta float64) {
	ordered := s.byNorm()
	for i := len(ordered) - 1; i >= 0 && ordered[i].norm < delta; i-- {
		s.terms.Erase(ordered[i].node)
	}
}

// CumulativeCrop erases terms from the smallest norm upward for as long as the
// sum of the erased norms stays below delta.
func (s *Series[C]) CumulativeCrop(delta float64) {
	ordered := s.byNorm()
	var part float64
	for i := len(ordered) - 1; i >= 0; i-- {
		part += ordered[i].norm
		if part >= delta {
			return
		}
		s.terms.Erase(ordered[i].node)
	}
}

// CropFrom erases the terms at position i and beyond in decreasing-norm
// order. Positions outside the series are ignored.
func (s *Series[C]) CropFrom(i int) {
	ordered := s.byNorm()
	if i < 0 || i >= len(ordered) {
		return
	}
	for _, nn := range ordered[i:] {
		s.terms.Erase(nn.node)
	}
}

// Discontinuity returns the position, in decreasing-norm order, of the last
// term before the largest relative drop of norm between neighbours. It needs
// at least three terms and a strictly positive drop.
func (s *Series[C]) Discontinuity() (int, bool) {
	if s.Len() < 3 {
		return 0, false
	}
	ordered := s.byNorm()
	best, found := 0.0, -1
	for i := 0; i+1 < len(ordered); i++ {
		if ordered[i].norm == 0 {
			continue
		}
		rel := (ordered[i].norm - ordered[i+1].norm) / ordered[i].norm
		if rel > best {
			s.env.Logger.Debug("discontinuity candidate", logging.Int("index", i), logging.Float64("relative_drop", rel))
			best, found = rel, i
		}
	}
	return found, found >= 0
}

// SDPCutoff returns the first position, in decreasing-norm order, of a term
// whose norm scaled by the desired spectral precision falls below the single
// term error achievedTDP/len. It returns Len when no term qualifies.
func (s *Series[C]) SDPCutoff(achievedTDP, desiredSDP float64) int {
	if s.Empty() {
		return 0
	}
	sdp, tdp := math.Abs(desiredSDP), math.Abs(achievedTDP)
	ste := tdp / float64(s.Len())
	s.env.Logger.Debug("single term error", logging.Float64("ste", ste))
	ordered := s.byNorm()
	for i, nn := range ordered {
		if nn.norm*sdp < ste {
			return i
		}
	}
	return len(ordered)
}

// SpectralCutoff crops the terms from SDPCutoff onward.
func (s *Series[C]) SpectralCutoff(achievedTDP, desiredSDP float64) {
	s.CropFrom(s.SDPCutoff(achievedTDP, desiredSDP))
}
