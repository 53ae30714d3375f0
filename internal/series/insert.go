package series

import (
	"github.com/agbru/pseries/internal/container"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

// Insert adds t to the series. See InsertSigned.
func (s *Series[C]) Insert(t term.Term[C]) error {
	return s.InsertSigned(t, container.Add)
}

// InsertSigned is the public insertion path. The term is padded to the
// series' argument widths and given a canonical key before being merged into
// the container with the requested sign. A term wider than the series'
// arguments is rejected with a capacity error and nothing is stored.
// Insertion is O(log n) in the sorted view and takes no position hint.
func (s *Series[C]) InsertSigned(t term.Term[C], sign container.Sign) error {
	if !t.IsInsertable(s.args) {
		return apperrors.OperationError{Op: "insert", Cause: apperrors.CapacityError{
			Resource:  "term width",
			Requested: max(t.Key.Width(), t.Cf.Width()),
			Limit:     len(s.args.Trig),
		}}
	}
	s.insert(t, sign)
	return nil
}

// insert runs the normalization steps and merges t. Callers guarantee t is
// insertable.
func (s *Series[C]) insert(t term.Term[C], sign container.Sign) {
	if t.NeedsPadding(s.args) {
		t = t.PadRight(s.args)
	}
	if c, ok := t.Canonical(); ok {
		t = c
	}
	_, outcome := s.terms.Insert(t, sign, s.scope())
	s.env.Metrics.InsertOutcome(outcome.String())
}

// AddTerm is a convenience wrapper that builds the term from its parts.
func (s *Series[C]) AddTerm(cf C, key trigkey.Key) error {
	return s.Insert(term.New(cf, key))
}
