package series

import (
	"errors"

	"github.com/agbru/pseries/internal/container"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

// ErrLinearArguments is returned by operations that only act on the periodic
// part of a series when the operand carries non-zero linear arguments.
var ErrLinearArguments = errors.New("non-zero linear arguments")

// Add adds o to s in place, merging arguments first.
func (s *Series[C]) Add(o *Series[C]) error {
	return s.addSigned(o, container.Add, "add")
}

// Sub subtracts o from s in place, merging arguments first.
func (s *Series[C]) Sub(o *Series[C]) error {
	return s.addSigned(o, container.Sub, "sub")
}

func (s *Series[C]) addSigned(o *Series[C], sign container.Sign, op string) error {
	a, b, err := merged(s, o)
	if err != nil {
		return apperrors.OperationError{Op: op, Cause: err}
	}
	if a == s {
		a = s.Clone()
	}
	for j, v := range b.linArgs {
		a.linArgs[j] += int(sign) * v
	}
	for _, t := range b.terms.Terms() {
		a.insert(t, sign)
	}
	s.swap(a)
	return nil
}

// rebuilt returns a series with the same arguments whose terms are f applied
// to each term of s, inserted through the public path.
func (s *Series[C]) rebuilt(f func(term.Term[C]) term.Term[C]) *Series[C] {
	out := New(s.env, s.args)
	out.linArgs = s.LinArgs()
	for _, t := range s.terms.Terms() {
		out.insert(f(t), container.Add)
	}
	return out
}

// MulScalar multiplies every coefficient by x. Only the periodic part can be
// scaled by a real number: non-zero linear arguments are an error.
func (s *Series[C]) MulScalar(x float64) error {
	if s.Empty() {
		return nil
	}
	if !s.linZero() {
		return apperrors.OperationError{Op: "multiply by scalar", Cause: ErrLinearArguments}
	}
	s.swap(s.rebuilt(func(t term.Term[C]) term.Term[C] {
		return term.New(t.Cf.Scale(x), t.Key)
	}))
	return nil
}

// MulInt multiplies the series by n, linear arguments included.
func (s *Series[C]) MulInt(n int) {
	lin := s.LinArgs()
	out := s.rebuilt(func(t term.Term[C]) term.Term[C] {
		return term.New(t.Cf.Scale(float64(n)), t.Key)
	})
	for j := range lin {
		lin[j] *= n
	}
	out.linArgs = lin
	s.swap(out)
}

// MulCf multiplies every coefficient by c.
func (s *Series[C]) MulCf(c C) error {
	if s.Empty() {
		return nil
	}
	if !s.linZero() {
		return apperrors.OperationError{Op: "multiply by coefficient", Cause: ErrLinearArguments}
	}
	s.swap(s.rebuilt(func(t term.Term[C]) term.Term[C] {
		return term.New(t.Cf.Mul(c), t.Key)
	}))
	return nil
}

// DivScalar divides every coefficient by x. Dividing by zero is logged and
// leaves the series unchanged.
func (s *Series[C]) DivScalar(x float64) error {
	if x == 0 {
		s.env.Logger.Error("division by zero, series unchanged", nil, logging.Int("terms", s.Len()))
		return nil
	}
	if s.Empty() {
		return nil
	}
	if !s.linZero() {
		return apperrors.OperationError{Op: "divide by scalar", Cause: ErrLinearArguments}
	}
	s.swap(s.rebuilt(func(t term.Term[C]) term.Term[C] {
		return term.New(t.Cf.Div(x), t.Key)
	}))
	return nil
}

// AddScalar adds the constant c, stored as c·cos(0).
func (s *Series[C]) AddScalar(c C) error {
	return s.Insert(term.New(c, s.zeroKey()))
}

// Neg negates every coefficient and linear argument.
func (s *Series[C]) Neg() {
	for _, n := range s.terms.Nodes() {
		s.terms.Update(n, n.Cf().Neg())
	}
	for j := range s.linArgs {
		s.linArgs[j] = -s.linArgs[j]
	}
}

func (s *Series[C]) zeroKey() trigkey.Key {
	return trigkey.Cos(make([]int16, len(s.args.Trig))...)
}
