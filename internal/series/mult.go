package series

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/pseries/internal/coefficient"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/glr"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/trigkey"
)

// Strategy selects how term products are accumulated.
type Strategy int

const (
	// Auto picks Dense, Hashed or Plain from the coder and the load factor.
	Auto Strategy = iota
	// Dense accumulates into flat slot arrays indexed by code.
	Dense
	// Hashed accumulates into maps keyed by code.
	Hashed
	// Plain convolves keys directly, without coding.
	Plain
)

// Strategies lists the concrete strategies.
var Strategies = []Strategy{Dense, Hashed, Plain}

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Dense:
		return "dense"
	case Hashed:
		return "hashed"
	case Plain:
		return "plain"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range []Strategy{Auto, Dense, Hashed, Plain} {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return Auto, fmt.Errorf("unknown multiplication strategy %q", name)
}

// Report describes one multiplication.
type Report struct {
	// Requested is the strategy asked for, Used the one that ran.
	Requested, Used Strategy
	// Scalar is set when one operand was a pure coefficient and the product
	// reduced to a coefficient multiplication.
	Scalar bool
	// Fallback is set when the dense scratch space did not fit the budget.
	Fallback bool
	// Kept and Truncated count the term pairs computed and skipped.
	Kept, Truncated int
	// Cardinality is the size of the coded range, 0 without coding.
	Cardinality int64
	// Terms is the length of the product.
	Terms int
}

// Mul replaces s with s·o using the automatic strategy.
func (s *Series[C]) Mul(o *Series[C]) error {
	p, _, err := MultiplyWith(context.Background(), s, o, Auto)
	if err != nil {
		return err
	}
	s.swap(p)
	return nil
}

// Multiply returns a·b using the automatic strategy.
func Multiply[C coefficient.Coefficient[C]](a, b *Series[C]) (*Series[C], error) {
	p, _, err := MultiplyWith(context.Background(), a, b, Auto)
	return p, err
}

// operand is a term of a multiplication operand, with its norm and, for the
// coded strategies, its code.
type operand[C coefficient.Coefficient[C]] struct {
	cf   C
	key  trigkey.Key
	norm float64
	code int64
}

// multiplication holds the state shared by the strategies.
type multiplication[C coefficient.Coefficient[C]] struct {
	ctx    context.Context
	env    *Env[C]
	x, y   []operand[C]
	thr    float64
	coder  *glr.Coder
	out    *Series[C]
	report *Report
	// progress, when set, receives the fraction of rows done.
	progress ProgressFunc
}

// ProgressFunc receives the completed fraction of a multiplication, in [0, 1].
type ProgressFunc func(done float64)

// MultiplyWith returns a·b computed with the given strategy. Neither operand
// is modified. Both must have zero linear arguments. Pairs of terms whose
// joint norm is below Truncation·|a|·|b|/(2·len(a)·len(b)) are skipped.
//
// A coded strategy requested for operands whose code range does not fit an
// int64 runs as Plain. When the dense scratch space does not fit the buffer
// budget the product is computed with Hashed and Report.Fallback is set.
func MultiplyWith[C coefficient.Coefficient[C]](ctx context.Context, a, b *Series[C], strategy Strategy) (*Series[C], Report, error) {
	return MultiplyWithProgress(ctx, a, b, strategy, nil)
}

// MultiplyWithProgress is MultiplyWith reporting the fraction of operand rows
// processed to progress, which may be nil. It is called from the calling
// goroutine.
func MultiplyWithProgress[C coefficient.Coefficient[C]](ctx context.Context, a, b *Series[C], strategy Strategy, progress ProgressFunc) (*Series[C], Report, error) {
	env := a.env
	ctx, span := env.tracer.Start(ctx, "series.Multiply", trace.WithAttributes(
		attribute.Int("series.len1", a.Len()),
		attribute.Int("series.len2", b.Len()),
		attribute.String("series.strategy", strategy.String()),
	))
	defer span.End()

	report := Report{Requested: strategy, Used: strategy}
	p, err := multiply(ctx, a, b, &report, progress)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, report, err
	}
	report.Terms = p.Len()
	if progress != nil {
		progress(1)
	}
	span.SetAttributes(
		attribute.String("series.strategy_used", report.Used.String()),
		attribute.Int("series.product_terms", report.Terms),
		attribute.Bool("series.dense_fallback", report.Fallback),
	)
	env.Metrics.Multiplication(report.Used.String())
	env.Metrics.Pairs(report.Kept, report.Truncated)
	env.Metrics.ProductTerms(report.Terms)
	return p, report, nil
}

func multiply[C coefficient.Coefficient[C]](ctx context.Context, a, b *Series[C], report *Report, progress ProgressFunc) (*Series[C], error) {
	if !a.linZero() || !b.linZero() {
		return nil, apperrors.OperationError{Op: "multiply", Cause: ErrLinearArguments}
	}
	a, b, err := merged(a, b)
	if err != nil {
		return nil, apperrors.OperationError{Op: "multiply", Cause: err}
	}
	out := New(a.env, a.args)
	if a.Empty() || b.Empty() {
		return out, nil
	}

	switch {
	case a.IsCf():
		report.Scalar = true
		return scaled(b, a.terms.Terms()[0].Cf)
	case b.IsCf():
		report.Scalar = true
		return scaled(a, b.terms.Terms()[0].Cf)
	}

	m := &multiplication[C]{ctx: ctx, env: a.env, out: out, report: report, progress: progress}
	var n1, n2 float64
	m.x, n1 = snapshot(a)
	m.y, n2 = snapshot(b)
	m.thr = n1 * n2 * a.env.Settings.Truncation / (2 * float64(len(m.x)) * float64(len(m.y)))

	l1, l2 := limits(m.x, len(a.args.Trig)), limits(m.y, len(a.args.Trig))
	// The coder ranges may leave the exponent range. Only a kept pair whose
	// product key overflows fails the multiplication.
	m.coder = glr.New(l1, l2)

	report.Used = m.choose(report.Requested)
	if report.Used != Plain {
		report.Cardinality = m.coder.Cardinality()
		m.encode()
	}
	switch report.Used {
	case Dense:
		err = m.dense()
		var memErr apperrors.MemoryError
		if errors.As(err, &memErr) {
			m.env.Logger.Info("dense scratch space over budget, using hashed accumulation",
				logging.Uint64("requested_bytes", memErr.Requested),
				logging.Uint64("budget_bytes", memErr.Limit))
			m.env.Metrics.DenseFallback()
			report.Used, report.Fallback = Hashed, true
			report.Kept, report.Truncated = 0, 0
			err = m.hashed()
		}
	case Hashed:
		err = m.hashed()
	default:
		err = m.plain()
	}
	if err != nil {
		return nil, apperrors.OperationError{Op: "multiply", Cause: err}
	}
	return out, nil
}

// choose resolves the requested strategy against the coder.
func (m *multiplication[C]) choose(requested Strategy) Strategy {
	if !m.coder.Viable() {
		if requested == Dense || requested == Hashed {
			m.env.Logger.Debug("code range does not fit int64, using plain multiplication",
				logging.String("requested", requested.String()))
		}
		return Plain
	}
	if requested != Auto {
		return requested
	}
	card := m.coder.Cardinality()
	load := float64(len(m.x)) * float64(len(m.y)) / float64(card)
	if card <= math.MaxInt64/2 && m.env.Pool.Fits(2*card) && load >= m.env.Settings.MinLoadFactor {
		return Dense
	}
	return Hashed
}

func (m *multiplication[C]) encode() {
	for i := range m.x {
		m.x[i].code = m.coder.Encode(m.x[i].key)
	}
	for i := range m.y {
		m.y[i].code = m.coder.Encode(m.y[i].key)
	}
}

// snapshot returns the terms of s by decreasing norm, and their total norm.
func snapshot[C coefficient.Coefficient[C]](s *Series[C]) ([]operand[C], float64) {
	ops := make([]operand[C], 0, s.Len())
	var total float64
	for _, t := range s.terms.Terms() {
		n := t.Norm(s.args)
		total += n
		ops = append(ops, operand[C]{cf: t.Cf, key: t.Key, norm: n})
	}
	slices.SortStableFunc(ops, func(p, q operand[C]) int {
		switch {
		case p.norm > q.norm:
			return -1
		case p.norm < q.norm:
			return 1
		}
		return 0
	})
	return ops, total
}

func limits[C coefficient.Coefficient[C]](ops []operand[C], width int) glr.Limits {
	l := glr.NewLimits(width)
	for i := range ops {
		l.Observe(ops[i].key)
	}
	return l
}

func scaled[C coefficient.Coefficient[C]](s *Series[C], c C) (*Series[C], error) {
	out := s.Clone()
	if err := out.MulCf(c); err != nil {
		return nil, err
	}
	return out, nil
}

// werner gives, for the flavours of two factors, the flavour of both product
// terms and which of them is subtracted:
//
//	cos a·cos b = ½cos(a−b) + ½cos(a+b)
//	sin a·sin b = ½cos(a−b) − ½cos(a+b)
//	cos a·sin b = −½sin(a−b) + ½sin(a+b)
//	sin a·cos b = ½sin(a−b) + ½sin(a+b)
type werner struct {
	cos     bool
	negDiff bool
	negSum  bool
}

func wernerFor(cos1, cos2 bool) werner {
	switch {
	case cos1 && cos2:
		return werner{cos: true}
	case !cos1 && !cos2:
		return werner{cos: true, negSum: true}
	case cos1:
		return werner{negDiff: true}
	default:
		return werner{}
	}
}

// pairs calls fn for every pair of operand terms above the threshold with
// the halved product coefficient, stopping at the first error. Both operands
// are sorted by decreasing norm, so once a pair is below the threshold every
// later pair of the row is too, and once a row's first pair is, every later
// row is.
func (m *multiplication[C]) pairs(fn func(p, q *operand[C], w werner, cf C) error) error {
	kept, truncated := 0, 0
	defer func() {
		m.report.Kept += kept
		m.report.Truncated += truncated
	}()
	step := max(len(m.x)/100, 1)
	for i := range m.x {
		if err := m.ctx.Err(); err != nil {
			return err
		}
		if m.progress != nil && i%step == 0 {
			m.progress(float64(i) / float64(len(m.x)))
		}
		p := &m.x[i]
		if p.norm*m.y[0].norm/2 < m.thr {
			truncated += (len(m.x) - i) * len(m.y)
			break
		}
		for j := range m.y {
			q := &m.y[j]
			if p.norm*q.norm/2 < m.thr {
				truncated += len(m.y) - j
				break
			}
			if err := fn(p, q, wernerFor(p.key.IsCos(), q.key.IsCos()), p.cf.Mul(q.cf).Scale(0.5)); err != nil {
				return err
			}
			kept++
		}
	}
	return nil
}
