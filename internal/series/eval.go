package series

import (
	"context"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/parallel"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

// Eval evaluates the series at time t. Terms are summed from the smallest
// norm up, then the linear part Σ lin_j·x_j(t) is added.
func (s *Series[C]) Eval(t float64) float64 {
	return s.evalTerms(s.ascending(), t)
}

// ascending returns the terms by increasing norm.
func (s *Series[C]) ascending() []term.Term[C] {
	ordered := s.byNorm()
	out := make([]term.Term[C], len(ordered))
	for i, nn := range ordered {
		out[len(ordered)-1-i] = nn.node.Term()
	}
	return out
}

func (s *Series[C]) evalTerms(ts []term.Term[C], t float64) float64 {
	var sum float64
	for _, tt := range ts {
		sum += tt.Eval(t, s.args)
	}
	return sum + s.linear(t)
}

// EvalCached evaluates the series at the time of c, reusing the complex
// exponentials it holds.
func (s *Series[C]) EvalCached(c *trigkey.ExpCache) float64 {
	var sum float64
	for _, t := range s.ascending() {
		sum += t.EvalCached(s.args, c)
	}
	return sum + s.linear(c.Time())
}

func (s *Series[C]) linear(t float64) float64 {
	var sum float64
	for j, n := range s.linArgs {
		if n != 0 {
			sum += float64(n) * s.args.Trig[j].Eval(t)
		}
	}
	return sum
}

// Evaluator evaluates a series at repeated times, keeping the exponential
// caches of the most recent ones. It is safe for concurrent use as long as
// the series is not modified.
type Evaluator[C coefficient.Coefficient[C]] struct {
	s      *Series[C]
	caches *lru.Cache[float64, *trigkey.ExpCache]
}

// NewEvaluator returns an evaluator for s remembering up to size times.
func NewEvaluator[C coefficient.Coefficient[C]](s *Series[C], size int) (*Evaluator[C], error) {
	caches, err := lru.New[float64, *trigkey.ExpCache](size)
	if err != nil {
		return nil, err
	}
	return &Evaluator[C]{s: s, caches: caches}, nil
}

// Eval evaluates the series at t.
func (e *Evaluator[C]) Eval(t float64) float64 {
	c, ok := e.caches.Get(t)
	if !ok {
		c = trigkey.NewExpCache(t, e.s.args.Trig)
		e.caches.Add(t, c)
	}
	return e.s.EvalCached(c)
}

// Mean returns the average of n samples taken every (t1−t0)/n from t0. With
// n = 0 it logs a diagnostic and returns 0.
func (s *Series[C]) Mean(t0, t1 float64, n int) float64 {
	if n <= 0 {
		s.env.Logger.Error("mean needs a positive sample count, returning 0", nil, logging.Int("samples", n))
		return 0
	}
	step := (t1 - t0) / float64(n)
	ts := s.ascending()
	sum, err := parallel.Sum(context.Background(), n, s.grain(), func(i int) float64 {
		return s.evalTerms(ts, t0+float64(i)*step)
	})
	if err != nil {
		return 0
	}
	return sum / float64(n)
}

func (s *Series[C]) grain() int {
	return max(s.env.Settings.ParallelGrain, 1)
}

// RangeEvaluate returns the values of the series at the n times
// t0 + i·(t1−t0)/n. Chunks of at least ParallelGrain samples are evaluated in
// parallel. A non-positive count or an empty interval is logged and yields
// nil.
func (s *Series[C]) RangeEvaluate(ctx context.Context, t0, t1 float64, n int) ([]float64, error) {
	ts := s.ascending()
	return s.sample(ctx, "series.RangeEvaluate", t0, t1, n, func(t float64) float64 {
		return s.evalTerms(ts, t)
	})
}

func (s *Series[C]) sample(ctx context.Context, name string, t0, t1 float64, n int, f func(float64) float64) ([]float64, error) {
	if n <= 0 || t0 == t1 {
		s.env.Logger.Error("range evaluation needs samples over a non-empty interval", nil,
			logging.Int("samples", n), logging.Float64("t0", t0), logging.Float64("t1", t1))
		return nil, nil
	}
	ctx, span := s.env.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int("series.samples", n),
		attribute.Int("series.terms", s.Len()),
	))
	defer span.End()

	out := make([]float64, n)
	step := (t1 - t0) / float64(n)
	err := parallel.ForEachChunk(ctx, n, s.grain(), func(ctx context.Context, r parallel.Range) error {
		for i := r.Lo; i < r.Hi; i++ {
			out[i] = f(t0 + float64(i)*step)
		}
		return ctx.Err()
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// Comparison summarizes the difference between a series and a reference
// function over a time grid.
type Comparison struct {
	Samples  int
	MaxError float64
	// Sigma is the root mean square of the errors.
	Sigma float64
}

// Compare evaluates the series and ref on the grid of RangeEvaluate and
// reports the largest absolute difference.
func (s *Series[C]) Compare(ctx context.Context, ref func(float64) float64, t0, t1 float64, n int) (Comparison, error) {
	ts := s.ascending()
	diffs, err := s.sample(ctx, "series.Compare", t0, t1, n, func(t float64) float64 {
		return s.evalTerms(ts, t) - ref(t)
	})
	if err != nil || diffs == nil {
		return Comparison{}, err
	}
	c := Comparison{Samples: len(diffs)}
	var sq float64
	for _, d := range diffs {
		d = math.Abs(d)
		c.MaxError = max(c.MaxError, d)
		sq += d * d
	}
	c.Sigma = math.Sqrt(sq / float64(len(diffs)))
	return c, nil
}
