package series

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/pseries/internal/buffer"
	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/logging"
	"github.com/agbru/pseries/internal/metrics"
)

// Settings are the numerical knobs of series arithmetic. Series read them,
// never write them.
type Settings struct {
	// NumericalZero is the magnitude under which coefficients are ignorable.
	NumericalZero float64
	// Truncation is the relative precision of multiplication: pairs whose
	// joint norm falls below norm1·norm2·Truncation/(2·len1·len2) are skipped.
	Truncation float64
	// MinLoadFactor is the minimum ratio len1·len2/cardinality for the dense
	// strategy to be chosen over the hashed one.
	MinLoadFactor float64
	// DenseBudget caps the scratch memory of the dense strategy, in bytes.
	DenseBudget uint64
	// MaxWidth caps each argument vector.
	MaxWidth int
	// ParallelGrain is the minimum number of samples per evaluation chunk.
	ParallelGrain int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		NumericalZero: 1e-80,
		Truncation:    1e-6,
		MinLoadFactor: 1.0,
		DenseBudget:   200 << 20,
		MaxWidth:      64,
		ParallelGrain: 256,
	}
}

// Env carries what every series of one computation shares: settings, the
// diagnostics logger, the metrics recorder, the tracer and the dense scratch
// pool. Series combined by arithmetic must share the same Env.
type Env[C coefficient.Coefficient[C]] struct {
	Settings Settings
	Logger   logging.Logger
	Metrics  *metrics.Recorder
	Pool     *buffer.Pool[C]
	tracer   trace.Tracer
}

// Option customizes an Env.
type Option[C coefficient.Coefficient[C]] func(*Env[C])

// WithLogger sets the diagnostics logger.
func WithLogger[C coefficient.Coefficient[C]](l logging.Logger) Option[C] {
	return func(e *Env[C]) { e.Logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics[C coefficient.Coefficient[C]](r *metrics.Recorder) Option[C] {
	return func(e *Env[C]) { e.Metrics = r }
}

// WithPool shares an existing scratch pool.
func WithPool[C coefficient.Coefficient[C]](p *buffer.Pool[C]) Option[C] {
	return func(e *Env[C]) { e.Pool = p }
}

// NewEnv returns an environment with the given settings. Without options it
// logs nowhere and records no metrics.
func NewEnv[C coefficient.Coefficient[C]](s Settings, opts ...Option[C]) *Env[C] {
	e := &Env[C]{
		Settings: s,
		Logger:   logging.NewNopLogger(),
		tracer:   otel.Tracer("github.com/agbru/pseries/internal/series"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Pool == nil {
		e.Pool = buffer.New[C](s.DenseBudget)
	}
	return e
}
