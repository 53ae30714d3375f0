package metrics

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Recorder counts container and multiplication events on a private
// Prometheus registry. A nil *Recorder is valid and records nothing, so
// library code can call it unconditionally.
type Recorder struct {
	registry        *prometheus.Registry
	insertOutcomes  *prometheus.CounterVec
	multiplications *prometheus.CounterVec
	pairs           *prometheus.CounterVec
	denseFallbacks  prometheus.Counter
	productTerms    prometheus.Gauge
	handler         http.Handler
}

// NewRecorder creates a recorder with its own registry, including the Go
// runtime collector.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		insertOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pseries_insert_outcomes_total",
			Help: "Term insertions by outcome (inserted, updated, erased, skipped).",
		}, []string{"outcome"}),
		multiplications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pseries_multiplications_total",
			Help: "Series multiplications by strategy.",
		}, []string{"strategy"}),
		pairs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pseries_multiplication_pairs_total",
			Help: "Term pairs visited by multiplication, kept or truncated.",
		}, []string{"result"}),
		denseFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "pseries_dense_fallbacks_total",
			Help: "Dense multiplications downgraded because scratch memory was over budget.",
		}),
		productTerms: f.NewGauge(prometheus.GaugeOpts{
			Name: "pseries_last_product_terms",
			Help: "Number of terms in the last multiplication result.",
		}),
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
}

// InsertOutcome counts one insertion with the given outcome label.
func (r *Recorder) InsertOutcome(outcome string) {
	if r == nil {
		return
	}
	r.insertOutcomes.WithLabelValues(outcome).Inc()
}

// Multiplication counts a multiplication run with strategy.
func (r *Recorder) Multiplication(strategy string) {
	if r == nil {
		return
	}
	r.multiplications.WithLabelValues(strategy).Inc()
}

// Pairs adds visited term pairs.
func (r *Recorder) Pairs(kept, truncated int) {
	if r == nil {
		return
	}
	r.pairs.WithLabelValues("kept").Add(float64(kept))
	r.pairs.WithLabelValues("truncated").Add(float64(truncated))
}

// DenseFallback counts a dense multiplication downgraded to hashed.
func (r *Recorder) DenseFallback() {
	if r == nil {
		return
	}
	r.denseFallbacks.Inc()
}

// ProductTerms records the length of the last product.
func (r *Recorder) ProductTerms(n int) {
	if r == nil {
		return
	}
	r.productTerms.Set(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler { return r.handler }

// WritePrometheus writes the current metrics to w.
func (r *Recorder) WritePrometheus(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Sample is one pseries_* series value flattened for reporting.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers every pseries_* metric, sorted by name and labels. Go
// runtime metrics are left out.
func (r *Recorder) Snapshot() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, "pseries_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			out = append(out, Sample{Name: name, Labels: labelString(m.GetLabel()), Value: metricValue(mf.GetType(), m)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.GetName() + "=" + p.GetValue()
	}
	return strings.Join(parts, ",")
}

func metricValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return 0
	}
}
