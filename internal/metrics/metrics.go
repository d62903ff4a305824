package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation sources
const (
	SourceProject = "project"
	SourceAdHoc   = "adhoc"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Evaluations        *prometheus.CounterVec
	CatalogReloads     *prometheus.CounterVec
	ApplicableSubAreas prometheus.Histogram
	EvaluationDuration prometheus.Histogram
	CatalogRules       prometheus.Gauge
}

// New creates and registers all metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ftareview_evaluations_total",
			Help: "Total number of applicability evaluations",
		}, []string{"source"}),
		CatalogReloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ftareview_catalog_reloads_total",
			Help: "Total number of catalog reloads by result",
		}, []string{"result"}),
		ApplicableSubAreas: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ftareview_applicable_sub_areas",
			Help:    "Number of applicable sub-areas per evaluation",
			Buckets: []float64{0, 10, 25, 50, 100, 150, 200, 300},
		}),
		EvaluationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ftareview_evaluation_duration_seconds",
			Help:    "Time spent evaluating and aggregating one answer set",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		CatalogRules: f.NewGauge(prometheus.GaugeOpts{
			Name: "ftareview_catalog_rules",
			Help: "Number of rules in the current catalog snapshot",
		}),
	}
}

// ObserveEvaluation records one evaluation
func (m *Metrics) ObserveEvaluation(source string, applicable int, took time.Duration) {
	m.Evaluations.WithLabelValues(source).Inc()
	m.ApplicableSubAreas.Observe(float64(applicable))
	m.EvaluationDuration.Observe(took.Seconds())
}

// ObserveReload records a catalog reload attempt
func (m *Metrics) ObserveReload(err error, rules int) {
	if err != nil {
		m.CatalogReloads.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloads.WithLabelValues("ok").Inc()
	m.CatalogRules.Set(float64(rules))
}
