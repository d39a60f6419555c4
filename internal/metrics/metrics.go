package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docverify"

// Metrics holds the collectors for the verification pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Final decisions by status and country
	Verifications *prometheus.CounterVec

	// Duration of each pipeline stage (ocr, mrz, decode, quality, barcode, liveness, rules, analysis, persist)
	StageLatency *prometheus.HistogramVec

	// End to end verification latency
	VerifyLatency prometheus.Histogram

	// MRZ parse outcomes by format (td3, td1, unknown, none)
	MRZParses *prometheus.CounterVec

	// Rule evaluations by result (passed, failed, no_rule)
	RuleChecks *prometheus.CounterVec

	// Stored verifications by status, refreshed by the Aggregator
	StoredVerifications *prometheus.GaugeVec
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Total verification decisions by status and country",
		}, []string{"status", "country"}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of verification pipeline stages",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"stage"}),

		VerifyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verify_duration_seconds",
			Help:      "Duration of a full verification including the analysis delay",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5, 10},
		}),

		MRZParses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mrz_parses_total",
			Help:      "MRZ parse attempts by detected format",
		}, []string{"format"}),

		RuleChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_checks_total",
			Help:      "Country rule evaluations by result",
		}, []string{"result"}),

		StoredVerifications: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_verifications",
			Help:      "Persisted verifications by status",
		}, []string{"status"}),
	}
}

// ObserveStage records the duration of one pipeline stage
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveVerification records a final decision and its total latency
func (m *Metrics) ObserveVerification(status, country string, d time.Duration) {
	if m != nil {
		m.Verifications.WithLabelValues(status, country).Inc()
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// IncrementMRZ records a parse outcome
func (m *Metrics) IncrementMRZ(format string) {
	if m != nil {
		m.MRZParses.WithLabelValues(format).Inc()
	}
}

// IncrementRuleCheck records a rule evaluation result
func (m *Metrics) IncrementRuleCheck(result string) {
	if m != nil {
		m.RuleChecks.WithLabelValues(result).Inc()
	}
}

// SetStored replaces the stored-verification gauge values
func (m *Metrics) SetStored(counts map[string]int64) {
	if m == nil {
		return
	}
	m.StoredVerifications.Reset()
	for status, n := range counts {
		m.StoredVerifications.WithLabelValues(status).Set(float64(n))
	}
}
