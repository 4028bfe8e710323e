// Package metrics exposes pipeline counters on a private Prometheus registry. A CLI
// run has no scrape endpoint, so the registry is written to a node_exporter
// textfile at the end of the run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "briefguard"

// Run outcomes
const (
	OutcomeOK     = "ok"     // Contract-valid output produced
	OutcomeIssues = "issues" // Rejected with an issue list
	OutcomeError  = "error"  // Failed before enforcement (bad request, IO)
)

// Metrics holds every collector of one process. All methods are nil-safe so
// callers can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	// runs counts pipeline runs.
	// Labels: outcome (ok, issues, error)
	runs *prometheus.CounterVec

	// repairs counts soft repairs applied by the normalizer.
	// Labels: kind (selection, hero, citation, padded, trimmed, title)
	repairs *prometheus.CounterVec

	// claims counts grounded claims.
	// Labels: status (supported, analysis, needs_verification)
	claims *prometheus.CounterVec

	// issues counts soft issues.
	// Labels: source (grounding, fact_check)
	issues *prometheus.CounterVec

	// stageDuration measures each pipeline stage.
	// Labels: stage (enforce, ground, fact_check, score)
	stageDuration *prometheus.HistogramVec

	// cacheLookups counts report cache lookups.
	// Labels: result (hit, miss)
	cacheLookups *prometheus.CounterVec

	// qualityIndex tracks the distribution of quality scores
	qualityIndex prometheus.Histogram
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome",
		}, []string{"outcome"}),
		repairs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "repairs_total",
			Help:      "Soft repairs applied during normalization",
		}, []string{"kind"}),
		claims: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grounding",
			Name:      "claims_total",
			Help:      "Grounded claims by status",
		}, []string{"status"}),
		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "soft_issues_total",
			Help:      "Soft issues reported by grounding and fact checking",
		}, []string{"source"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"stage"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Report cache lookups by result",
		}, []string{"result"}),
		qualityIndex: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quality_index",
			Help:      "Distribution of quality index scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRun counts one pipeline run
func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// ObserveRepairs counts repairs per kind
func (m *Metrics) ObserveRepairs(counts map[string]int) {
	if m == nil {
		return
	}
	for kind, n := range counts {
		if n > 0 {
			m.repairs.WithLabelValues(kind).Add(float64(n))
		}
	}
}

// ObserveClaims counts claims per status
func (m *Metrics) ObserveClaims(supported, analysis, needsVerification int) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues("supported").Add(float64(supported))
	m.claims.WithLabelValues("analysis").Add(float64(analysis))
	m.claims.WithLabelValues("needs_verification").Add(float64(needsVerification))
}

// ObserveIssues counts soft issues from one source
func (m *Metrics) ObserveIssues(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.issues.WithLabelValues(source).Add(float64(n))
}

// ObserveStage records the duration of a stage that started at start
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveCache counts one cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveQuality records a quality index
func (m *Metrics) ObserveQuality(index int) {
	if m == nil {
		return
	}
	m.qualityIndex.Observe(float64(index))
}

// WriteTextfile writes the registry in the text exposition format. The write is
// atomic, so node_exporter never reads a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
