package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRun(OutcomeOK)
	m.ObserveRun(OutcomeOK)
	m.ObserveRun(OutcomeIssues)
	m.ObserveRepairs(map[string]int{"title": 1, "padded": 3, "hero": 0})
	m.ObserveClaims(4, 2, 1)
	m.ObserveIssues("grounding", 2)
	m.ObserveIssues("fact_check", 0)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(OutcomeIssues)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.repairs.WithLabelValues("padded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.repairs.WithLabelValues("title")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.claims.WithLabelValues("supported")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.issues.WithLabelValues("grounding")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))

	// Zero-count repair kinds never create a series
	assert.Equal(t, 2, testutil.CollectAndCount(m.repairs))
}

func TestMetrics_Histograms(t *testing.T) {
	m := New()

	m.ObserveStage("enforce", time.Now())
	m.ObserveQuality(72)

	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.qualityIndex))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRun(OutcomeError)
		m.ObserveRepairs(map[string]int{"title": 1})
		m.ObserveClaims(1, 1, 1)
		m.ObserveIssues("grounding", 1)
		m.ObserveStage("ground", time.Now())
		m.ObserveCache(true)
		m.ObserveQuality(50)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRun(OutcomeOK)

	path := filepath.Join(t.TempDir(), "briefguard.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `briefguard_runs_total{outcome="ok"} 1`))

	// Empty path disables the export
	assert.NoError(t, m.WriteTextfile(""))
}
