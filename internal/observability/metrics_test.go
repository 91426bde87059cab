package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPI("GET", "/x", 200, time.Millisecond)
		m.ApiInflightInc()
		m.ApiInflightDec()
		m.IncActionRecorded("like")
		m.IncProfileUpdate("mutated")
		m.IncProfileConflict()
		m.ObserveRecommend("popular", true, 3)
		m.IncLedgerStatus("accepted")
		m.IncRateLimited("/api/v1/actions")
		m.RegisterDBStats(nil, nil)
	})
	assert.Nil(t, m.Registry())
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.IncActionRecorded("like")
	m.IncActionRecorded("like")
	m.IncProfileConflict()
	m.ObserveAPI("GET", "/api/v1/recommendations", 200, 20*time.Millisecond)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.actionsRecorded.WithLabelValues("like")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.profileConflicts))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "paperrec_actions_recorded_total"))
	assert.True(t, strings.Contains(body, `route="/api/v1/recommendations"`))
}

func TestInitRespectsMetricsEnabled(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "")
	assert.Nil(t, Init(nil))
}
