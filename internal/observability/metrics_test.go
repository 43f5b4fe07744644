package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	body := scrape(t, m)
	require.Contains(t, body, "workbench_http_requests_total")
	require.Contains(t, body, `code="418"`)
}

func TestDecisionAndConflictCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordDecision(true)
	m.RecordDecision(false)
	m.RecordDecision(false)
	m.RecordQuotaConflict()

	body := scrape(t, m)
	require.Contains(t, body, `workbench_entitlement_decisions_total{outcome="granted"} 1`)
	require.Contains(t, body, `workbench_entitlement_decisions_total{outcome="denied"} 2`)
	require.Contains(t, body, "workbench_quota_update_conflicts_total 1")
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics
	m.RecordDecision(true)
	m.RecordQuotaConflict()
	require.NotNil(t, m.Handler())

	passed := false
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed = true
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, passed)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return strings.TrimSpace(rec.Body.String())
}
