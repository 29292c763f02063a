package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.CacheLookup("apikey", ResultHit)
	r.CacheLookup("apikey", ResultHit)
	r.CacheLookup("apikey", ResultMiss)
	r.AuthOutcome("AUTHORIZED")
	r.ObserveHTTP(http.MethodPost, "/api/bot/:botId/validate", 200, 15*time.Millisecond)

	body := scrape(t, r)
	assert.Contains(t, body, `talka_cache_lookups_total{cache="apikey",result="hit"} 2`)
	assert.Contains(t, body, `talka_cache_lookups_total{cache="apikey",result="miss"} 1`)
	assert.Contains(t, body, `talka_gatekeeper_outcomes_total{code="AUTHORIZED"} 1`)
	assert.Contains(t, body, `talka_http_requests_total{method="POST",route="/api/bot/:botId/validate",status="200"} 1`)
	assert.Contains(t, body, `talka_http_request_duration_seconds_count{method="POST",route="/api/bot/:botId/validate"} 1`)
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.CacheLookup("apikey", ResultHit)
		r.AuthOutcome("TOKEN_MISSING")
		r.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})
}

func TestRegistry_IndependentInstances(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.AuthOutcome("TOKEN_INVALID")

	assert.Contains(t, scrape(t, a), `talka_gatekeeper_outcomes_total{code="TOKEN_INVALID"} 1`)
	assert.NotContains(t, scrape(t, b), `code="TOKEN_INVALID"`)
}
