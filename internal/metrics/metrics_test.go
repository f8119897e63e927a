package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lorryadmin/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOutcome(t *testing.T) {
	m := New()

	m.ObserveOutcome(domain.FlowSignIn, domain.Succeeded("u-1"))
	m.ObserveOutcome(domain.FlowSignIn, domain.Failed(domain.ReasonWrongPassword))
	m.ObserveOutcome(domain.FlowSignIn, domain.Failed(domain.ReasonWrongPassword))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOutcomes.WithLabelValues("sign_in", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOutcomes.WithLabelValues("sign_in", string(domain.ReasonWrongPassword))))
}

func TestInstrumentUsesMuxPattern(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Instrument(mux)

	for _, path := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "GET /items/{id}", "418")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveSnapshot(domain.ListSnapshot{Collection: domain.CollectionProducts})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `lorryadmin_feed_snapshots_total{collection="Product"} 1`))
}
