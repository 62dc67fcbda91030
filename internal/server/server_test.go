package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLoggingCountsRequests(t *testing.T) {
	s := newTestServer(&fakeStore{}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ok", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	h := s.withLogging(mux)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusBadGateway, rr.Code)

	// Implicit 200s are counted too, labeled by the matched pattern.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequests.WithLabelValues("GET", "GET /boom", "502")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequests.WithLabelValues("GET", "GET /ok", "200")))
}
