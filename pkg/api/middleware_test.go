package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAPIKeyMiddleware(t *testing.T) {
	server, router, _ := setupTestServer(t, newFakeSource("a"), ServerConfig{APIKey: "secret"})

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(server.metrics.authRequestsTotal.WithLabelValues(statusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(server.metrics.authRequestsTotal.WithLabelValues(statusSuccess)))
}

func TestMetricsEndpointIsUnprotected(t *testing.T) {
	_, router, _ := setupTestServer(t, newFakeSource("a"), ServerConfig{APIKey: "secret"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tfrecord_indexed_records 1")
}

func TestSendError(t *testing.T) {
	w := httptest.NewRecorder()
	sendError(w, "nope", http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"error":"nope"}`, w.Body.String())
}

func TestSwaggerDocIsServed(t *testing.T) {
	_, router, _ := setupTestServer(t, newFakeSource("a"), ServerConfig{APIKey: "secret"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var doc map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc["basePath"])
	assert.Contains(t, doc["paths"], "/records/{n}")
}
