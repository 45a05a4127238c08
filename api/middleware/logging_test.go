package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnaudio/storefront-api/pkg/logger"
)

func completionEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		if entry["message"] == "request.complete" {
			return entry
		}
	}
	t.Fatalf("no request.complete entry in %s", buf.String())
	return nil
}

func newAccessLogRouter(buf *bytes.Buffer, handler http.HandlerFunc) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
	r := chi.NewRouter()
	r.Use(Logging(logg), OptionalAuth(testAuthConfig, logg))
	r.Post("/api/payment-intent/{id}/attach-payment-method", handler)
	r.Get("/health/live", handler)
	return r
}

func TestLoggingRecordsCheckoutFields(t *testing.T) {
	buf := &bytes.Buffer{}
	router := newAccessLogRouter(buf, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/payment-intent/pi_1/attach-payment-method", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "user-1", "buyer@example.com"))
	req.Header.Set(idempotencyHeader, "key-1")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entry := completionEntry(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "/api/payment-intent/{id}/attach-payment-method", entry["route"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "key-1", entry["idempotency_key"])
	assert.Equal(t, "203.0.113.9", entry["client_ip"])
	assert.Equal(t, true, entry["idempotent_replayed"])
	assert.Equal(t, float64(http.StatusCreated), entry["status"])
	assert.Equal(t, float64(len("created")), entry["bytes"])
}

func TestLoggingLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	router := newAccessLogRouter(buf, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/payment-intent/pi_1/attach-payment-method", nil))

	entry := completionEntry(t, buf)
	assert.Equal(t, "warn", entry["level"])
	assert.NotContains(t, entry, "user_id")
	assert.NotContains(t, entry, "idempotency_key")

	buf.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, "debug", completionEntry(t, buf)["level"])
}

func TestLoggingWithoutLoggerPassesThrough(t *testing.T) {
	called := false
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
