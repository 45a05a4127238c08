package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nnaudio/storefront-api/pkg/logger"
)

const ctxAccessLog contextKey = "access_log"

// accessLog collects facts that inner middleware learn after Logging has
// already built the request context.
type accessLog struct {
	userID string
}

// noteCaller records the authenticated caller on the enclosing access log.
func noteCaller(ctx context.Context, userID string) {
	if entry, ok := ctx.Value(ctxAccessLog).(*accessLog); ok && entry != nil {
		entry.userID = userID
	}
}

// quietPaths are polled by load balancers and scrapers; they log at debug.
var quietPaths = []string{"/health/", "/metrics"}

// Logging writes one access line per request. The completion line carries the
// matched route, the caller, the idempotency key and whether the response was
// replayed or rate limited. Server errors log at warn.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := &accessLog{}
			ctx := context.WithValue(r.Context(), ctxAccessLog, entry)

			fields := map[string]any{
				"method":    r.Method,
				"path":      r.URL.Path,
				"client_ip": clientIP(r),
			}
			if key := strings.TrimSpace(r.Header.Get(idempotencyHeader)); key != "" {
				fields["idempotency_key"] = key
			}
			ctx = logg.WithFields(ctx, fields)

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			logg.Debug(ctx, "request.start")

			next.ServeHTTP(rec, r.WithContext(ctx))

			done := map[string]any{
				"status":      rec.statusCode(),
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					done["route"] = pattern
				}
			}
			if entry.userID != "" {
				done["user_id"] = entry.userID
			}
			if rec.Header().Get(replayedHeader) == "true" {
				done["idempotent_replayed"] = true
			}
			if rec.statusCode() == http.StatusTooManyRequests {
				done["rate_limited"] = true
			}
			ctx = logg.WithFields(ctx, done)

			switch {
			case isQuietPath(r.URL.Path):
				logg.Debug(ctx, "request.complete")
			case rec.statusCode() >= http.StatusInternalServerError:
				logg.Warn(ctx, "request.complete")
			default:
				logg.Info(ctx, "request.complete")
			}
		})
	}
}

func isQuietPath(path string) bool {
	for _, prefix := range quietPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
