package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nnaudio/storefront-api/api/responses"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
	pkgredis "github.com/nnaudio/storefront-api/pkg/redis"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	paymentIdempotencyTTL = 7 * 24 * time.Hour
	idempotencyHeader     = "Idempotency-Key"
	replayedHeader        = "Idempotent-Replayed"
)

type idempotencyRule struct {
	method   string
	segments []string
	ttl      time.Duration
}

// routes that honour Idempotency-Key; {id} matches any single segment
var idempotencyRules = []idempotencyRule{
	newIdempotencyRule(http.MethodPost, "/api/payment-intent", paymentIdempotencyTTL),
	newIdempotencyRule(http.MethodPost, "/api/payment-intent/{id}/attach-payment-method", defaultIdempotencyTTL),
	newIdempotencyRule(http.MethodPost, "/api/admin/products/{id}/stripe-sync", defaultIdempotencyTTL),
}

func newIdempotencyRule(method, route string, ttl time.Duration) idempotencyRule {
	return idempotencyRule{method: method, segments: splitPath(route), ttl: ttl}
}

func (rule idempotencyRule) matches(method string, segments []string) bool {
	if rule.method != method || len(rule.segments) != len(segments) {
		return false
	}
	for i, want := range rule.segments {
		if strings.HasPrefix(want, "{") || want == segments[i] {
			continue
		}
		return false
	}
	return true
}

type idempotencyRecord struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the first non-5xx response stored for a caller's
// Idempotency-Key. Reusing a key with a different body is rejected with 409.
// Requests without the header, or on routes without a rule, pass through.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			rule, ok := routeRule(r.Method, r.URL.Path)
			if !ok || store == nil || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := requestHash(r, body)
			key := store.IdempotencyKey(callerScope(r), clientKey)

			stored, found, err := store.LoadRecord(ctx, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if found {
				var record idempotencyRecord
				if err := json.Unmarshal([]byte(stored), &record); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if record.RequestHash != hash {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				replay(w, record)
				return
			}

			capture := &replayRecorder{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			if capture.status() >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(idempotencyRecord{
				Status:      capture.status(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: hash,
			})
			if err == nil {
				_, err = store.SaveRecord(ctx, key, string(payload), rule.ttl)
			}
			if err != nil {
				logIdempotencyError(ctx, logg, err)
			}
		})
	}
}

// routeRule matches the raw request path. Group middleware runs before chi
// resolves the final route pattern.
func routeRule(method, path string) (idempotencyRule, bool) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return idempotencyRule{}, false
	}
	for _, rule := range idempotencyRules {
		if rule.matches(method, segments) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func callerScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method + " " + r.URL.Path + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func replay(w http.ResponseWriter, record idempotencyRecord) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
}

// replayRecorder tees the response so it can be stored after the handler
// returns.
type replayRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
	code int
}

func (r *replayRecorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *replayRecorder) Write(b []byte) (int, error) {
	if r.code == 0 {
		r.code = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *replayRecorder) status() int {
	if r.code == 0 {
		return http.StatusOK
	}
	return r.code
}

func logIdempotencyError(ctx context.Context, logg *logger.Logger, err error) {
	if logg == nil {
		return
	}
	logg.Error(ctx, "idempotency.persist_failed", err)
}
