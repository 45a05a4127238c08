package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/types"
)

func TestWriteSuccessWritesPayloadDirectly(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]any{"success": true, "isFreeOrder": false})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("unexpected payload %v", body)
	}
	if _, wrapped := body["data"]; wrapped {
		t.Fatalf("payload should not be wrapped in a data envelope")
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
		WithDetails(map[string]string{"items": "is required"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error != "cart is empty" {
		t.Fatalf("unexpected message %q", body.Error)
	}
	if body.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Details == nil {
		t.Fatalf("expected details in public payload")
	}
	if body.Success != nil {
		t.Fatalf("success flag should be omitted by WriteError")
	}
}

func TestWriteErrorExposesProcessorCause(t *testing.T) {
	w := httptest.NewRecorder()
	cause := errors.New(`{"message":"Your card was declined."}`)
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeProcessor, cause, "Your card was declined."))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Your card was declined." {
		t.Fatalf("expected processor message, got %q", body.Error)
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Error != "internal server error" {
		t.Fatalf("internal errors must not leak details, got %q", body.Error)
	}
}

func TestWriteFailureMarksSuccessFalse(t *testing.T) {
	w := httptest.NewRecorder()
	WriteFailure(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))

	if got := w.Code; got != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success == nil || *body.Success {
		t.Fatalf("expected success=false in body")
	}
}
