package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/movstream/backend/internal/common/constants"
	"github.com/movstream/backend/internal/common/logger"
)

func TestRecoveryMiddlewareConvertsPanic(t *testing.T) {
	handler := RecoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), constants.TraceIDKey, "trace-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}

	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Code != CodeUnknown {
		t.Errorf("expected code %q, got %q", CodeUnknown, env.Code)
	}
	if env.TraceID != "trace-1" {
		t.Errorf("expected trace id in envelope, got %q", env.TraceID)
	}
}

func TestRecoveryMiddlewarePassesThrough(t *testing.T) {
	handler := RecoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
