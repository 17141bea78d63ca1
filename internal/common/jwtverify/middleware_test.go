package jwtverify

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/movstream/backend/internal/common/logger"
)

const middlewareSecret = "0123456789abcdef0123456789abcdef"

func mintHS256(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(middlewareSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func claimsProbe(got *Claims, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *ok = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	var claims Claims
	var seen bool
	handler := Middleware(middlewareSecret, logger.NewNop())(claimsProbe(&claims, &seen))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if seen {
		t.Error("handler must not run without a token")
	}
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	var claims Claims
	var seen bool
	handler := Middleware(middlewareSecret, logger.NewNop())(claimsProbe(&claims, &seen))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+mintHS256(t, "user-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !seen || claims.UserID != "user-1" {
		t.Errorf("expected claims for user-1 in context, got %+v (ok=%v)", claims, seen)
	}
}

func TestOptionalMiddlewareAnonymousPassesThrough(t *testing.T) {
	var claims Claims
	var seen bool
	handler := OptionalMiddleware(middlewareSecret, logger.NewNop())(claimsProbe(&claims, &seen))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/feedback", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous caller must pass through, got %d", rec.Code)
	}
	if seen {
		t.Error("no claims should be attached without a token")
	}
}

func TestOptionalMiddlewareAttachesClaimsWhenPresent(t *testing.T) {
	var claims Claims
	var seen bool
	handler := OptionalMiddleware(middlewareSecret, logger.NewNop())(claimsProbe(&claims, &seen))

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", nil)
	req.Header.Set("Authorization", "Bearer "+mintHS256(t, "user-5"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !seen || claims.UserID != "user-5" {
		t.Errorf("expected claims for user-5 in context, got %+v (ok=%v)", claims, seen)
	}
}

func TestOptionalMiddlewareIgnoresInvalidToken(t *testing.T) {
	var claims Claims
	var seen bool
	handler := OptionalMiddleware(middlewareSecret, logger.NewNop())(claimsProbe(&claims, &seen))

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("invalid token must not reject on the optional path, got %d", rec.Code)
	}
	if seen {
		t.Error("invalid token must not attach claims")
	}
}
