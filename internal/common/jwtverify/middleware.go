package jwtverify

import (
	"context"
	"net/http"
	"strings"

	commonhttp "github.com/movstream/backend/internal/common/http"
	"github.com/movstream/backend/internal/common/logger"
)

type contextKey string

const claimsKey contextKey = "jwt_claims"

func Middleware(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
				log.Warnf("jwt auth failed path=%s: missing or invalid authorization header", r.URL.Path)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, "")
				return
			}

			tokenString := strings.TrimPrefix(raw, "Bearer ")
			claims, err := ParseToken(tokenString, secretBytes)
			if err != nil {
				log.Warnf("jwt auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid token", nil, "")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware attaches claims when the request carries a valid bearer
// token but never rejects: anonymous callers pass through without claims in
// context, invalid tokens are treated the same as none.
func OptionalMiddleware(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if strings.HasPrefix(raw, "Bearer ") {
				claims, err := ParseToken(strings.TrimPrefix(raw, "Bearer "), secretBytes)
				if err == nil {
					r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
				} else {
					log.Debugf("optional jwt ignored path=%s: %v", r.URL.Path, err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a handler on the admin indicator of the verified token.
// It must run after Middleware.
func RequireAdmin(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok || !claims.IsAdmin {
				log.Warnf("admin access denied path=%s user_id=%s", r.URL.Path, claims.UserID)
				commonhttp.WriteErrorEnvelope(w, http.StatusForbidden, commonhttp.CodeAdminRequired, "admin access required", nil, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
