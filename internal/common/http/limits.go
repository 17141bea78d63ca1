package http

import (
	"context"
	"net/http"
	"time"

	"github.com/movstream/backend/internal/common/constants"
)

const DefaultMaxRequestSize = constants.DefaultMaxRequestSize

// MaxRequestSizeMiddleware caps the request body; oversized bodies fail the
// JSON decode with http.MaxBytesError.
func MaxRequestSizeMiddleware(maxSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TimeoutMiddleware bounds handler work through the request context.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
