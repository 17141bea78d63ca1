package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/movstream/backend/internal/common/constants"
)

// TraceIDMiddleware attaches an inbound X-Trace-ID (or a fresh UUID) to the
// request context so log lines and error envelopes can be correlated.
func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), constants.TraceIDKey, traceID)
		w.Header().Set("X-Trace-ID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
