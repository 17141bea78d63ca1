package http

import (
	"net/http"
	"runtime/debug"
	"strconv"

	commonerrors "github.com/movstream/backend/internal/common/errors"
	"github.com/movstream/backend/internal/common/logger"
	prommetrics "github.com/movstream/backend/internal/common/prometheus"
)

const codePanic = "PANIC"

// RecoveryMiddleware converts panics into the standard 500 envelope and
// counts them alongside domain errors so dashboards surface them.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					traceID := traceIDFromContext(r.Context())
					log.Criticalf("panic recovered path=%s trace_id=%s: %v\n%s", r.URL.Path, traceID, err, debug.Stack())

					prommetrics.DomainErrorsTotal.WithLabelValues(
						string(commonerrors.CategoryInternal),
						codePanic,
						strconv.Itoa(http.StatusInternalServerError),
					).Inc()

					WriteErrorEnvelope(w, http.StatusInternalServerError, CodeUnknown, "internal server error", nil, traceID)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
