package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/movstream/backend/internal/common/constants"
	commonerrors "github.com/movstream/backend/internal/common/errors"
	"github.com/movstream/backend/internal/common/logger"
	prommetrics "github.com/movstream/backend/internal/common/prometheus"
)

// HandleError maps domain errors onto the JSON error envelope; anything
// else becomes a generic 500 so internals never leak to clients.
func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := traceIDFromContext(ctx)
	if traceID != "" {
		w.Header().Set("X-Trace-ID", traceID)
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		status := domainErr.HTTPStatus()

		if log.ShouldLog(logger.DEBUG) {
			log.WithFields(ctx, logger.Fields{
				"error_code": domainErr.Code(),
				"category":   string(domainErr.Category()),
				"status":     status,
				"action":     "domain_error",
			}).Debugf("domain error: %s", domainErr.Error())
		}

		prommetrics.DomainErrorsTotal.WithLabelValues(
			string(domainErr.Category()),
			domainErr.Code(),
			strconv.Itoa(status),
		).Inc()

		WriteErrorEnvelope(w, status, domainErr.Code(), domainErr.Message(), nil, traceID)
		return
	}

	log.WithFields(ctx, logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}).Errorf("unhandled error: %v", err)

	WriteError(w, http.StatusInternalServerError, "internal server error")
}

func traceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, ok := ctx.Value(constants.TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
