package httpmetrics

import (
	"fmt"
	"net/http"
	"time"

	prommetrics "github.com/movstream/backend/internal/common/prometheus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method
		path := r.URL.Path

		prommetrics.HTTPRequestsTotal.WithLabelValues(method, path).Inc()
		prommetrics.HTTPRequestsInFlight.Inc()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		prommetrics.HTTPRequestsInFlight.Dec()
		statusClass := fmt.Sprintf("%dxx", rec.status/100)
		prommetrics.HTTPRequestDurationSeconds.WithLabelValues(method, path, statusClass).Observe(time.Since(start).Seconds())
	})
}
