package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusNotFound        = 404
	statusConflict        = 409
	statusTooManyRequests = 429
	statusInternalError   = 500
)

// MetricsMiddleware records request count, latency and error class per
// endpoint. A panicking handler is answered with 500 and logged.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				logger.Get().Named("api").Error(r.Context(), "handler panicked",
					logger.String("endpoint", endpoint),
					logger.Any("panic", p))
				if !rw.wroteHeader {
					writeError(rw, statusInternalError, "internal_error", nil)
				} else {
					rw.status = statusInternalError
				}
			}

			status := strconv.Itoa(rw.status)
			metrics.RecordHTTPRequest(endpoint, r.Method, status)
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Microseconds())/1000)
			if rw.status >= statusBadRequest {
				metrics.RecordErrorByComponent("http_"+endpoint, errorClass(rw.status))
			}
		}()

		next(rw, r)
	}
}

// errorClass buckets an error status for the error counter.
func errorClass(status int) string {
	switch {
	case status >= statusInternalError:
		return "server_error"
	case status == statusTooManyRequests:
		return "rate_limit"
	case status == statusNotFound:
		return "not_found"
	case status == statusConflict:
		return "conflict"
	default:
		return "client_error"
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
