package middleware

import (
	"log"
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel/trace"
)

var logPrintf = log.Printf

// RequestLogger writes one line per request with the status, size and the
// active trace/span ids.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		spanContext := trace.SpanFromContext(r.Context()).SpanContext()
		logPrintf(
			"request method=%s path=%s status=%d bytes=%d duration=%s trace_id=%s span_id=%s",
			r.Method,
			r.URL.Path,
			metrics.Code,
			metrics.Written,
			metrics.Duration,
			spanContext.TraceID().String(),
			spanContext.SpanID().String(),
		)
	})
}
