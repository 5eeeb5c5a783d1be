package httpapi

import (
	"net/http"
	"time"

	"github.com/TemirB/orders-api/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLog logs every request with its execution time and reports it to
// Metrics.ObserveHTTP under the matched route pattern.
func RequestLog(logger *zap.Logger, m observability.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		m = observability.Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			dur := float64(time.Since(start).Microseconds()) / 1000.0

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveHTTP(r.Method, route, ww.Status(), dur)

			logger.Info("Request processed",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Int("status", ww.Status()),
				zap.Float64("execution_time_ms", dur),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
