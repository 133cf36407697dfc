package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/logger"
)

// Recoverer turns a handler panic into a JSON internal_error response.
func Recoverer(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				fields := append(facetFields(r),
					zap.Any("panic", rvr),
					zap.Stack("stacktrace"),
				)
				logger.FromContext(r.Context(), log).Error("panic recovered", fields...)
				writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WideEvent emits one http_request line per request, tagged with the matched
// route and the facet addressed by it, and propagates X-Request-ID.
// Client errors log at warn, server errors at error.
func WideEvent(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := log.With(zap.String("request_id", requestID))
			ctx := logger.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := append(facetFields(r),
				zap.String("method", r.Method),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
			switch {
			case status >= http.StatusInternalServerError:
				reqLogger.Error("http_request", fields...)
			case status >= http.StatusBadRequest:
				reqLogger.Warn("http_request", fields...)
			default:
				reqLogger.Info("http_request", fields...)
			}
		})
	}
}

// facetFields reads the routing outcome. chi fills the shared route context
// while routing, so this is only meaningful once next has run.
func facetFields(r *http.Request) []zap.Field {
	fields := []zap.Field{zap.String("path", r.URL.Path)}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return fields
	}
	if route := rctx.RoutePattern(); route != "" {
		fields = append(fields, zap.String("route", route))
	}
	if name := rctx.URLParam("facet"); name != "" {
		fields = append(fields, zap.String("facet", name))
		if value := r.URL.Query().Get("value"); value != "" {
			fields = append(fields, zap.String("facet_value", value))
		}
	}
	return fields
}
