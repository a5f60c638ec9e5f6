package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

// LoggerMiddleware stores base in the request context so handlers can
// retrieve it with logger.FromContext.
func LoggerMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), base)))
		})
	}
}

// TraceMiddleware adds a trace ID to the request context and enriches the
// context logger with it. When chi's RequestID middleware ran earlier, its
// id is attached as well.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := logger.FromContextOrDefault(ctx, nil).With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = logger.WithRequestID(ctx, reqID)
		}

		logger.FromContextOrDefault(ctx, log).Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
