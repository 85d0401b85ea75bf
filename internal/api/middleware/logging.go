package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const requestLogContextKey contextKey = "request_log"

// requestLog collects fields that inner middleware learns after the logger has
// already wrapped the request, such as the session id.
type requestLog struct {
	sessionID string
}

// LoggingMiddleware emits one structured line per request with the trace id, the
// matched route pattern and the caller's session id.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			entry := &requestLog{}
			r = r.WithContext(context.WithValue(r.Context(), requestLogContextKey, entry))

			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.status),
				zap.String("trace_id", TraceIDFromContext(r.Context())),
				zap.Duration("duration", time.Since(start)),
			}
			if entry.sessionID != "" {
				fields = append(fields, zap.String("session_id", entry.sessionID))
			}
			switch {
			case rw.status >= http.StatusInternalServerError:
				logger.Error("http_request", fields...)
			case rw.status >= http.StatusBadRequest:
				logger.Warn("http_request", fields...)
			default:
				logger.Info("http_request", fields...)
			}
		})
	}
}

func annotateSession(ctx context.Context, sessionID string) {
	if entry, ok := ctx.Value(requestLogContextKey).(*requestLog); ok {
		entry.sessionID = sessionID
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}
