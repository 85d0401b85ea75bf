package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/ayo6706/mass-payout/internal/api/problem"
	"github.com/ayo6706/mass-payout/internal/session"
	"go.uber.org/zap"
)

type contextKey string

const (
	sessionContextKey contextKey = "session_id"
	traceContextKey   contextKey = "trace_id"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "payout_session"

// SessionMiddleware resolves the caller's session from its cookie, issuing a
// fresh one when the cookie is missing, expired or forged.
func SessionMiddleware(manager *session.Manager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if id, err := manager.Parse(cookie.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(ContextWithSessionID(r.Context(), id)))
					return
				}
				logger.Debug("discarding invalid session cookie", zap.String("trace_id", TraceIDFromContext(r.Context())))
			}

			id, token, expiresAt, err := manager.Issue()
			if err != nil {
				logger.Error("issue session failed", zap.Error(err))
				problem.Write(w, r, http.StatusInternalServerError, problem.Type("session/misconfigured"), http.StatusText(http.StatusInternalServerError), "session is not configured")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    token,
				Path:     "/",
				Expires:  expiresAt,
				MaxAge:   int(time.Until(expiresAt).Seconds()),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(ContextWithSessionID(r.Context(), id)))
		})
	}
}

// ContextWithSessionID attaches a session id to ctx and to the request log line.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	annotateSession(ctx, sessionID)
	return context.WithValue(ctx, sessionContextKey, sessionID)
}

// SessionIDFromContext returns the caller's session id.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionContextKey).(string); ok {
		return v
	}
	return ""
}

// TraceIDFromContext returns the trace id for the request.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceContextKey).(string); ok {
		return v
	}
	return ""
}
