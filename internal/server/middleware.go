package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lifequest/internal/metrics"
)

type ctxKey struct{}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func entryFrom(ctx context.Context) *sessionEntry {
	e, _ := ctx.Value(ctxKey{}).(*sessionEntry)
	return e
}

// withSession resolves the caller's session or answers 401.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := s.sessions.Get(sessionID(r))
		if !ok {
			writeError(w, http.StatusUnauthorized, "session_required", "create a session with POST /api/session")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, e)))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.Status),
			zap.Duration("took", time.Since(start)))
	})
}
