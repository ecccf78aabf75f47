package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/flexpilot/flexpilot/pkg/log"
)

// authMiddleware validates the Bearer ID token on API requests. When no OIDC
// audience is configured the dashboard runs in local single-user mode and
// requests pass through.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.With(r.Context(), log.Ctx(r.Context()).With(slog.String("reqPath", r.URL.Path)))
		r = r.WithContext(ctx)

		if s.bypassAuth {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, "missing authorization", http.StatusUnauthorized)
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			writeJSONError(w, "invalid auth header", http.StatusBadRequest)
			return
		}

		email, verified, err := s.oidcVerifier(ctx, token)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "token validation failed", slog.Any("error", err))
			writeJSONError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if !verified || !s.emailAllowed(email) {
			log.Ctx(ctx).WarnContext(ctx, "email not allowed", slog.String("email", email))
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) emailAllowed(email string) bool {
	if len(s.allowedEmails) == 0 {
		return true
	}
	for _, allowed := range s.allowedEmails {
		if email == allowed {
			return true
		}
	}
	return false
}
