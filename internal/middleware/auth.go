package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mroshb/hanglight/internal/security"
	"github.com/mroshb/hanglight/internal/services"
	"github.com/mroshb/hanglight/internal/session"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
)

type contextKey string

const sessionKey contextKey = "session"

// AuthMiddleware validates the bearer token and attaches a signed-in
// session to the request context. The session is provisioned through the
// provider's sign-in event, the same path any other auth source takes.
func AuthMiddleware(jwtSecret string, svc *services.Services) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing or malformed authorization header")
				return
			}

			provider := security.NewJWTProvider(jwtSecret)
			sess := session.New(svc)
			if err := sess.Attach(r.Context(), provider); err != nil {
				writeError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, errors.MessageOf(err))
				return
			}
			defer sess.Detach()

			if _, err := provider.SignIn(token); err != nil {
				logger.Warn("Rejected bearer token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token")
				return
			}

			if !sess.SignedIn() {
				writeError(w, http.StatusInternalServerError, errors.ErrCodeInternalError, sess.View().Message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the session set by AuthMiddleware, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
