package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Shivang14d04/BlogCircle/internal/auth"
)

// Auth resolves the request credential once and stores the resulting
// identity in the context. Requests without a credential, or with an
// invalid one, proceed as anonymous; enforcement happens where the
// operation is actually gated.
func Auth(resolver *auth.Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(extractToken(r))
			if err != nil {
				logger.Debug("credential rejected",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// extractToken reads the bearer token, falling back to the session
// cookie set by the auth provider.
func extractToken(r *http.Request) string {
	const prefix = "Bearer "
	if s := r.Header.Get("Authorization"); strings.HasPrefix(s, prefix) {
		return strings.TrimSpace(s[len(prefix):])
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}
