package middleware

import (
	"net/http"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

// TokenAuthenticator turns a raw token into the caller's principal.
type TokenAuthenticator interface {
	Authenticate(token string) (*internal.Principal, error)
}

// Authenticate requires a valid token from the named cookie or a Bearer header
// and stores the principal in the request context.
func Authenticate(authn TokenAuthenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.ExtractToken(r, cookieName)
			if token == "" {
				transport.WriteAppError(w, r, internal.ErrUnauthenticated)
				return
			}

			principal, err := authn.Authenticate(token)
			if err != nil {
				transport.WriteAppError(w, r, err)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "user_id", principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
