package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

// PermissionResolver loads the permission names a user holds through roles.
type PermissionResolver interface {
	PermissionsForUser(ctx context.Context, userID int64) ([]string, error)
}

// RequirePermission lets the request through when the authenticated caller
// holds the named permission. Must run after Authenticate.
func RequirePermission(resolver PermissionResolver, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				transport.WriteAppError(w, r, internal.ErrUnauthenticated)
				return
			}

			perms, err := resolver.PermissionsForUser(r.Context(), principal.UserID)
			if err != nil {
				transport.WriteAppError(w, r, internal.NewInternalError("failed to resolve permissions", err))
				return
			}

			if !slices.Contains(perms, permission) {
				logger.From(r.Context()).Warn("access denied: user lacks required permission",
					"user_id", principal.UserID,
					"required_permission", permission,
					"user_permissions", perms)
				transport.WriteAppError(w, r, internal.ErrInsufficientPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
