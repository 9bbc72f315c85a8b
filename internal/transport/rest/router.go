package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/organization"
	"github.com/frahmantamala/projecthub/internal/rbac"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/internal/transport/middleware"
	"github.com/frahmantamala/projecthub/internal/transport/swagger"
	"github.com/frahmantamala/projecthub/internal/user"
)

// Dependencies is everything the router mounts. Nil handlers leave their
// routes unregistered.
type Dependencies struct {
	DB             *sqlx.DB
	Dialect        string
	AllowedOrigins []string
	Logger         *slog.Logger

	Authenticator middleware.TokenAuthenticator
	Permissions   middleware.PermissionResolver

	AuthHandler         *auth.Handler
	UserHandler         *user.Handler
	RBACHandler         *rbac.Handler
	OrganizationHandler *organization.Handler
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteAppError(w, r, internal.NewNotFoundError("Route not found", "ROUTE_NOT_FOUND"))
	})
	base := transport.NewBaseHandler(deps.Logger)
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// OpenAPI document and Swagger UI live outside the API prefix
	router.Get(swagger.DocPath, swagger.DocHandler)
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if deps.DB != nil {
			health := NewHealthHandler(deps.DB, deps.Dialect)
			r.Get("/health", health.Health)
			r.Get("/ping", health.Ping)
		}

		if deps.AuthHandler == nil || deps.Authenticator == nil {
			return
		}

		authenticate := middleware.Authenticate(deps.Authenticator, auth.CookieName)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", deps.AuthHandler.Register)
			ar.Post("/login", deps.AuthHandler.Login)
			ar.Post("/logout", deps.AuthHandler.Logout)
			ar.With(authenticate).Get("/me", deps.AuthHandler.Me)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authenticate)

			if deps.UserHandler != nil {
				pr.Get("/users", deps.UserHandler.ListUsers)
				pr.Get("/users/{id}", deps.UserHandler.GetUser)
				pr.With(middleware.RequirePermission(deps.Permissions, rbac.PermManageUsers)).
					Patch("/users/{id}/active", deps.UserHandler.SetActive)
			}

			if deps.RBACHandler != nil {
				pr.Group(func(rr chi.Router) {
					rr.Use(middleware.RequirePermission(deps.Permissions, rbac.PermManageRoles))
					registerRBACRoutes(rr, deps.RBACHandler)
				})
			}

			if deps.OrganizationHandler != nil {
				registerOrganizationRoutes(pr, deps.OrganizationHandler,
					middleware.RequirePermission(deps.Permissions, rbac.PermManageOrganization))
			}
		})
	})
}

func registerRBACRoutes(r chi.Router, h *rbac.Handler) {
	r.Route("/roles", func(sr chi.Router) {
		sr.Get("/", h.ListRoles)
		sr.Post("/", h.CreateRole)
		sr.Get("/{id}", h.GetRole)
		sr.Put("/{id}", h.UpdateRole)
		sr.Delete("/{id}", h.DeleteRole)
	})
	r.Route("/permissions", func(sr chi.Router) {
		sr.Get("/", h.ListPermissions)
		sr.Post("/", h.CreatePermission)
		sr.Get("/{id}", h.GetPermission)
		sr.Put("/{id}", h.UpdatePermission)
		sr.Delete("/{id}", h.DeletePermission)
	})
	r.Route("/user-roles", func(sr chi.Router) {
		sr.Get("/", h.ListUserRoles)
		sr.Post("/", h.AssignRole)
		sr.Get("/{id}", h.GetUserRole)
		sr.Delete("/{id}", h.RevokeRole)
	})
	r.Route("/role-permissions", func(sr chi.Router) {
		sr.Get("/", h.ListRolePermissions)
		sr.Post("/", h.GrantPermission)
		sr.Get("/{id}", h.GetRolePermission)
		sr.Delete("/{id}", h.RevokePermission)
	})
}

// Reads need only authentication; writes need the organization permission.
func registerOrganizationRoutes(r chi.Router, h *organization.Handler, canWrite func(http.Handler) http.Handler) {
	r.Route("/positions", func(sr chi.Router) {
		sr.Get("/", h.ListPositions)
		sr.Get("/{id}", h.GetPosition)
		sr.With(canWrite).Post("/", h.CreatePosition)
		sr.With(canWrite).Put("/{id}", h.UpdatePosition)
		sr.With(canWrite).Delete("/{id}", h.DeletePosition)
	})
	r.Route("/departments", func(sr chi.Router) {
		sr.Get("/", h.ListDepartments)
		sr.Get("/{id}", h.GetDepartment)
		sr.With(canWrite).Post("/", h.CreateDepartment)
		sr.With(canWrite).Put("/{id}", h.UpdateDepartment)
		sr.With(canWrite).Delete("/{id}", h.DeleteDepartment)
	})
}
