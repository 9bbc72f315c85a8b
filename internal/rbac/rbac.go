// Package rbac manages roles, permissions and the two join entities linking
// users to roles and roles to permissions.
package rbac

import (
	"context"

	rbacDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/rbac"
	"github.com/frahmantamala/projecthub/internal/core/store"
)

// Permission names checked by the HTTP layer.
const (
	PermManageRoles        = "manage_roles"
	PermManageUsers        = "manage_users"
	PermManageOrganization = "manage_organization"
)

const RoleAdmin = "admin"

type (
	Role           = rbacDatamodel.Role
	Permission     = rbacDatamodel.Permission
	UserRole       = rbacDatamodel.UserRole
	RolePermission = rbacDatamodel.RolePermission
)

type Repository interface {
	CreateRole(ctx context.Context, role *Role) error
	GetRole(ctx context.Context, id int64) (*Role, error)
	ListRoles(ctx context.Context, page store.Page) ([]Role, int64, error)
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, id int64) error

	CreatePermission(ctx context.Context, perm *Permission) error
	GetPermission(ctx context.Context, id int64) (*Permission, error)
	ListPermissions(ctx context.Context, page store.Page) ([]Permission, int64, error)
	UpdatePermission(ctx context.Context, perm *Permission) error
	DeletePermission(ctx context.Context, id int64) error

	UserExists(ctx context.Context, id int64) (bool, error)

	// userID 0 lists every assignment.
	CreateUserRole(ctx context.Context, ur *UserRole) error
	GetUserRole(ctx context.Context, id int64) (*UserRole, error)
	ListUserRoles(ctx context.Context, page store.Page, userID int64) ([]UserRole, int64, error)
	DeleteUserRole(ctx context.Context, id int64) error

	// roleID 0 lists every grant.
	CreateRolePermission(ctx context.Context, rp *RolePermission) error
	GetRolePermission(ctx context.Context, id int64) (*RolePermission, error)
	ListRolePermissions(ctx context.Context, page store.Page, roleID int64) ([]RolePermission, int64, error)
	DeleteRolePermission(ctx context.Context, id int64) error

	RoleNamesForUser(ctx context.Context, userID int64) ([]string, error)
	PermissionNamesForUser(ctx context.Context, userID int64) ([]string, error)
}
