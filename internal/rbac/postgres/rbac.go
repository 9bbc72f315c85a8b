package postgres

import (
	"context"

	"gorm.io/gorm"

	rbacDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/store"
)

type Repository struct {
	db              *gorm.DB
	roles           *store.Repository[rbacDatamodel.Role]
	permissions     *store.Repository[rbacDatamodel.Permission]
	userRoles       *store.Repository[rbacDatamodel.UserRole]
	rolePermissions *store.Repository[rbacDatamodel.RolePermission]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		roles:           store.NewRepository[rbacDatamodel.Role](db),
		permissions:     store.NewRepository[rbacDatamodel.Permission](db),
		userRoles:       store.NewRepository[rbacDatamodel.UserRole](db),
		rolePermissions: store.NewRepository[rbacDatamodel.RolePermission](db),
	}
}

func (r *Repository) CreateRole(ctx context.Context, role *rbacDatamodel.Role) error {
	return r.roles.Create(ctx, role)
}

func (r *Repository) GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	return r.roles.FindByPk(ctx, id)
}

func (r *Repository) ListRoles(ctx context.Context, page store.Page) ([]rbacDatamodel.Role, int64, error) {
	return r.roles.FindAndCountAll(ctx, page)
}

func (r *Repository) UpdateRole(ctx context.Context, role *rbacDatamodel.Role) error {
	return r.roles.Update(ctx, role)
}

func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	return r.roles.Destroy(ctx, id)
}

func (r *Repository) CreatePermission(ctx context.Context, perm *rbacDatamodel.Permission) error {
	return r.permissions.Create(ctx, perm)
}

func (r *Repository) GetPermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error) {
	return r.permissions.FindByPk(ctx, id)
}

func (r *Repository) ListPermissions(ctx context.Context, page store.Page) ([]rbacDatamodel.Permission, int64, error) {
	return r.permissions.FindAndCountAll(ctx, page)
}

func (r *Repository) UpdatePermission(ctx context.Context, perm *rbacDatamodel.Permission) error {
	return r.permissions.Update(ctx, perm)
}

func (r *Repository) DeletePermission(ctx context.Context, id int64) error {
	return r.permissions.Destroy(ctx, id)
}

func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	return store.NewRepository[userDatamodel.User](r.db).Exists(ctx, id)
}

func (r *Repository) CreateUserRole(ctx context.Context, ur *rbacDatamodel.UserRole) error {
	return r.userRoles.Create(ctx, ur)
}

func (r *Repository) GetUserRole(ctx context.Context, id int64) (*rbacDatamodel.UserRole, error) {
	var ur rbacDatamodel.UserRole
	if err := r.db.WithContext(ctx).Preload("Role").First(&ur, id).Error; err != nil {
		return nil, store.Translate(err)
	}
	return &ur, nil
}

func (r *Repository) ListUserRoles(ctx context.Context, page store.Page, userID int64) ([]rbacDatamodel.UserRole, int64, error) {
	var scopes []store.Scope
	if userID > 0 {
		scopes = append(scopes, store.Where("user_id = ?", userID))
	}
	return r.userRoles.FindAndCountAll(ctx, page, scopes...)
}

func (r *Repository) DeleteUserRole(ctx context.Context, id int64) error {
	return r.userRoles.Destroy(ctx, id)
}

func (r *Repository) CreateRolePermission(ctx context.Context, rp *rbacDatamodel.RolePermission) error {
	return r.rolePermissions.Create(ctx, rp)
}

func (r *Repository) GetRolePermission(ctx context.Context, id int64) (*rbacDatamodel.RolePermission, error) {
	var rp rbacDatamodel.RolePermission
	if err := r.db.WithContext(ctx).Preload("Permission").First(&rp, id).Error; err != nil {
		return nil, store.Translate(err)
	}
	return &rp, nil
}

func (r *Repository) ListRolePermissions(ctx context.Context, page store.Page, roleID int64) ([]rbacDatamodel.RolePermission, int64, error) {
	var scopes []store.Scope
	if roleID > 0 {
		scopes = append(scopes, store.Where("role_id = ?", roleID))
	}
	return r.rolePermissions.FindAndCountAll(ctx, page, scopes...)
}

func (r *Repository) DeleteRolePermission(ctx context.Context, id int64) error {
	return r.rolePermissions.Destroy(ctx, id)
}

func (r *Repository) RoleNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	return RoleNamesForUser(ctx, r.db, userID)
}

func (r *Repository) PermissionNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Model(&rbacDatamodel.Permission{}).
		Distinct().
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("permissions.name").
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, store.Translate(err)
	}
	return names, nil
}

// RoleNamesForUser is shared with the auth and user repositories, which put
// role names into tokens and safe views.
func RoleNamesForUser(ctx context.Context, db *gorm.DB, userID int64) ([]string, error) {
	names := []string{}
	err := db.WithContext(ctx).
		Model(&rbacDatamodel.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, store.Translate(err)
	}
	return names, nil
}
