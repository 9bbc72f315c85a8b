package datamodel

import (
	"github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/rbac"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/user"
)

// Models lists every persistent struct in dependency order, for AutoMigrate.
func Models() []any {
	return []any{
		&organization.Position{},
		&organization.Department{},
		&user.User{},
		&rbac.Role{},
		&rbac.Permission{},
		&rbac.UserRole{},
		&rbac.RolePermission{},
	}
}
