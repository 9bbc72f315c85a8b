package rbac

import (
	"time"

	"github.com/frahmantamala/projecthub/internal/core/datamodel/user"
)

type Role struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

type Permission struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// UserRole links a user to a role. The (user_id, role_id) pair is unique.
type UserRole struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	RoleID    int64     `gorm:"column:role_id;not null;uniqueIndex:idx_user_roles_user_role" json:"role_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	User *user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role *Role      `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// RolePermission grants a permission to a role. The (role_id, permission_id) pair is unique.
type RolePermission struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	RoleID       int64     `gorm:"column:role_id;not null;uniqueIndex:idx_role_permissions_role_permission" json:"role_id"`
	PermissionID int64     `gorm:"column:permission_id;not null;uniqueIndex:idx_role_permissions_role_permission" json:"permission_id"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Role       *Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	Permission *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"permission,omitempty"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
