package user

import (
	"time"

	"github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
)

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	HiringDate   time.Time `gorm:"column:hiring_date"`
	PositionID   int64     `gorm:"column:position_id;not null;index"`
	DepartmentID *int64    `gorm:"column:department_id;index"`
	SupervisorID *int64    `gorm:"column:supervisor_id;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`

	Position   *organization.Position   `gorm:"foreignKey:PositionID;constraint:OnDelete:RESTRICT" json:"-"`
	Department *organization.Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"-"`
	Supervisor *User                    `gorm:"foreignKey:SupervisorID;constraint:OnDelete:SET NULL" json:"-"`
}

func (User) TableName() string {
	return "users"
}
