package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
)

// User is the safe view returned to clients. It has no password fields, so no
// code path can serialize one.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	HiringDate   time.Time `json:"hiring_date"`
	PositionID   int64     `json:"position_id"`
	DepartmentID *int64    `json:"department_id"`
	SupervisorID *int64    `json:"supervisor_id"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		IsActive:     u.IsActive,
		HiringDate:   u.HiringDate,
		PositionID:   u.PositionID,
		DepartmentID: u.DepartmentID,
		SupervisorID: u.SupervisorID,
		Roles:        []string{},
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModelWithRoles(u *userDatamodel.User, roles []string) *User {
	safe := FromDataModel(u)
	if roles != nil {
		safe.Roles = roles
	}
	return safe
}
