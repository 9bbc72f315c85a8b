// Package organization holds the position and department reference data that
// user records point at.
package organization

import (
	"context"

	orgDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
	"github.com/frahmantamala/projecthub/internal/core/store"
)

type (
	Position   = orgDatamodel.Position
	Department = orgDatamodel.Department
)

type Repository interface {
	CreatePosition(ctx context.Context, p *Position) error
	GetPosition(ctx context.Context, id int64) (*Position, error)
	ListPositions(ctx context.Context, page store.Page) ([]Position, int64, error)
	UpdatePosition(ctx context.Context, p *Position) error
	DeletePosition(ctx context.Context, id int64) error

	CreateDepartment(ctx context.Context, d *Department) error
	GetDepartment(ctx context.Context, id int64) (*Department, error)
	ListDepartments(ctx context.Context, page store.Page) ([]Department, int64, error)
	UpdateDepartment(ctx context.Context, d *Department) error
	DeleteDepartment(ctx context.Context, id int64) error
}

type CreateDTO struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
}

type UpdateDTO struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=255"`
}
