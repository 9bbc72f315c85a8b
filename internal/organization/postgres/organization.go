package postgres

import (
	"context"

	"gorm.io/gorm"

	orgDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
	"github.com/frahmantamala/projecthub/internal/core/store"
)

type Repository struct {
	positions   *store.Repository[orgDatamodel.Position]
	departments *store.Repository[orgDatamodel.Department]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		positions:   store.NewRepository[orgDatamodel.Position](db),
		departments: store.NewRepository[orgDatamodel.Department](db),
	}
}

func (r *Repository) CreatePosition(ctx context.Context, p *orgDatamodel.Position) error {
	return r.positions.Create(ctx, p)
}

func (r *Repository) GetPosition(ctx context.Context, id int64) (*orgDatamodel.Position, error) {
	return r.positions.FindByPk(ctx, id)
}

func (r *Repository) ListPositions(ctx context.Context, page store.Page) ([]orgDatamodel.Position, int64, error) {
	return r.positions.FindAndCountAll(ctx, page)
}

func (r *Repository) UpdatePosition(ctx context.Context, p *orgDatamodel.Position) error {
	return r.positions.Update(ctx, p)
}

func (r *Repository) DeletePosition(ctx context.Context, id int64) error {
	return r.positions.Destroy(ctx, id)
}

func (r *Repository) CreateDepartment(ctx context.Context, d *orgDatamodel.Department) error {
	return r.departments.Create(ctx, d)
}

func (r *Repository) GetDepartment(ctx context.Context, id int64) (*orgDatamodel.Department, error) {
	return r.departments.FindByPk(ctx, id)
}

func (r *Repository) ListDepartments(ctx context.Context, page store.Page) ([]orgDatamodel.Department, int64, error) {
	return r.departments.FindAndCountAll(ctx, page)
}

func (r *Repository) UpdateDepartment(ctx context.Context, d *orgDatamodel.Department) error {
	return r.departments.Update(ctx, d)
}

func (r *Repository) DeleteDepartment(ctx context.Context, id int64) error {
	return r.departments.Destroy(ctx, id)
}
