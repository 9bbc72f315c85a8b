package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/store"
	rbacPostgres "github.com/frahmantamala/projecthub/internal/rbac/postgres"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmailWithPassword(ctx context.Context, email string) (*userDatamodel.User, error) {
	return store.NewRepository[userDatamodel.User](r.db).FindOne(ctx, "email = ?", email)
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Omit("password_hash").First(&u, userID).Error; err != nil {
		return nil, store.Translate(err)
	}
	return &u, nil
}

func (r *Repository) GetRoleNames(ctx context.Context, userID int64) ([]string, error) {
	return rbacPostgres.RoleNamesForUser(ctx, r.db, userID)
}

func (r *Repository) WithinTransaction(ctx context.Context, fn func(tx auth.TxRepository) error) error {
	return store.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&txRepository{db: tx})
	})
}

type txRepository struct {
	db *gorm.DB
}

func (t *txRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, store.Translate(err)
	}
	return count > 0, nil
}

func (t *txRepository) PositionExists(ctx context.Context, id int64) (bool, error) {
	return store.NewRepository[organization.Position](t.db).Exists(ctx, id)
}

func (t *txRepository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	return store.NewRepository[organization.Department](t.db).Exists(ctx, id)
}

func (t *txRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	return store.NewRepository[userDatamodel.User](t.db).Exists(ctx, id)
}

func (t *txRepository) CreateUser(ctx context.Context, u *userDatamodel.User) error {
	return store.NewRepository[userDatamodel.User](t.db).Create(ctx, u)
}
