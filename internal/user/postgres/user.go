package postgres

import (
	"context"

	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/store"
	rbacPostgres "github.com/frahmantamala/projecthub/internal/rbac/postgres"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID never selects the password hash.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Omit("password_hash").First(&u, userID).Error; err != nil {
		return nil, store.Translate(err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, page store.Page) ([]userDatamodel.User, int64, error) {
	return store.NewRepository[userDatamodel.User](r.db).FindAndCountAll(ctx, page, omitPasswordHash)
}

func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("is_active", active)
	if res.Error != nil {
		return store.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetRoleNames(ctx context.Context, userID int64) ([]string, error) {
	return rbacPostgres.RoleNamesForUser(ctx, r.db, userID)
}

func omitPasswordHash(db *gorm.DB) *gorm.DB {
	return db.Omit("password_hash")
}
