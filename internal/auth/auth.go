package auth

import (
	"context"

	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/user"
)

// LoginResult is what a successful login hands back to the HTTP layer.
type LoginResult struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// Repository is the persistence collaborator of the auth flow.
type Repository interface {
	// GetByEmailWithPassword is the only read that selects the password hash.
	GetByEmailWithPassword(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	GetRoleNames(ctx context.Context, userID int64) ([]string, error)
	WithinTransaction(ctx context.Context, fn func(tx TxRepository) error) error
}

// TxRepository is bound to one open transaction.
type TxRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	PositionExists(ctx context.Context, id int64) (bool, error)
	DepartmentExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	CreateUser(ctx context.Context, u *userDatamodel.User) error
}
