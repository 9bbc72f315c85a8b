package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/store"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	List(ctx context.Context, page store.Page) ([]userDatamodel.User, int64, error)
	SetActive(ctx context.Context, userID int64, active bool) error
	GetRoleNames(ctx context.Context, userID int64) ([]string, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// FindByID returns the safe view of a user, roles included.
func (s *Service) FindByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to get user", err)
	}

	roles, err := s.repo.GetRoleNames(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user roles", err)
	}

	return FromDataModelWithRoles(u, roles), nil
}

func (s *Service) List(ctx context.Context, page store.Page) (store.PageResult[User], error) {
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, page)
	if err != nil {
		return store.PageResult[User]{}, internal.NewInternalError("failed to list users", err)
	}

	users := make([]User, 0, len(rows))
	for i := range rows {
		users = append(users, *FromDataModel(&rows[i]))
	}
	return store.NewPageResult(users, total, page), nil
}

// SetActive toggles whether the user may log in. Existing tokens are unaffected.
func (s *Service) SetActive(ctx context.Context, userID int64, active bool) (*User, error) {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.logger.InfoContext(ctx, "user activation changed", "user_id", userID, "is_active", active)
	return s.FindByID(ctx, userID)
}
