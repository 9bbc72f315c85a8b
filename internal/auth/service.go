package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/events"
	"github.com/frahmantamala/projecthub/internal/core/store"
	"github.com/frahmantamala/projecthub/internal/user"
)

type Service struct {
	repo      Repository
	hasher    PasswordHasher
	tokens    TokenService
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the auth flow. publisher may be nil.
func NewService(repo Repository, hasher PasswordHasher, tokens TokenService, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password fail identically. The active flag is checked after the password.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	dto.Email = normalizeEmail(dto.Email)
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmailWithPassword(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.InfoContext(ctx, "login rejected", "reason", "unknown email")
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	ok, err := s.hasher.Verify(dto.Password, u.PasswordHash)
	if err != nil {
		return nil, internal.NewInternalError("failed to verify password", err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "login rejected", "reason", "password mismatch", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}

	roles, err := s.repo.GetRoleNames(ctx, u.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load roles", err)
	}

	token, err := s.tokens.Issue(Claims{UserID: u.ID, Email: u.Email, Roles: roles})
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return &LoginResult{
		User:  user.FromDataModelWithRoles(u, roles),
		Token: token,
	}, nil
}

// Register creates a user. Every existence check and the insert share one
// transaction, so a failure leaves no row behind.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.User, error) {
	dto.Email = normalizeEmail(dto.Email)
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	hiringDate := s.now().UTC().Truncate(24 * time.Hour)
	if dto.HiringDate != nil && !dto.HiringDate.IsZero() {
		hiringDate = dto.HiringDate.Time
	}

	var created *userDatamodel.User
	err := s.repo.WithinTransaction(ctx, func(tx TxRepository) error {
		exists, err := tx.EmailExists(ctx, dto.Email)
		if err != nil {
			return internal.NewInternalError("failed to check email", err)
		}
		if exists {
			return internal.ErrDuplicateEmail
		}

		if err := requireExists(ctx, tx.PositionExists, dto.PositionID, internal.ErrPositionNotFound); err != nil {
			return err
		}
		if dto.DepartmentID != nil {
			if err := requireExists(ctx, tx.DepartmentExists, *dto.DepartmentID, internal.ErrDepartmentNotFound); err != nil {
				return err
			}
		}
		if dto.SupervisorID != nil {
			if err := requireExists(ctx, tx.UserExists, *dto.SupervisorID, internal.ErrSupervisorNotFound); err != nil {
				return err
			}
		}

		hash, err := s.hasher.Hash(dto.Password)
		if err != nil {
			if errors.Is(err, ErrPasswordTooLong) {
				return internal.NewValidationFieldError("body.password", "password must not exceed 72 bytes")
			}
			return internal.NewInternalError("failed to hash password", err)
		}

		u := &userDatamodel.User{
			Name:         dto.Name,
			Email:        dto.Email,
			PasswordHash: hash,
			IsActive:     true,
			HiringDate:   hiringDate,
			PositionID:   dto.PositionID,
			DepartmentID: dto.DepartmentID,
			SupervisorID: dto.SupervisorID,
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return internal.ErrDuplicateEmail
			}
			return internal.NewInternalError("failed to create user", err)
		}

		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", created.ID)
	s.publish(ctx, events.NewUserRegistered(created.ID, created.Email))

	return user.FromDataModel(created), nil
}

// GetMe loads the caller's safe view.
func (s *Service) GetMe(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	roles, err := s.repo.GetRoleNames(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load roles", err)
	}
	return user.FromDataModelWithRoles(u, roles), nil
}

// Authenticate verifies a raw token and returns the principal it names.
func (s *Service) Authenticate(token string) (*internal.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			return nil, internal.ErrTokenExpired
		case errors.Is(err, ErrMissingSecret):
			return nil, internal.NewInternalError("token verification unavailable", err)
		default:
			return nil, internal.ErrInvalidToken
		}
	}

	return &internal.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func requireExists(ctx context.Context, exists func(context.Context, int64) (bool, error), id int64, notFound *internal.AppError) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to check reference", err)
	}
	if !ok {
		return notFound
	}
	return nil
}
