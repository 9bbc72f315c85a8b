package organization

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	"github.com/frahmantamala/projecthub/internal/core/store"
)

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

func (s *Service) CreatePosition(ctx context.Context, dto CreateDTO) (*Position, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	p := &Position{Name: dto.Name, Description: dto.Description}
	if err := s.repo.CreatePosition(ctx, p); err != nil {
		return nil, classify(err, internal.ErrPositionNotFound, "failed to create position")
	}
	s.logger.InfoContext(ctx, "position created", "position_id", p.ID)
	return p, nil
}

func (s *Service) GetPosition(ctx context.Context, id int64) (*Position, error) {
	p, err := s.repo.GetPosition(ctx, id)
	if err != nil {
		return nil, classify(err, internal.ErrPositionNotFound, "failed to get position")
	}
	return p, nil
}

func (s *Service) ListPositions(ctx context.Context, page store.Page) (store.PageResult[Position], error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListPositions(ctx, page)
	if err != nil {
		return store.PageResult[Position]{}, internal.NewInternalError("failed to list positions", err)
	}
	return store.NewPageResult(rows, total, page), nil
}

func (s *Service) UpdatePosition(ctx context.Context, id int64, dto UpdateDTO) (*Position, error) {
	dto.trim()
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	p, err := s.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	dto.apply(&p.Name, &p.Description)

	if err := s.repo.UpdatePosition(ctx, p); err != nil {
		return nil, classify(err, internal.ErrPositionNotFound, "failed to update position")
	}
	return p, nil
}

// DeletePosition fails with a conflict while any user still holds the position.
func (s *Service) DeletePosition(ctx context.Context, id int64) error {
	if err := s.repo.DeletePosition(ctx, id); err != nil {
		return classify(err, internal.ErrPositionNotFound, "failed to delete position")
	}
	s.logger.InfoContext(ctx, "position deleted", "position_id", id)
	return nil
}

func (s *Service) CreateDepartment(ctx context.Context, dto CreateDTO) (*Department, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	d := &Department{Name: dto.Name, Description: dto.Description}
	if err := s.repo.CreateDepartment(ctx, d); err != nil {
		return nil, classify(err, internal.ErrDepartmentNotFound, "failed to create department")
	}
	s.logger.InfoContext(ctx, "department created", "department_id", d.ID)
	return d, nil
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	d, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, classify(err, internal.ErrDepartmentNotFound, "failed to get department")
	}
	return d, nil
}

func (s *Service) ListDepartments(ctx context.Context, page store.Page) (store.PageResult[Department], error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListDepartments(ctx, page)
	if err != nil {
		return store.PageResult[Department]{}, internal.NewInternalError("failed to list departments", err)
	}
	return store.NewPageResult(rows, total, page), nil
}

func (s *Service) UpdateDepartment(ctx context.Context, id int64, dto UpdateDTO) (*Department, error) {
	dto.trim()
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	d, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	dto.apply(&d.Name, &d.Description)

	if err := s.repo.UpdateDepartment(ctx, d); err != nil {
		return nil, classify(err, internal.ErrDepartmentNotFound, "failed to update department")
	}
	return d, nil
}

// DeleteDepartment detaches members; their department_id becomes null.
func (s *Service) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return classify(err, internal.ErrDepartmentNotFound, "failed to delete department")
	}
	s.logger.InfoContext(ctx, "department deleted", "department_id", id)
	return nil
}

func classify(err error, notFound *internal.AppError, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrDuplicate):
		return internal.ErrDuplicateName.WithCause(err)
	case errors.Is(err, store.ErrReferenced):
		return internal.ErrResourceInUse.WithCause(err)
	}
	return internal.NewInternalError(msg, err)
}

func (d *UpdateDTO) trim() {
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		d.Name = &name
	}
}

func (d UpdateDTO) apply(name, description *string) {
	if d.Name != nil {
		*name = *d.Name
	}
	if d.Description != nil {
		*description = *d.Description
	}
}
