package rbac

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	"github.com/frahmantamala/projecthub/internal/core/events"
	"github.com/frahmantamala/projecthub/internal/core/store"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService wires the authorization graph. publisher may be nil.
func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ----------------- ROLES -----------------

func (s *Service) CreateRole(ctx context.Context, dto CreateDTO) (*Role, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	role := &Role{Name: dto.Name, Description: dto.Description}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, classify(err, internal.ErrRoleNotFound, internal.ErrDuplicateName, "failed to create role")
	}

	s.logger.InfoContext(ctx, "role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, classify(err, internal.ErrRoleNotFound, internal.ErrDuplicateName, "failed to get role")
	}
	return role, nil
}

func (s *Service) ListRoles(ctx context.Context, page store.Page) (store.PageResult[Role], error) {
	page = page.Normalize()
	roles, total, err := s.repo.ListRoles(ctx, page)
	if err != nil {
		return store.PageResult[Role]{}, internal.NewInternalError("failed to list roles", err)
	}
	return store.NewPageResult(roles, total, page), nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto UpdateDTO) (*Role, error) {
	dto.trim()
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(&role.Name, &role.Description, dto)

	if err := s.repo.UpdateRole(ctx, role); err != nil {
		return nil, classify(err, internal.ErrRoleNotFound, internal.ErrDuplicateName, "failed to update role")
	}
	return role, nil
}

// DeleteRole removes the role together with its assignments and grants.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return classify(err, internal.ErrRoleNotFound, internal.ErrResourceInUse, "failed to delete role")
	}
	s.logger.InfoContext(ctx, "role deleted", "role_id", id)
	return nil
}

// ----------------- PERMISSIONS -----------------

func (s *Service) CreatePermission(ctx context.Context, dto CreateDTO) (*Permission, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	perm := &Permission{Name: dto.Name, Description: dto.Description}
	if err := s.repo.CreatePermission(ctx, perm); err != nil {
		return nil, classify(err, internal.ErrPermissionNotFound, internal.ErrDuplicateName, "failed to create permission")
	}

	s.logger.InfoContext(ctx, "permission created", "permission_id", perm.ID, "name", perm.Name)
	return perm, nil
}

func (s *Service) GetPermission(ctx context.Context, id int64) (*Permission, error) {
	perm, err := s.repo.GetPermission(ctx, id)
	if err != nil {
		return nil, classify(err, internal.ErrPermissionNotFound, internal.ErrDuplicateName, "failed to get permission")
	}
	return perm, nil
}

func (s *Service) ListPermissions(ctx context.Context, page store.Page) (store.PageResult[Permission], error) {
	page = page.Normalize()
	perms, total, err := s.repo.ListPermissions(ctx, page)
	if err != nil {
		return store.PageResult[Permission]{}, internal.NewInternalError("failed to list permissions", err)
	}
	return store.NewPageResult(perms, total, page), nil
}

func (s *Service) UpdatePermission(ctx context.Context, id int64, dto UpdateDTO) (*Permission, error) {
	dto.trim()
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	perm, err := s.GetPermission(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(&perm.Name, &perm.Description, dto)

	if err := s.repo.UpdatePermission(ctx, perm); err != nil {
		return nil, classify(err, internal.ErrPermissionNotFound, internal.ErrDuplicateName, "failed to update permission")
	}
	return perm, nil
}

func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	if err := s.repo.DeletePermission(ctx, id); err != nil {
		return classify(err, internal.ErrPermissionNotFound, internal.ErrResourceInUse, "failed to delete permission")
	}
	s.logger.InfoContext(ctx, "permission deleted", "permission_id", id)
	return nil
}

// ----------------- USER ROLES -----------------

// AssignRole links a user to a role. A pair can be assigned only once.
func (s *Service) AssignRole(ctx context.Context, dto AssignRoleDTO) (*UserRole, error) {
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, dto.UserID); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, dto.RoleID); err != nil {
		return nil, err
	}

	ur := &UserRole{UserID: dto.UserID, RoleID: dto.RoleID}
	if err := s.repo.CreateUserRole(ctx, ur); err != nil {
		if errors.Is(err, store.ErrReferenced) {
			return nil, s.vanishedEndpoint(ctx, err, s.requireUser, dto.UserID, s.requireRole, dto.RoleID)
		}
		return nil, classify(err, internal.ErrUserRoleNotFound, internal.ErrDuplicateAssignment, "failed to assign role")
	}

	s.logger.InfoContext(ctx, "role assigned", "user_id", ur.UserID, "role_id", ur.RoleID)
	s.publish(ctx, events.NewRoleAssigned(ur.UserID, ur.RoleID))
	return ur, nil
}

func (s *Service) GetUserRole(ctx context.Context, id int64) (*UserRole, error) {
	ur, err := s.repo.GetUserRole(ctx, id)
	if err != nil {
		return nil, classify(err, internal.ErrUserRoleNotFound, internal.ErrDuplicateAssignment, "failed to get user role")
	}
	return ur, nil
}

func (s *Service) ListUserRoles(ctx context.Context, page store.Page, userID int64) (store.PageResult[UserRole], error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListUserRoles(ctx, page, userID)
	if err != nil {
		return store.PageResult[UserRole]{}, internal.NewInternalError("failed to list user roles", err)
	}
	return store.NewPageResult(rows, total, page), nil
}

func (s *Service) RevokeRole(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUserRole(ctx, id); err != nil {
		return classify(err, internal.ErrUserRoleNotFound, internal.ErrDuplicateAssignment, "failed to revoke role")
	}
	s.logger.InfoContext(ctx, "role revoked", "user_role_id", id)
	return nil
}

// ----------------- ROLE PERMISSIONS -----------------

// GrantPermission links a role to a permission. A pair can be granted only once.
func (s *Service) GrantPermission(ctx context.Context, dto GrantPermissionDTO) (*RolePermission, error) {
	if err := validation.Struct("body", dto); err != nil {
		return nil, err
	}

	if err := s.requireRole(ctx, dto.RoleID); err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, dto.PermissionID); err != nil {
		return nil, err
	}

	rp := &RolePermission{RoleID: dto.RoleID, PermissionID: dto.PermissionID}
	if err := s.repo.CreateRolePermission(ctx, rp); err != nil {
		if errors.Is(err, store.ErrReferenced) {
			return nil, s.vanishedEndpoint(ctx, err, s.requireRole, dto.RoleID, s.requirePermission, dto.PermissionID)
		}
		return nil, classify(err, internal.ErrRolePermissionNotFound, internal.ErrDuplicateAssignment, "failed to grant permission")
	}

	s.logger.InfoContext(ctx, "permission granted", "role_id", rp.RoleID, "permission_id", rp.PermissionID)
	s.publish(ctx, events.NewPermissionGranted(rp.RoleID, rp.PermissionID))
	return rp, nil
}

func (s *Service) GetRolePermission(ctx context.Context, id int64) (*RolePermission, error) {
	rp, err := s.repo.GetRolePermission(ctx, id)
	if err != nil {
		return nil, classify(err, internal.ErrRolePermissionNotFound, internal.ErrDuplicateAssignment, "failed to get role permission")
	}
	return rp, nil
}

func (s *Service) ListRolePermissions(ctx context.Context, page store.Page, roleID int64) (store.PageResult[RolePermission], error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListRolePermissions(ctx, page, roleID)
	if err != nil {
		return store.PageResult[RolePermission]{}, internal.NewInternalError("failed to list role permissions", err)
	}
	return store.NewPageResult(rows, total, page), nil
}

func (s *Service) RevokePermission(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRolePermission(ctx, id); err != nil {
		return classify(err, internal.ErrRolePermissionNotFound, internal.ErrDuplicateAssignment, "failed to revoke permission")
	}
	s.logger.InfoContext(ctx, "permission revoked", "role_permission_id", id)
	return nil
}

// ----------------- GRAPH -----------------

// PermissionsForUser resolves user -> roles -> permissions, sorted and distinct.
func (s *Service) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	names, err := s.repo.PermissionNamesForUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}
	return names, nil
}

func (s *Service) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	names, err := s.repo.RoleNamesForUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve roles", err)
	}
	return names, nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to check user", err)
	}
	if !ok {
		return internal.ErrUserNotFound
	}
	return nil
}

func (s *Service) requireRole(ctx context.Context, id int64) error {
	_, err := s.GetRole(ctx, id)
	return err
}

func (s *Service) requirePermission(ctx context.Context, id int64) error {
	_, err := s.GetPermission(ctx, id)
	return err
}

// vanishedEndpoint explains a foreign key failure on a link insert: one side was
// deleted after it was checked. It reports whichever side is now missing.
func (s *Service) vanishedEndpoint(ctx context.Context, cause error,
	first func(context.Context, int64) error, firstID int64,
	second func(context.Context, int64) error, secondID int64,
) error {
	if err := first(ctx, firstID); err != nil {
		return err
	}
	if err := second(ctx, secondID); err != nil {
		return err
	}
	return internal.NewInternalError("link insert violated a foreign key", cause)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// classify maps store sentinels onto app errors: missing rows to notFound and
// unique or restrict violations to conflict. Anything else is an internal failure.
func classify(err error, notFound, conflict *internal.AppError, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrReferenced):
		return conflict.WithCause(err)
	}
	return internal.NewInternalError(msg, err)
}

func applyUpdate(name, description *string, dto UpdateDTO) {
	if dto.Name != nil {
		*name = *dto.Name
	}
	if dto.Description != nil {
		*description = *dto.Description
	}
}
