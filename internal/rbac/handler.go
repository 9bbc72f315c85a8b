package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/projecthub/internal/core/store"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type ServiceAPI interface {
	CreateRole(ctx context.Context, dto CreateDTO) (*Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	ListRoles(ctx context.Context, page store.Page) (store.PageResult[Role], error)
	UpdateRole(ctx context.Context, id int64, dto UpdateDTO) (*Role, error)
	DeleteRole(ctx context.Context, id int64) error

	CreatePermission(ctx context.Context, dto CreateDTO) (*Permission, error)
	GetPermission(ctx context.Context, id int64) (*Permission, error)
	ListPermissions(ctx context.Context, page store.Page) (store.PageResult[Permission], error)
	UpdatePermission(ctx context.Context, id int64, dto UpdateDTO) (*Permission, error)
	DeletePermission(ctx context.Context, id int64) error

	AssignRole(ctx context.Context, dto AssignRoleDTO) (*UserRole, error)
	GetUserRole(ctx context.Context, id int64) (*UserRole, error)
	ListUserRoles(ctx context.Context, page store.Page, userID int64) (store.PageResult[UserRole], error)
	RevokeRole(ctx context.Context, id int64) error

	GrantPermission(ctx context.Context, dto GrantPermissionDTO) (*RolePermission, error)
	GetRolePermission(ctx context.Context, id int64) (*RolePermission, error)
	ListRolePermissions(ctx context.Context, page store.Page, roleID int64) (store.PageResult[RolePermission], error)
	RevokePermission(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	role, err := h.Service.CreateRole(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	role, err := h.Service.GetRole(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.ListRoles(r.Context(), h.ParsePage(r))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	var dto UpdateDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	role, err := h.Service.UpdateRole(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	h.destroy(w, r, h.Service.DeleteRole)
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	perm, err := h.Service.CreatePermission(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, perm)
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	perm, err := h.Service.GetPermission(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perm)
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.ListPermissions(r.Context(), h.ParsePage(r))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	var dto UpdateDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	perm, err := h.Service.UpdatePermission(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perm)
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	h.destroy(w, r, h.Service.DeletePermission)
}

// AssignRole handles POST /user-roles
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignRoleDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	ur, err := h.Service.AssignRole(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, ur)
}

func (h *Handler) GetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	ur, err := h.Service.GetUserRole(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ur)
}

// ListUserRoles handles GET /user-roles?user_id=
func (h *Handler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.ListUserRoles(r.Context(), h.ParsePage(r), h.ParseInt64Query(r, "user_id"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	h.destroy(w, r, h.Service.RevokeRole)
}

// GrantPermission handles POST /role-permissions
func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	var dto GrantPermissionDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	rp, err := h.Service.GrantPermission(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, rp)
}

func (h *Handler) GetRolePermission(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	rp, err := h.Service.GetRolePermission(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rp)
}

// ListRolePermissions handles GET /role-permissions?role_id=
func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.ListRolePermissions(r.Context(), h.ParsePage(r), h.ParseInt64Query(r, "role_id"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	h.destroy(w, r, h.Service.RevokePermission)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request, del func(context.Context, int64) error) {
	id, err := h.ParseID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if err := del(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteNoContent(w)
}
