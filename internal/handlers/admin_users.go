package handlers

import (
	"net/http"

	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/policy"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/diewo77/go-adopt/validation"
)

// AdminUserHandler lets an admin change user roles.
type AdminUserHandler struct {
	users    *services.UserService
	subjects policy.Invalidator
}

func NewAdminUserHandler(users *services.UserService, subjects policy.Invalidator) *AdminUserHandler {
	return &AdminUserHandler{users: users, subjects: subjects}
}

type roleInput struct {
	Role string `json:"role"`
}

// SetRole replaces the role of the user in the path.
func (h *AdminUserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var in roleInput
	if !decode(w, r, &in) {
		return
	}
	id := r.PathValue("id")
	v := validation.Violations{}
	validation.UUID("id", id, v)
	validation.OneOf("role", in.Role, permissions.Roles(), v)
	if !v.Empty() {
		invalid(w, v)
		return
	}

	user, err := h.users.SetRole(r.Context(), id, in.Role)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	h.subjects.Invalidate(id)
	logging.FromContext(r.Context()).
		WithField("target_user_id", id).
		WithField("new_role", in.Role).
		Info("user role changed")
	httpx.JSON(w, http.StatusOK, user)
}
