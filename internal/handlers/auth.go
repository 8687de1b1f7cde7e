package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-adopt/auth"
	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/diewo77/go-adopt/validation"
)

// Roles a user may pick at signup. The others are granted by an admin.
var signupRoles = []string{permissions.RoleAdopter, permissions.RoleDonor, permissions.RoleBoth}

// bcrypt rejects passwords longer than 72 bytes.
const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type signupInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	if _, ok := v["email"]; !ok {
		validation.Email("email", in.Email, v)
	}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.MinLen("password", in.Password, minPasswordLen, v)
	validation.MaxLen("password", in.Password, maxPasswordLen, v)
	validation.OptionalOneOf("role", in.Role, signupRoles, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	if in.Role == "" {
		in.Role = permissions.RoleAdopter
	}

	user, err := h.users.Register(r.Context(), in.Email, in.Name, in.Password, in.Role)
	if errors.Is(err, services.ErrConflict) {
		httpx.JSON(w, http.StatusConflict, httpx.ErrorResponse{Error: httpx.CodeConflict, Message: "email already registered"})
		return
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).WithField("user_id", user.ID).WithField("role", user.Role).Info("user signed up")
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}

	user, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		httpx.JSONError(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error(), nil)
		return
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.NoContent(w)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	user, err := h.users.Get(r.Context(), uid)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
