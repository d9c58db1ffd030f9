package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bloghub/internal/middleware"
	"bloghub/internal/service"
)

// Users groups the public profile, follow and user administration
// handlers.
type Users struct {
	svc *service.UserService
	log *zap.Logger
}

// NewUsers creates a new Users handler group.
func NewUsers(svc *service.UserService, log *zap.Logger) *Users {
	return &Users{svc: svc, log: log}
}

type adminUserRequest struct {
	Name    *string `json:"name" validate:"omitnil,min=1,max=100"`
	Email   *string `json:"email" validate:"omitnil,email,max=254"`
	IsAdmin *bool   `json:"isAdmin"`
}

// List handles GET /api/users.
func (u *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := u.svc.List(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	writeData(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}.
func (u *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "User")
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	profile, err := u.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

// Update handles PUT /api/users/{id}.
func (u *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "User")
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	var req adminUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, u.log, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, u.log, err)
		return
	}

	user, err := u.svc.AdminUpdate(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, service.AdminUserUpdate(req))
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (u *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "User")
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	if err := u.svc.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		writeError(w, r, u.log, err)
		return
	}
	writeMessage(w, "User deleted successfully")
}

// Follow handles POST /api/users/{id}/follow.
func (u *Users) Follow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "User")
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	if err := u.svc.Follow(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		writeError(w, r, u.log, err)
		return
	}
	writeMessage(w, "User followed")
}

// Unfollow handles POST /api/users/{id}/unfollow.
func (u *Users) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "User")
	if err != nil {
		writeError(w, r, u.log, err)
		return
	}
	if err := u.svc.Unfollow(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		writeError(w, r, u.log, err)
		return
	}
	writeMessage(w, "User unfollowed")
}
