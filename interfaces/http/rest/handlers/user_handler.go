package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	pkgerrors "forum-api/pkg/errors"
)

// UserHandler serves user profiles
type UserHandler struct {
	forum Forum
	errs  *pkgerrors.ErrorHandler
}

// NewUserHandler creates a new user handler
func NewUserHandler(forum Forum, errs *pkgerrors.ErrorHandler) *UserHandler {
	return &UserHandler{forum: forum, errs: errs}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.forum.GetAllUsers(r.Context())
	respond(w, r, h.errs, http.StatusOK, users, err)
}

// GetUser handles GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.forum.GetUserProfile(r.Context(), chi.URLParam(r, "userID"))
	respond(w, r, h.errs, http.StatusOK, user, err)
}
