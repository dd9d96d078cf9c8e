package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"forum-api/application/services"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
)

// AuthHandler handles account HTTP requests
type AuthHandler struct {
	accounts Accounts
	errs     *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts Accounts, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		errs:     errs,
		logger:   logger,
	}
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest asks for a reset link
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest sets a new password with a reset token
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	payload, err := h.accounts.Register(r.Context(), req)
	respond(w, r, h.errs, http.StatusCreated, payload, err)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	payload, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	respond(w, r, h.errs, http.StatusOK, payload, err)
}

// RequestPasswordReset handles POST /auth/password-reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	message, err := h.accounts.RequestPasswordReset(r.Context(), req.Email)
	respond(w, r, h.errs, http.StatusOK, common.MessageResponse{Message: message}, err)
}

// ResetPassword handles POST /auth/password-reset/confirm
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	message, err := h.accounts.ResetPassword(r.Context(), req.Token, req.Password)
	respond(w, r, h.errs, http.StatusOK, common.MessageResponse{Message: message}, err)
}
