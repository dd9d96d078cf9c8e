package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/application/views"
	"forum-api/domain/config"
	"forum-api/domain/core/entities"
	"forum-api/domain/core/valueobjects"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
	"forum-api/pkg/utils"
)

// Messages returned by the password reset flow
const (
	ResetRequestedMessage = "If an account with that email exists, a password reset link has been sent"
	ResetCompleteMessage  = "Password has been reset successfully"
)

// AuthPayload is returned by register and login
type AuthPayload struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      views.UserView `json:"user"`
}

// RegisterInput carries the fields of a new account
type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// AuthService handles accounts and credentials. It works on the store
// directly rather than through the command bus.
type AuthService struct {
	store        ports.Store
	hasher       ports.PasswordHasher
	tokens       ports.TokenIssuer
	mailer       ports.Mailer
	eventBus     ports.EventBus
	domain       *config.DomainConfig
	views        *views.Materializer
	now          ports.Clock
	resetURLBase string
	logger       *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(
	store ports.Store,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	mailer ports.Mailer,
	eventBus ports.EventBus,
	domain *config.DomainConfig,
	now ports.Clock,
	resetURLBase string,
	logger *zap.Logger,
) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		store:        store,
		hasher:       hasher,
		tokens:       tokens,
		mailer:       mailer,
		eventBus:     eventBus,
		domain:       domain,
		views:        views.NewMaterializer(now),
		now:          now,
		resetURLBase: resetURLBase,
		logger:       logger,
	}
}

// Register creates an account and signs the new user in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthPayload, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	existing, err := s.store.Count(ctx, abstractions.CollectionUsers, abstractions.QueryCriteria{
		AnyOf: [][]abstractions.Filter{
			{abstractions.Eq(abstractions.FieldEmail, email)},
			{abstractions.Eq(abstractions.FieldUsername, username)},
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check existing users")
	}
	if existing > 0 {
		return nil, pkgerrors.NewConflictError("User already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user, err := entities.NewUser(valueobjects.NewEntityID(), in.FirstName, in.LastName, username, email, hash, s.domain, s.now())
	if err != nil {
		return nil, err
	}
	doc := abstractions.FromUser(user)
	if err := s.store.Insert(ctx, abstractions.CollectionUsers, doc); err != nil {
		if pkgerrors.IsConflict(err) {
			// lost a race with a concurrent registration
			return nil, pkgerrors.NewConflictError("User already exists").WithCause(err)
		}
		return nil, err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishBatch(ctx, user.GetUncommittedEvents()); err != nil {
			s.logger.Warn("Failed to publish registration event", zap.String("user_id", user.ID.String()), zap.Error(err))
		} else {
			user.MarkEventsAsCommitted()
		}
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.payload(doc)
}

// Login exchanges an email and password for a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	invalid := pkgerrors.NewUnauthorizedError("Invalid credentials")

	user, err := s.findOne(ctx, abstractions.FieldEmail, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if err := s.hasher.Compare(user.String(abstractions.FieldPassword), password); err != nil {
		s.logger.Debug("Login rejected", zap.String("user_id", user.ID()))
		return nil, invalid
	}
	return s.payload(user)
}

// RequestPasswordReset stores a reset token for the account and mails it.
// The answer is the same whether or not the email belongs to an account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.findOne(ctx, abstractions.FieldEmail, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return ResetRequestedMessage, nil
	}

	token := uuid.NewString()
	expires := s.now().Add(s.domain.ResetTokenTTL).UTC()
	if err := s.store.UpdateByID(ctx, abstractions.CollectionUsers, user.ID(), abstractions.Document{
		abstractions.FieldResetPasswordToken:   hashToken(token),
		abstractions.FieldResetPasswordExpires: expires,
		abstractions.FieldUpdatedAt:            s.now().UTC(),
	}); err != nil {
		return "", err
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, email, s.resetURL(token)); err != nil {
			s.logger.Error("Failed to send password reset email", zap.String("user_id", user.ID()), zap.Error(err))
		}
	}
	return ResetRequestedMessage, nil
}

// ResetPassword replaces the password of the account holding token. A token
// works once.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	invalid := pkgerrors.NewValidationError("Password reset token is invalid or has expired")
	if strings.TrimSpace(token) == "" {
		return "", invalid
	}
	if err := s.checkPassword(newPassword); err != nil {
		return "", err
	}

	user, err := s.findOne(ctx, abstractions.FieldResetPasswordToken, hashToken(token))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", invalid
	}
	expires, ok := user.Time(abstractions.FieldResetPasswordExpires)
	if !ok || !s.now().Before(expires) {
		return "", invalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to hash password").WithCause(err)
	}
	if err := s.store.UpdateByID(ctx, abstractions.CollectionUsers, user.ID(), abstractions.Document{
		abstractions.FieldPassword:             hash,
		abstractions.FieldResetPasswordToken:   nil,
		abstractions.FieldResetPasswordExpires: nil,
		abstractions.FieldUpdatedAt:            s.now().UTC(),
	}); err != nil {
		return "", err
	}

	s.logger.Info("Password reset", zap.String("user_id", user.ID()))
	return ResetCompleteMessage, nil
}

func (s *AuthService) payload(user abstractions.Document) (*AuthPayload, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID(), user.String(abstractions.FieldEmail))
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to issue token").WithCause(err)
	}
	return &AuthPayload{Token: token, ExpiresAt: expiresAt, User: s.views.User(user)}, nil
}

func (s *AuthService) findOne(ctx context.Context, field, value string) (abstractions.Document, error) {
	docs, err := s.store.Find(ctx, abstractions.CollectionUsers, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{abstractions.Eq(field, value)},
		Limit:   1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to look up user")
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (s *AuthService) checkPassword(password string) error {
	if len(password) < s.domain.MinPasswordLength {
		return pkgerrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", s.domain.MinPasswordLength))
	}
	return nil
}

func (s *AuthService) resetURL(token string) string {
	if s.resetURLBase == "" {
		return token
	}
	return s.resetURLBase + "?token=" + url.QueryEscape(token)
}

// hashToken returns the form of a reset token kept on the user document
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
