package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/domain/config"
	"forum-api/infrastructure/persistence/abstractions"
	"forum-api/infrastructure/persistence/memory"
	"forum-api/pkg/auth"
	pkgerrors "forum-api/pkg/errors"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	args := m.Called(ctx, email, resetURL)
	return args.Error(0)
}

type authFixture struct {
	service *AuthService
	store   *memory.Store
	mailer  *mockMailer
	tokens  *auth.JWTManager
	now     time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := auth.NewJWTManager(auth.JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	f := &authFixture{
		store:  memory.NewStore(zap.NewNop()),
		mailer: &mockMailer{},
		tokens: tokens,
		now:    time.Now().UTC(),
	}
	clock := func() time.Time { return f.now }
	f.service = NewAuthService(f.store, auth.NewBcryptHasher(4), tokens, f.mailer, nil,
		config.DefaultDomainConfig(), clock, "https://forum.example.com/reset", zap.NewNop())
	return f
}

func (f *authFixture) register(t *testing.T) *AuthPayload {
	t.Helper()
	payload, err := f.service.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "Ada@Example.com",
		Password:  "analytical",
	})
	require.NoError(t, err)
	return payload
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	payload := f.register(t)

	assert.Equal(t, "ada@example.com", payload.User.Email)
	assert.NotEmpty(t, payload.Token)
	claims, err := f.tokens.ValidateToken(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, payload.User.ID, claims.UserID())

	stored, err := f.store.FindByID(context.Background(), abstractions.CollectionUsers, payload.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "analytical", stored.String(abstractions.FieldPassword))
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	tests := []RegisterInput{
		{FirstName: "A", LastName: "B", Username: "other", Email: "ada@example.com", Password: "secret1"},
		{FirstName: "A", LastName: "B", Username: "ada", Email: "new@example.com", Password: "secret1"},
	}
	for _, in := range tests {
		_, err := f.service.Register(context.Background(), in)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, "User already exists", pkgerrors.GetAppError(err).Message)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(context.Background(), RegisterInput{FirstName: "A", LastName: "B", Username: "abc", Email: "nope", Password: "secret1"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.service.Register(context.Background(), RegisterInput{FirstName: "A", LastName: "B", Username: "abc", Email: "a@b.co", Password: "123"})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t)
	ctx := context.Background()

	payload, err := f.service.Login(ctx, "ada@example.com", "analytical")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, payload.User.ID)

	_, err = f.service.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", pkgerrors.GetAppError(err).Message)

	_, err = f.service.Login(ctx, "nobody@example.com", "analytical")
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestAuthService_PasswordReset_SingleUse(t *testing.T) {
	// Arrange
	f := newAuthFixture(t)
	f.register(t)
	ctx := context.Background()

	var link string
	f.mailer.On("SendPasswordReset", mock.Anything, "ada@example.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { link = args.String(2) }).
		Return(nil).Once()

	// Act
	msg, err := f.service.RequestPasswordReset(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, ResetRequestedMessage, msg)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)

	msg, err = f.service.ResetPassword(ctx, token, "difference-engine")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ResetCompleteMessage, msg)
	_, err = f.service.Login(ctx, "ada@example.com", "difference-engine")
	assert.NoError(t, err)

	_, err = f.service.ResetPassword(ctx, token, "third-password")
	assert.True(t, pkgerrors.IsValidation(err), "a token works only once")
	f.mailer.AssertExpectations(t)
}

func TestAuthService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	msg, err := f.service.RequestPasswordReset(context.Background(), "ghost@example.com")

	require.NoError(t, err)
	assert.Equal(t, ResetRequestedMessage, msg)
	f.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)
	ctx := context.Background()

	var link string
	f.mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { link = args.String(2) }).
		Return(nil)
	_, err := f.service.RequestPasswordReset(ctx, "ada@example.com")
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	token := link[strings.Index(link, "token=")+len("token="):]
	_, err = f.service.ResetPassword(ctx, token, "too-late-now")

	require.Error(t, err)
	assert.Equal(t, "Password reset token is invalid or has expired", pkgerrors.GetAppError(err).Message)
}
