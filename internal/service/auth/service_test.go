package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/security"
)

func newTestService(t *testing.T) (*Service, repository.UserRepository) {
	t.Helper()
	repo := memory.New()
	svc, err := NewService(repo, security.NewBcryptHasher(bcrypt.MinCost), Config{Secret: "test-secret"})
	require.NoError(t, err)
	return svc, repo
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(memory.New(), security.NewBcryptHasher(bcrypt.MinCost), Config{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestRegisterAppliesDefaults(t *testing.T) {
	svc, repo := newTestService(t)

	user, err := svc.Register(context.Background(), "kirk@enterprise.org", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Equal(t, "kirk", user.Preferences.Nickname)
	assert.Equal(t, "they/them", user.Preferences.Pronouns)
	assert.True(t, user.Preferences.Notifications)

	stored, err := repo.Load(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, stored.Email)
}

func TestRegisterTwiceFailsWithEmailTaken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "kirk@enterprise.org", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "kirk@enterprise.org", "different456")
	require.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.Equal(t, http.StatusConflict, apperrors.As(err).StatusCode())

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegisterIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "kirk@enterprise.org", "password123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Kirk@enterprise.org", "password123")
	assert.NoError(t, err)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "kirk@enterprise.org", "short")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode())
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "test@example.com", "password123")
	require.NoError(t, err)

	token, user, err := svc.Authenticate(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)

	userID, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestAuthenticateTrimsEmailLikeRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "  uhura@enterprise.org ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "uhura@enterprise.org", registered.Email)

	token, user, err := svc.Authenticate(ctx, "  uhura@enterprise.org ", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)
}

func TestAuthenticateFailuresLookTheSame(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "test@example.com", "password123")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Authenticate(ctx, "test@example.com", "password124")
	_, _, unknownEmail := svc.Authenticate(ctx, "nobody@example.com", "password123")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, apperrors.As(wrongPassword).Message, apperrors.As(unknownEmail).Message)
	assert.Equal(t, http.StatusUnauthorized, apperrors.As(unknownEmail).StatusCode())
}

func TestTokenExpiresAfter24Hours(t *testing.T) {
	svc, _ := newTestService(t)
	issued := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return issued })

	token, err := svc.IssueToken("user-1")
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return issued.Add(23 * time.Hour) })
	_, err = svc.Resolve(context.Background(), token)
	assert.NoError(t, err)

	svc.WithClock(func() time.Time { return issued.Add(24*time.Hour + time.Second) })
	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestResolveRejectsForeignTokens(t *testing.T) {
	svc, _ := newTestService(t)

	other, err := NewService(memory.New(), security.NewBcryptHasher(bcrypt.MinCost), Config{Secret: "other-secret"})
	require.NoError(t, err)
	foreign, err := other.IssueToken("user-1")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureDemoUserIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureDemoUser(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureDemoUser(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.False(t, created)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
