package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrMissingSecret      = errors.New("token signing secret is not configured")
)

// TokenExpiry is fixed; there is no refresh or revocation
const TokenExpiry = 24 * time.Hour

type Config struct {
	Secret string
	Issuer string
}

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	cfg    Config
	now    func() time.Time
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &Service{
		users:  users,
		hasher: hasher,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates a user with default preferences. Emails are stored as given.
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.Validation("email is required", nil)
	}
	if len(password) < security.MinPasswordLen {
		return nil, apperrors.Validation(security.ErrPasswordTooShort.Error(), security.ErrPasswordTooShort)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict(repository.ErrEmailTaken.Error(), repository.ErrEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Persistence(fmt.Errorf("failed to look up email: %w", err))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		Preferences:    model.DefaultPreferences(email),
		Medications:    []model.Medication{},
		Appointments:   []model.Appointment{},
		WellnessChecks: []model.WellnessCheck{},
		ChatHistory:    []model.ChatMessage{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.Conflict(err.Error(), err)
		}
		return nil, apperrors.Persistence(fmt.Errorf("failed to create user: %w", err))
	}
	return user, nil
}

// Authenticate checks credentials and issues a token. Unknown emails and
// wrong passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apperrors.Unauthorized(ErrInvalidCredentials)
		}
		return "", nil, apperrors.Persistence(fmt.Errorf("failed to look up user: %w", err))
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}
	return token, user, nil
}

// IssueToken signs an HS256 token for the user
func (s *Service) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve validates a token and returns the user id it carries
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	claims := &model.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.InvalidToken(ErrTokenExpired)
		}
		return "", apperrors.InvalidToken(fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", apperrors.InvalidToken(ErrInvalidToken)
	}
	return claims.UserID, nil
}

// EnsureDemoUser registers the demo account unless the email already exists.
// It reports whether a user was created.
func (s *Service) EnsureDemoUser(ctx context.Context, email, password string) (bool, error) {
	_, err := s.Register(ctx, email, password)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrEmailTaken) {
		return false, nil
	}
	return false, err
}
