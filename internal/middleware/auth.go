package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
)

const ContextUserID = "user_id"

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrTokenFormat  = errors.New("invalid authorization format")
)

// TokenResolver maps a bearer token to a user id
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	tokens TokenResolver
}

func NewAuthMiddleware(tokens TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate requires a valid bearer token and stores the user id in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperrors.InvalidToken(ErrMissingToken))
			return
		}
		m.resolve(c, header)
	}
}

// Optional accepts anonymous requests. A token that is present must still be valid.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		m.resolve(c, header)
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context, header string) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		abort(c, apperrors.InvalidToken(ErrTokenFormat))
		return
	}

	userID, err := m.tokens.Resolve(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		abort(c, err)
		return
	}

	c.Set(ContextUserID, userID)
	c.Next()
}

// UserID returns the authenticated user id, or "" for anonymous requests
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
