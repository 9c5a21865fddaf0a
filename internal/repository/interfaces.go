package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailTaken  = errors.New("email already registered")
	ErrDuplicateID = errors.New("user id already exists")
)

// UserRepository persists whole user records. Every backend returns copies:
// mutating a loaded user has no effect until it is saved.
type UserRepository interface {
	Load(ctx context.Context, id string) (*model.User, error)
	// Save overwrites an existing record
	Save(ctx context.Context, user *model.User) error
	// Create inserts a new record; emails are unique and case-sensitive
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Ping(ctx context.Context) error
	Close() error
}
