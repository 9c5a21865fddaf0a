package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
)

const uniqueViolation = "23505"

type userRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Profile   []byte    `db:"profile"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) user() (*model.User, error) {
	var u model.User
	if err := json.Unmarshal(r.Profile, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", r.ID, err)
	}
	u.ID = r.ID
	u.Email = r.Email
	return &u, nil
}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository stores each user as one jsonb document keyed by id, with
// email kept in its own unique column.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`

	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, user.ID, user.Email, profile, time.Now())
	err = mapError(err)
	if errors.Is(err, repository.ErrDuplicateID) && r.emailExists(ctx, user.Email) {
		return repository.ErrEmailTaken
	}
	return err
}

func (r *userRepository) Load(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, email, profile, updated_at FROM users WHERE id = $1`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.user()
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, profile, updated_at FROM users WHERE email = $1`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return row.user()
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			email = $1,
			profile = $2,
			updated_at = $3
		WHERE id = $4
	`

	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, user.Email, profile, time.Now(), user.ID)
	if err != nil {
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT id, email, profile, updated_at FROM users ORDER BY created_at, id`

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.user()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepository) emailExists(ctx context.Context, email string) bool {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
	return err == nil && exists
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *userRepository) Close() error {
	return r.db.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if pqErr.Constraint == "users_pkey" {
			return repository.ErrDuplicateID
		}
		return repository.ErrEmailTaken
	}
	return fmt.Errorf("failed to write user: %w", err)
}
