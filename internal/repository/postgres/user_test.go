package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/internal/repository/repotest"
)

// Runs against a real database when POPDOC_TEST_DATABASE_URL is set.
func TestUserRepository(t *testing.T) {
	url := os.Getenv("POPDOC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("POPDOC_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := NewDB(ctx, Config{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db))

	repotest.Run(t, func(t *testing.T) repository.UserRepository {
		_, err := db.ExecContext(context.Background(), `TRUNCATE users`)
		require.NoError(t, err)
		return NewUserRepository(db)
	})
}
