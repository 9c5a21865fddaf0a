package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/internal/repository/repotest"
)

// Runs against a real server when POPDOC_TEST_REDIS_URL is set.
func TestStore(t *testing.T) {
	url := os.Getenv("POPDOC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("POPDOC_TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClient(ctx, Config{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	repotest.Run(t, func(t *testing.T) repository.UserRepository {
		// a fresh prefix per subtest keeps runs isolated without FLUSHDB
		return New(client, "popdoc-test-"+uuid.NewString()[:8])
	})
}

func TestReleaseEmailOnlyDropsOwnClaim(t *testing.T) {
	url := os.Getenv("POPDOC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("POPDOC_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, Config{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	s := New(client, "popdoc-test-"+uuid.NewString()[:8])
	key := s.emailKey("a@example.com")
	require.NoError(t, client.Set(ctx, key, "owner", 0).Err())

	s.releaseEmail(ctx, "a@example.com", "someone-else")
	id, err := client.Get(ctx, key).Result()
	require.NoError(t, err)
	require.Equal(t, "owner", id)

	s.releaseEmail(ctx, "a@example.com", "owner")
	n, err := client.Exists(ctx, key).Result()
	require.NoError(t, err)
	require.Zero(t, n)
}
