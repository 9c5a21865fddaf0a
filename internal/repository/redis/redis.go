package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
)

type Config struct {
	URL          string
	KeyPrefix    string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// NewClient parses the URL, applies pool settings and checks the connection
func NewClient(ctx context.Context, config Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pooling
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.RetryBackoff > 0 {
		opts.MinRetryBackoff = config.RetryBackoff
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Store keeps each user as a JSON document with an email index:
//
//	<prefix>:user:<id>          user JSON
//	<prefix>:user-email:<email> user id
//	<prefix>:users              ids in creation order
type Store struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "popdoc"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) userKey(id string) string     { return s.prefix + ":user:" + id }
func (s *Store) emailKey(email string) string { return s.prefix + ":user-email:" + email }
func (s *Store) listKey() string              { return s.prefix + ":users" }

func (s *Store) Load(ctx context.Context, id string) (*model.User, error) {
	data, err := s.client.Get(ctx, s.userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return decode(data)
}

func (s *Store) Create(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, s.emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve email: %w", err)
	}
	if !claimed {
		return repository.ErrEmailTaken
	}

	created, err := s.client.SetNX(ctx, s.userKey(user.ID), data, 0).Result()
	if err != nil || !created {
		s.releaseEmail(ctx, user.Email, user.ID)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return repository.ErrDuplicateID
	}

	if err := s.client.RPush(ctx, s.listKey(), user.ID).Err(); err != nil {
		return fmt.Errorf("failed to index user: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	key := s.userKey(user.ID)
	// claimed is set once the new email key belongs to this save
	var claimed, emailChanged bool
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		existing, err := decode(current)
		if err != nil {
			return err
		}

		emailChanged = existing.Email != user.Email
		if emailChanged {
			ok, err := tx.SetNX(ctx, s.emailKey(user.Email), user.ID, 0).Result()
			if err != nil {
				return err
			}
			if !ok {
				return repository.ErrEmailTaken
			}
			claimed = true
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if emailChanged {
				pipe.Del(ctx, s.emailKey(existing.Email))
			}
			return nil
		})
		return err
	}, key)

	if err != nil && claimed {
		s.releaseEmail(ctx, user.Email, user.ID)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrEmailTaken):
		return err
	case errors.Is(err, redis.TxFailedErr) && !emailChanged:
		// another writer got there first; last write wins
		return s.client.Set(ctx, key, data, 0).Err()
	default:
		return fmt.Errorf("failed to save user: %w", err)
	}
}

// releaseScript deletes an email key only while it still names the given user
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (s *Store) releaseEmail(ctx context.Context, email, id string) {
	releaseScript.Run(context.WithoutCancel(ctx), s.client, []string{s.emailKey(email)}, id)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return s.Load(ctx, id)
}

func (s *Store) List(ctx context.Context) ([]*model.User, error) {
	ids, err := s.client.LRange(ctx, s.listKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.userKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	users := make([]*model.User, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		u, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func decode(data []byte) (*model.User, error) {
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &u, nil
}
