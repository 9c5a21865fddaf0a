package cached

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
)

// Store is a write-through cache in front of another repository. Reads by id
// and email are served from memory until the entry expires.
type Store struct {
	next  repository.UserRepository
	cache *cache.Cache
}

func New(next repository.UserRepository, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func idKey(id string) string       { return "id:" + id }
func emailKey(email string) string { return "email:" + email }

func (s *Store) remember(u *model.User) {
	c := u.Clone()
	s.cache.SetDefault(idKey(c.ID), c)
	s.cache.SetDefault(emailKey(c.Email), c.ID)
}

func (s *Store) Load(ctx context.Context, id string) (*model.User, error) {
	if v, ok := s.cache.Get(idKey(id)); ok {
		return v.(*model.User).Clone(), nil
	}
	u, err := s.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.remember(u)
	return u, nil
}

func (s *Store) Save(ctx context.Context, user *model.User) error {
	if v, ok := s.cache.Get(idKey(user.ID)); ok {
		if old := v.(*model.User); old.Email != user.Email {
			s.cache.Delete(emailKey(old.Email))
		}
	}
	if err := s.next.Save(ctx, user); err != nil {
		s.cache.Delete(idKey(user.ID))
		return err
	}
	s.remember(user)
	return nil
}

func (s *Store) Create(ctx context.Context, user *model.User) error {
	if err := s.next.Create(ctx, user); err != nil {
		return err
	}
	s.remember(user)
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if v, ok := s.cache.Get(emailKey(email)); ok {
		if u, err := s.Load(ctx, v.(string)); err == nil && u.Email == email {
			return u, nil
		}
		s.cache.Delete(emailKey(email))
	}
	u, err := s.next.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.remember(u)
	return u, nil
}

// List always reads through; it is only used by background jobs
func (s *Store) List(ctx context.Context) ([]*model.User, error) {
	return s.next.List(ctx)
}

func (s *Store) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

func (s *Store) Close() error {
	s.cache.Flush()
	return s.next.Close()
}
