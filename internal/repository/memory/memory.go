package memory

import (
	"context"
	"sync"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
)

// Store keeps users in process memory. Records are copied on the way in and
// out so callers never share state with the store.
type Store struct {
	mu      sync.RWMutex
	users   []*model.User
	byID    map[string]int
	byEmail map[string]int
}

func New(seed ...*model.User) *Store {
	s := &Store{
		byID:    make(map[string]int),
		byEmail: make(map[string]int),
	}
	for _, u := range seed {
		_ = s.insert(u)
	}
	return s
}

func (s *Store) insert(u *model.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	s.users = append(s.users, u.Clone())
	s.byID[u.ID] = len(s.users) - 1
	s.byEmail[u.Email] = len(s.users) - 1
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.users[i].Clone(), nil
}

func (s *Store) Save(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if old := s.users[i].Email; old != user.Email {
		if _, taken := s.byEmail[user.Email]; taken {
			return repository.ErrEmailTaken
		}
		delete(s.byEmail, old)
		s.byEmail[user.Email] = i
	}
	s.users[i] = user.Clone()
	return nil
}

func (s *Store) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// email is checked first so every backend reports the same conflict
	if _, ok := s.byEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	if _, ok := s.byID[user.ID]; ok {
		return repository.ErrDuplicateID
	}
	return s.insert(user)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.users[i].Clone(), nil
}

func (s *Store) List(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
