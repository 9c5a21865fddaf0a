package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
)

// Store keeps every user in one JSON array on disk. The file is read once on
// open and rewritten in full, via temp file and rename, on every mutation.
type Store struct {
	mu    sync.RWMutex
	path  string
	users []*model.User
}

// Open loads path, creating its directory when needed. A missing file is an
// empty store.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.users); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) indexByID(id string) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexByEmail(email string) int {
	for i, u := range s.users {
		if u.Email == email {
			return i
		}
	}
	return -1
}

func (s *Store) Load(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByID(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	return s.users[i].Clone(), nil
}

func (s *Store) Save(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(user.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	if j := s.indexByEmail(user.Email); j >= 0 && j != i {
		return repository.ErrEmailTaken
	}

	previous := s.users[i]
	s.users[i] = user.Clone()
	if err := s.flush(); err != nil {
		s.users[i] = previous
		return err
	}
	return nil
}

func (s *Store) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByEmail(user.Email) >= 0 {
		return repository.ErrEmailTaken
	}
	if s.indexByID(user.ID) >= 0 {
		return repository.ErrDuplicateID
	}

	s.users = append(s.users, user.Clone())
	if err := s.flush(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return err
	}
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByEmail(email)
	if i < 0 {
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

// Ping checks that the data directory is still writable
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *Store) Close() error { return nil }

// flush must be called with the write lock held
func (s *Store) flush() error {
	users := s.users
	if users == nil {
		users = []*model.User{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
