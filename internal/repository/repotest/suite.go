// Package repotest holds the behaviour every UserRepository backend must share.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
)

// Factory returns an empty repository for one subtest
type Factory func(t *testing.T) repository.UserRepository

// NewUser builds a fully populated user with a unique id and email
func NewUser() *model.User {
	id := uuid.NewString()
	email := fmt.Sprintf("user-%s@example.com", id[:8])
	return &model.User{
		ID:               id,
		Email:            email,
		PasswordHash:     "$2a$10$hash",
		SelectedDoctorID: "mccoy",
		Preferences:      model.DefaultPreferences(email),
		Medications: []model.Medication{
			{ID: uuid.NewString(), Name: "Aspirin", Dosage: "100mg", Frequency: "daily", TimeOfDay: []string{model.TimeMorning}},
		},
		Appointments: []model.Appointment{
			{ID: uuid.NewString(), Title: "Checkup", Date: "2025-03-14", Time: "09:30", Location: "Sickbay"},
		},
		WellnessChecks: []model.WellnessCheck{
			{ID: uuid.NewString(), Date: "2025-03-14T09:00:00Z", Mood: 7, Sleep: 6, Energy: 5, Pain: 2},
		},
		ChatHistory: []model.ChatMessage{
			{ID: uuid.NewString(), Sender: model.SenderUser, Text: "hello", Timestamp: 1710406800000},
		},
	}
}

// Run exercises the UserRepository contract
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("create then load round trips", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser()
		require.NoError(t, repo.Create(ctx, u))

		got, err := repo.Load(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser()
		require.NoError(t, repo.Create(ctx, u))

		u.Preferences.Theme = model.ThemeDark
		u.Medications = append(u.Medications, model.Medication{ID: uuid.NewString(), Name: "Ibuprofen", Dosage: "200mg", Frequency: "as needed", TimeOfDay: []string{}})
		require.NoError(t, repo.Save(ctx, u))

		got, err := repo.Load(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("loaded records are copies", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser()
		require.NoError(t, repo.Create(ctx, u))

		got, err := repo.Load(ctx, u.ID)
		require.NoError(t, err)
		got.Medications[0].Name = "changed"

		again, err := repo.Load(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Aspirin", again.Medications[0].Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Load(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = repo.Save(ctx, &model.User{ID: "missing", Email: "missing@example.com"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("email is unique and case sensitive", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser()
		require.NoError(t, repo.Create(ctx, u))

		dup := NewUser()
		dup.Email = u.Email
		assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrEmailTaken)

		upper := NewUser()
		upper.Email = "UPPER-" + u.Email
		assert.NoError(t, repo.Create(ctx, upper))

		found, err := repo.FindByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)

		_, err = repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("same record twice reports the email first", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser()
		require.NoError(t, repo.Create(ctx, u))
		assert.ErrorIs(t, repo.Create(ctx, u), repository.ErrEmailTaken)

		sameID := NewUser()
		sameID.ID = u.ID
		assert.ErrorIs(t, repo.Create(ctx, sameID), repository.ErrDuplicateID)
	})

	t.Run("changing email frees the old address", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser()
		require.NoError(t, repo.Create(ctx, u))

		old := u.Email
		u.Email = "renamed-" + old
		require.NoError(t, repo.Save(ctx, u))

		_, err := repo.FindByEmail(ctx, old)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		found, err := repo.FindByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)

		reuse := NewUser()
		reuse.Email = old
		assert.NoError(t, repo.Create(ctx, reuse))
	})

	t.Run("list returns every user", func(t *testing.T) {
		repo := newRepo(t)
		ids := map[string]bool{}
		for i := 0; i < 3; i++ {
			u := NewUser()
			ids[u.ID] = true
			require.NoError(t, repo.Create(ctx, u))
		}

		users, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		for _, u := range users {
			assert.True(t, ids[u.ID])
		}
	})

	t.Run("concurrent saves do not corrupt the store", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser()
		require.NoError(t, repo.Create(ctx, u))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				c := u.Clone()
				c.Preferences.Nickname = fmt.Sprintf("nick-%d", n)
				assert.NoError(t, repo.Save(ctx, c))
			}(i)
		}
		wg.Wait()

		got, err := repo.Load(ctx, u.ID)
		require.NoError(t, err)
		assert.Contains(t, got.Preferences.Nickname, "nick-")
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}
