package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences("test@example.com")
	assert.Equal(t, Preferences{
		Nickname:      "test",
		Pronouns:      "they/them",
		VoiceEnabled:  false,
		Theme:         ThemeLight,
		Notifications: true,
	}, p)

	assert.Equal(t, "nobody", DefaultPreferences("nobody").Nickname)
}

func TestCloneIsDeep(t *testing.T) {
	u := &User{
		ID:          "u1",
		Medications: []Medication{{ID: "m1", TimeOfDay: []string{TimeMorning}}},
		ChatHistory: []ChatMessage{{ID: "c1", Text: "hello"}},
	}

	c := u.Clone()
	assert.Equal(t, u, c)

	c.Medications[0].TimeOfDay[0] = TimeNight
	c.ChatHistory[0].Text = "changed"
	assert.Equal(t, TimeMorning, u.Medications[0].TimeOfDay[0])
	assert.Equal(t, "hello", u.ChatHistory[0].Text)
	assert.Nil(t, c.Appointments)
}

func TestProfileOmitsPasswordHash(t *testing.T) {
	u := &User{ID: "u1", Email: "a@b.c", PasswordHash: "secret"}
	p := u.Profile()
	assert.Equal(t, "u1", p.ID)
	assert.NotNil(t, p.Medications)
	assert.NotNil(t, p.ChatHistory)
}

func TestChatRequestDefaultsToSpeech(t *testing.T) {
	off := false
	assert.True(t, ChatRequest{}.WantsSpeech())
	assert.False(t, ChatRequest{UseTTS: &off}.WantsSpeech())
}
