package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "tts", MaxFailures: 2, Timeout: time.Minute})
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, "open", cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestIgnoredErrorsDoNotTrip(t *testing.T) {
	terminal := errors.New("no audio")
	cb := NewCircuitBreaker(Settings{
		Name:         "tts",
		MaxFailures:  1,
		Timeout:      time.Minute,
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, terminal) },
	})

	assert.ErrorIs(t, cb.Execute(func() error { return terminal }), terminal)
	assert.Equal(t, "closed", cb.State())
}

func TestStateChangeCallback(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(Settings{
		Name:        "image",
		MaxFailures: 1,
		Timeout:     time.Minute,
		OnStateChange: func(name, from, to string) {
			transitions = append(transitions, name+":"+from+"->"+to)
		},
	})

	_ = cb.Execute(func() error { return errors.New("down") })
	assert.Equal(t, []string{"image:closed->open"}, transitions)
}
