package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	all := r.List()
	require.Len(t, all, 30)
	assert.Equal(t, "mccoy", all[0].ID)
	assert.Equal(t, "nefarious", all[len(all)-1].ID)

	mccoy, ok := r.Get("mccoy")
	require.True(t, ok)
	assert.Equal(t, `Leonard "Bones" McCoy`, mccoy.Name)
	assert.Equal(t, "/avatars/mccoy.png", mccoy.Avatar)
	assert.Equal(t, "en-US-Wavenet-D", mccoy.Voice.ProviderVoiceID)
	assert.Equal(t, "Josh", mccoy.Voice.FallbackVoiceID)

	// only personas with an explicit ElevenLabs voice carry one; the rest use the default
	crusher, ok := r.Get("crusher")
	require.True(t, ok)
	assert.Empty(t, crusher.Voice.FallbackVoiceID)
	zoidberg, ok := r.Get("zoidberg")
	require.True(t, ok)
	assert.Equal(t, "Adam", zoidberg.Voice.FallbackVoiceID)

	_, ok = r.Get("not-a-real-id")
	assert.False(t, ok)
}

func TestEveryDefaultDoctorIsComplete(t *testing.T) {
	for _, d := range Default().List() {
		assert.NotEmpty(t, d.Name, d.ID)
		assert.NotEmpty(t, d.Bio, d.ID)
		assert.NotEmpty(t, d.Specialty, d.ID)
		assert.Greater(t, d.Voice.Pitch, 0.0, d.ID)
		assert.Greater(t, d.Voice.Rate, 0.0, d.ID)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]model.Doctor{{ID: "house"}, {ID: "house"}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewRegistry([]model.Doctor{{ID: ""}})
	assert.Error(t, err)
}

func TestListReturnsCopy(t *testing.T) {
	r := Default()
	list := r.List()
	list[0].Name = "changed"

	d, _ := r.Get(list[0].ID)
	assert.NotEqual(t, "changed", d.Name)
}
