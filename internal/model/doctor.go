package model

// VoiceParams describes how a doctor sounds when synthesized
type VoiceParams struct {
	ProviderVoiceID string  `json:"voice"`
	FallbackVoiceID string  `json:"elevenLabsVoice,omitempty"`
	Pitch           float64 `json:"pitch"`
	Rate            float64 `json:"rate"`
}

// Doctor is an immutable chatbot persona
type Doctor struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Avatar       string      `json:"avatar"`
	Bio          string      `json:"bio"`
	Specialty    string      `json:"specialty"`
	PrimaryColor string      `json:"primaryColor,omitempty"`
	Voice        VoiceParams `json:"voiceSettings"`
}
