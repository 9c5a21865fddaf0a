package model

type ChatRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	DoctorID string `json:"doctorId" binding:"required"`
	// UseTTS defaults to true when omitted
	UseTTS        *bool `json:"useTTS"`
	UseElevenLabs bool  `json:"useElevenLabs"`
}

func (r ChatRequest) WantsSpeech() bool {
	return r.UseTTS == nil || *r.UseTTS
}

type ChatResponse struct {
	Text         string `json:"text"`
	AudioDataURI string `json:"audioDataUri,omitempty"`
}

type GenerateImageRequest struct {
	DoctorName string `json:"doctorName" binding:"required"`
	Style      string `json:"style" binding:"required"`
}

type GenerateImageResponse struct {
	ImageData string `json:"imageData"`
	ImageURL  string `json:"imageUrl,omitempty"`
}
