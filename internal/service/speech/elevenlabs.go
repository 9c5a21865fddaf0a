package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

const (
	elevenLabsAPIURL  = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModel   = "eleven_multilingual_v2"
	defaultElevenName = "Josh"
)

// premade ElevenLabs voices by display name
var elevenLabsVoices = map[string]string{
	"rachel":  "21m00Tcm4TlvDq8ikWAM",
	"adam":    "pNInz6obpgDQGcFmaJgB",
	"josh":    "TxGEqnHWrfWFTfGW9XjX",
	"sarah":   "EXAVITQu4vr4xMQ9i8j7",
	"sam":     "yoZ06aMxZJJ28mfd3POQ",
	"charlie": "IKne3meq5aSn9XLyUdCD",
	"george":  "JBFqnCBsd6RMkjVDRZzb",
	"lily":    "pFZP5JQG7iQjIQuC4Bku",
	"chris":   "iP95p4xoKVk53GoZ742B",
	"james":   "ZQe5CZNOzWyzPSCn5a3c",
}

type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string
	ModelID string
	// DefaultVoice is used when a doctor has no fallback voice
	DefaultVoice string
	Timeout      time.Duration
}

type ElevenLabsProvider struct {
	cfg        ElevenLabsConfig
	httpClient *http.Client
}

func NewElevenLabsProvider(cfg ElevenLabsConfig, httpClient *http.Client) *ElevenLabsProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = elevenLabsAPIURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = elevenLabsModel
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = defaultElevenName
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &ElevenLabsProvider{cfg: cfg, httpClient: httpClient}
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

// VoiceID resolves a premade voice name to its id. Strings shaped like a
// voice id pass through; any other unknown name falls back to Josh.
func VoiceID(name string) string {
	if id, ok := elevenLabsVoices[strings.ToLower(name)]; ok {
		return id
	}
	if looksLikeVoiceID(name) {
		return name
	}
	return elevenLabsVoices[strings.ToLower(defaultElevenName)]
}

func looksLikeVoiceID(s string) bool {
	if len(s) != 20 {
		return false
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

type elevenLabsRequest struct {
	Text          string `json:"text"`
	ModelID       string `json:"model_id"`
	VoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	} `json:"voice_settings"`
}

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string, voice model.VoiceParams) ([]byte, error) {
	name := voice.FallbackVoiceID
	if name == "" {
		name = p.cfg.DefaultVoice
	}
	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(p.cfg.BaseURL, "/"), VoiceID(name))

	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: p.cfg.ModelID,
	}
	reqBody.VoiceSettings.Stability = 0.5
	reqBody.VoiceSettings.SimilarityBoost = 0.75

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", p.cfg.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("TTS API error: %s - %s", resp.Status, string(body))
	}

	return io.ReadAll(resp.Body)
}
