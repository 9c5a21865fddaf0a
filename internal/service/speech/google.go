package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

const (
	googleTTSURL        = "https://texttospeech.googleapis.com/v1/text:synthesize"
	defaultGoogleVoice  = "en-US-Wavenet-D"
	defaultLanguageCode = "en-US"
)

type GoogleConfig struct {
	APIKey       string
	Endpoint     string
	LanguageCode string
	DefaultVoice string
	Timeout      time.Duration
}

// GoogleProvider calls the Cloud Text-to-Speech REST API
type GoogleProvider struct {
	cfg        GoogleConfig
	httpClient *http.Client
}

func NewGoogleProvider(cfg GoogleConfig, httpClient *http.Client) *GoogleProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = googleTTSURL
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = defaultLanguageCode
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = defaultGoogleVoice
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &GoogleProvider{cfg: cfg, httpClient: httpClient}
}

func (p *GoogleProvider) Name() string { return "google" }

type googleRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SSMLGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		Pitch         float64 `json:"pitch"`
		SpeakingRate  float64 `json:"speakingRate"`
	} `json:"audioConfig"`
}

type googleResponse struct {
	AudioContent string `json:"audioContent"`
}

type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GoogleProvider) Synthesize(ctx context.Context, text string, voice model.VoiceParams) ([]byte, error) {
	var reqBody googleRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = p.cfg.LanguageCode
	reqBody.Voice.Name = voice.ProviderVoiceID
	if reqBody.Voice.Name == "" {
		reqBody.Voice.Name = p.cfg.DefaultVoice
	}
	reqBody.Voice.SSMLGender = "NEUTRAL"
	reqBody.AudioConfig.AudioEncoding = "MP3"
	reqBody.AudioConfig.Pitch = voice.Pitch
	reqBody.AudioConfig.SpeakingRate = voice.Rate
	if reqBody.AudioConfig.SpeakingRate == 0 {
		reqBody.AudioConfig.SpeakingRate = 1.0
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint, err := url.Parse(p.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", p.cfg.APIKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr googleError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("TTS API error: %s - %s", resp.Status, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("TTS API error: %s - %s", resp.Status, string(body))
	}

	var out googleResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.AudioContent == "" {
		return nil, ErrNoAudioContent
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	return audio, nil
}
