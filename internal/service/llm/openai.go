package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

var (
	ErrEmptyCompletion = errors.New("empty completion")
	ErrNoImageData     = errors.New("no image data returned")
)

// Config holds OpenAI settings
type Config struct {
	APIKey      string
	BaseURL     string
	ChatModel   string
	ImageModel  string
	ImageSize   string
	MaxTokens   int
	Temperature float32
}

// Client is the AI collaborator for persona replies and portraits.
type Client interface {
	Reply(ctx context.Context, doctor model.Doctor, utterance string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient calls the OpenAI API for chat completions and image generation.
type OpenAIClient struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAIClient constructs an OpenAI-backed client. httpClient may be nil.
func NewOpenAIClient(cfg Config, httpClient *http.Client) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = openai.CreateImageSize1024x1024
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		cfg:    cfg,
	}
}

// PersonaPrompt is the system prompt that keeps the model in character
func PersonaPrompt(d model.Doctor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a fictional doctor whose specialty is %s. %s\n", d.Name, d.Specialty, d.Bio)
	b.WriteString("Stay in character and answer in at most three short sentences. ")
	b.WriteString("You are a companion, not a clinician: never diagnose or prescribe, ")
	b.WriteString("and suggest seeing a real healthcare professional for anything serious.")
	return b.String()
}

// Reply returns the persona's answer to the utterance.
func (c *OpenAIClient) Reply(ctx context.Context, doctor model.Doctor, utterance string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: PersonaPrompt(doctor)},
			{Role: openai.ChatMessageRoleUser, Content: utterance},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// GenerateImage returns the base64 encoded PNG for the prompt.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.cfg.ImageModel,
		N:              1,
		Size:           c.cfg.ImageSize,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", ErrNoImageData
	}
	return resp.Data[0].B64JSON, nil
}
