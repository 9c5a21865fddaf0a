package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jwalitptl/popdoc-api/internal/model"
	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

// Generator produces a base64 encoded PNG from a prompt
type Generator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Publisher stores a generated portrait and returns its public URL
type Publisher interface {
	Publish(ctx context.Context, name string, png []byte) (string, error)
}

type Config struct {
	// AvatarDir receives <slug>.png copies when SaveAvatars is set
	AvatarDir   string
	SaveAvatars bool
}

type Service struct {
	gen       Generator
	publisher Publisher
	cfg       Config
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewService creates the image service. publisher and m may be nil.
func NewService(gen Generator, publisher Publisher, cfg Config, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		gen:       gen,
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
		log:       log.WithComponent("image"),
	}
}

func Prompt(doctorName, style string) string {
	return fmt.Sprintf("A portrait of %s, %s, digital art", doctorName, style)
}

// Generate renders a portrait. Saving and publishing are best effort; only
// the provider call can fail the request.
func (s *Service) Generate(ctx context.Context, doctorName, style string) (*model.GenerateImageResponse, error) {
	doctorName, style = strings.TrimSpace(doctorName), strings.TrimSpace(style)
	if doctorName == "" {
		return nil, apperrors.Validation("doctorName is required", nil)
	}
	if style == "" {
		return nil, apperrors.Validation("style is required", nil)
	}
	if s.gen == nil {
		s.observe("unconfigured")
		return nil, apperrors.Upstream("image generation", fmt.Errorf("no image provider configured"))
	}

	b64, err := s.gen.GenerateImage(ctx, Prompt(doctorName, style))
	if err != nil {
		s.observe("error")
		return nil, apperrors.Upstream("image generation", err)
	}
	s.observe("success")

	resp := &model.GenerateImageResponse{ImageData: "data:image/png;base64," + b64}

	if !s.cfg.SaveAvatars && s.publisher == nil {
		return resp, nil
	}
	png, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		s.log.Warn(err, "generated image is not valid base64, skipping storage")
		return resp, nil
	}

	slug := Slug(doctorName)
	if s.cfg.SaveAvatars {
		if err := s.save(slug, png); err != nil {
			s.log.Warn(err, "failed to save avatar", "slug", slug)
		}
	}
	if s.publisher != nil {
		url, err := s.publisher.Publish(ctx, slug, png)
		if err != nil {
			s.log.Warn(err, "failed to publish avatar", "slug", slug)
		} else {
			resp.ImageURL = url
		}
	}
	return resp, nil
}

func (s *Service) save(slug string, png []byte) error {
	if err := os.MkdirAll(s.cfg.AvatarDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.cfg.AvatarDir, slug+".png"), png, 0o644)
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ImageRequests.WithLabelValues(outcome).Inc()
	}
}

// Slug turns a display name into a file-safe lower-case name
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "portrait"
	}
	return slug
}
