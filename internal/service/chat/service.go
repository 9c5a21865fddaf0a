package chat

import (
	"context"
	"strings"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/service/doctor"
	"github.com/jwalitptl/popdoc-api/internal/service/llm"
	"github.com/jwalitptl/popdoc-api/internal/service/speech"
	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

// Text sources, as reported in metrics
const (
	SourceSelector = "selector"
	SourceAI       = "ai"
	SourceFallback = "selector_fallback"
)

// ReplySelector picks a canned in-character reply
type ReplySelector interface {
	Select(utterance string, d model.Doctor) string
}

// HistoryRecorder stores a finished chat turn for a signed-in user
type HistoryRecorder interface {
	AppendChatTurn(ctx context.Context, userID, prompt, reply string) error
}

type Service struct {
	doctors  doctor.Registry
	selector ReplySelector
	ai       llm.Client
	speech   speech.Synthesizer
	history  HistoryRecorder
	metrics  *metrics.Metrics
	log      *logger.Logger
}

type Option func(*Service)

// WithAI answers through the language model, falling back to the selector
func WithAI(c llm.Client) Option {
	return func(s *Service) { s.ai = c }
}

func WithSpeech(sy speech.Synthesizer) Option {
	return func(s *Service) { s.speech = sy }
}

func WithHistory(h HistoryRecorder) Option {
	return func(s *Service) { s.history = h }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(doctors doctor.Registry, selector ReplySelector, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		doctors:  doctors,
		selector: selector,
		log:      log.WithComponent("chat"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply answers a prompt as the requested doctor. The doctor is checked
// before any text or speech is produced. Speech failures degrade to a
// text-only reply. userID may be empty for anonymous chats.
func (s *Service) Reply(ctx context.Context, userID string, req model.ChatRequest) (*model.ChatResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apperrors.Validation("prompt is required", nil)
	}
	d, ok := s.doctors.Get(req.DoctorID)
	if !ok {
		return nil, apperrors.NotFound("doctor", doctor.ErrDoctorNotFound)
	}

	resp := &model.ChatResponse{Text: s.text(ctx, req.Prompt, d)}

	if req.WantsSpeech() && s.speech != nil {
		audio, err := s.speech.Synthesize(ctx, resp.Text, d.Voice, req.UseElevenLabs)
		if err != nil {
			s.log.Warn(err, "speech synthesis failed, replying with text only", "doctor_id", d.ID)
		} else {
			resp.AudioDataURI = audio.DataURI()
		}
	}

	if userID != "" && s.history != nil {
		if err := s.history.AppendChatTurn(ctx, userID, req.Prompt, resp.Text); err != nil {
			s.log.Warn(err, "chat turn not saved", "user_id", userID)
		}
	}
	return resp, nil
}

func (s *Service) text(ctx context.Context, prompt string, d model.Doctor) string {
	source := SourceSelector
	defer func() {
		if s.metrics != nil {
			s.metrics.TextRequests.WithLabelValues(source).Inc()
		}
	}()

	if s.ai != nil {
		reply, err := s.ai.Reply(ctx, d, prompt)
		if err == nil && strings.TrimSpace(reply) != "" {
			source = SourceAI
			return reply
		}
		s.log.Warn(err, "ai reply unavailable, using phrase book", "doctor_id", d.ID)
		source = SourceFallback
	}
	return s.selector.Select(prompt, d)
}
