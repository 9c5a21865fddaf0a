package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/pkg/circuitbreaker"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

var (
	// ErrNoAudioContent means the primary provider answered without audio.
	// It ends the attempt; no other provider is tried.
	ErrNoAudioContent = errors.New("no audio content returned from speech provider")
	ErrNoProvider     = errors.New("no speech provider configured")
)

// Audio is a synthesized MP3 clip
type Audio struct {
	Data     []byte
	Provider string
}

// DataURI encodes the clip for embedding in JSON responses
func (a *Audio) DataURI() string {
	return "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Provider is a single text-to-speech backend
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice model.VoiceParams) ([]byte, error)
}

// Synthesizer turns reply text into audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice model.VoiceParams, preferFallback bool) (*Audio, error)
}

type BreakerConfig struct {
	MaxFailures int
	Timeout     time.Duration
}

type breakerProvider struct {
	Provider
	breaker *circuitbreaker.CircuitBreaker
}

// Adapter tries the fallback provider first when asked, then the primary.
type Adapter struct {
	primary  *breakerProvider
	fallback *breakerProvider
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewAdapter wires the providers behind circuit breakers. Either provider may be nil.
func NewAdapter(primary, fallback Provider, bc BreakerConfig, m *metrics.Metrics, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	a := &Adapter{metrics: m, log: log.WithComponent("speech")}
	a.primary = a.wrap(primary, bc)
	a.fallback = a.wrap(fallback, bc)
	return a
}

func (a *Adapter) wrap(p Provider, bc BreakerConfig) *breakerProvider {
	if p == nil {
		return nil
	}
	return &breakerProvider{
		Provider: p,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "speech-" + p.Name(),
			MaxFailures: bc.MaxFailures,
			Timeout:     bc.Timeout,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNoAudioContent) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name, from, to string) {
				a.log.Info("circuit breaker state changed", "breaker", name, "from", from, "to", to)
				if a.metrics != nil {
					open := 0.0
					if to == "open" {
						open = 1
					}
					a.metrics.BreakerState.WithLabelValues(name).Set(open)
				}
			},
		}),
	}
}

// HasFallback reports whether a secondary provider is configured
func (a *Adapter) HasFallback() bool {
	return a.fallback != nil
}

func (a *Adapter) Synthesize(ctx context.Context, text string, voice model.VoiceParams, preferFallback bool) (*Audio, error) {
	if preferFallback && a.fallback != nil {
		audio, err := a.call(ctx, a.fallback, text, voice)
		if err == nil {
			return audio, nil
		}
		a.log.Warn(err, "fallback speech provider failed, trying primary", "provider", a.fallback.Name())
	}

	if a.primary == nil {
		return nil, ErrNoProvider
	}
	return a.call(ctx, a.primary, text, voice)
}

func (a *Adapter) call(ctx context.Context, p *breakerProvider, text string, voice model.VoiceParams) (*Audio, error) {
	start := time.Now()

	var data []byte
	err := p.breaker.Execute(func() error {
		var err error
		data, err = p.Synthesize(ctx, text, voice)
		if err == nil && len(data) == 0 {
			err = ErrNoAudioContent
		}
		return err
	})

	if a.metrics != nil {
		a.metrics.SpeechLatency.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
		a.metrics.SpeechRequests.WithLabelValues(p.Name(), outcome(err)).Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	return &Audio{Data: data, Provider: p.Name()}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoAudioContent):
		return "no_audio"
	case errors.Is(err, circuitbreaker.ErrOpen):
		return "rejected"
	default:
		return "error"
	}
}
