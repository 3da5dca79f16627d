package tts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/config"
)

// Synthesizer turns text into a waveform using an external speech service.
// Implementations do not retry.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice VoiceConfig) (audio.Waveform, error)
}

// ServiceError wraps any failure of the speech service: network, quota,
// invalid voice or an undecodable response.
type ServiceError struct {
	Backend string
	Voice   string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s synthesis with voice %q: %v", e.Backend, e.Voice, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceError reports whether err came from the speech service.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// Service is the configured synthesizer backend. It bounds each call with
// the configured timeout and reports failures as *ServiceError.
type Service struct {
	backend string
	synth   Synthesizer
	timeout time.Duration
	closer  func() error
}

// NewService opens the backend named in cfg.
func NewService(ctx context.Context, cfg config.SynthConfig) (*Service, error) {
	backend, err := config.NormalizeBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	svc := &Service{backend: backend, timeout: cfg.Timeout}

	switch backend {
	case config.BackendGoogle:
		g, closeFn, err := NewGoogleSynthesizer(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize google synthesizer: %w", err)
		}
		svc.synth, svc.closer = g, closeFn
	case config.BackendPocketTTS:
		p, err := NewPocketSynthesizer(cfg.PocketTTSPath)
		if err != nil {
			return nil, fmt.Errorf("initialize pocket-tts synthesizer: %w", err)
		}
		svc.synth = p
	}

	return svc, nil
}

// NewServiceWith wraps an existing synthesizer. Used by tests and callers
// that bring their own backend.
func NewServiceWith(backend string, synth Synthesizer, timeout time.Duration) *Service {
	return &Service{backend: backend, synth: synth, timeout: timeout}
}

// Backend returns the normalized backend name.
func (s *Service) Backend() string { return s.backend }

func (s *Service) Synthesize(ctx context.Context, text string, voice VoiceConfig) (audio.Waveform, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	w, err := s.synth.Synthesize(ctx, text, voice)
	if err != nil {
		return audio.Waveform{}, &ServiceError{Backend: s.backend, Voice: voice.Name, Err: err}
	}
	if w.SampleRate <= 0 {
		return audio.Waveform{}, &ServiceError{Backend: s.backend, Voice: voice.Name, Err: errors.New("response has no sample rate")}
	}

	return w, nil
}

// Close releases the backend client.
func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer()
}
