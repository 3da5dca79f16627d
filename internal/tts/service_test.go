package tts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	pockettts "github.com/cwbudde/go-call-pocket-tts"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/config"
)

type stubSynth struct {
	wave  audio.Waveform
	err   error
	block bool
}

func (s stubSynth) Synthesize(ctx context.Context, _ string, _ VoiceConfig) (audio.Waveform, error) {
	if s.block {
		<-ctx.Done()
		return audio.Waveform{}, ctx.Err()
	}

	return s.wave, s.err
}

func testWAV(t *testing.T) []byte {
	t.Helper()

	data, err := audio.EncodeWAV(audio.Waveform{SampleRate: 24000, Samples: make([]float32, 240)})
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	return data
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

func TestNewService_InvalidBackend(t *testing.T) {
	cfg := config.DefaultConfig().Synth
	cfg.Backend = "polly"

	if _, err := NewService(context.Background(), cfg); err == nil {
		t.Error("NewService with unknown backend should return error")
	}
}

func TestNewService_MissingPocketTTS(t *testing.T) {
	cfg := config.DefaultConfig().Synth
	cfg.Backend = config.BackendPocketTTS
	cfg.PocketTTSPath = "/nonexistent/pocket-tts"

	if _, err := NewService(context.Background(), cfg); err == nil {
		t.Error("NewService with missing pocket-tts should return error")
	}
}

func TestServiceSynthesize_WrapsErrors(t *testing.T) {
	cause := errors.New("quota exceeded")
	svc := NewServiceWith(config.BackendGoogle, stubSynth{err: cause}, 0)

	_, err := svc.Synthesize(context.Background(), "কাল।", VoiceConfig{Name: "bn-IN-Wavenet-A"})
	if !IsServiceError(err) {
		t.Fatalf("error %v is not a ServiceError", err)
	}

	if !errors.Is(err, cause) {
		t.Errorf("ServiceError does not unwrap to the cause: %v", err)
	}

	var se *ServiceError
	if errors.As(err, &se) && se.Voice != "bn-IN-Wavenet-A" {
		t.Errorf("ServiceError.Voice = %q", se.Voice)
	}

	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error text %q lacks the cause", err.Error())
	}
}

func TestServiceSynthesize_RejectsMissingSampleRate(t *testing.T) {
	svc := NewServiceWith(config.BackendGoogle, stubSynth{wave: audio.Waveform{Samples: []float32{0.1}}}, 0)

	_, err := svc.Synthesize(context.Background(), "x", VoiceConfig{})
	if !IsServiceError(err) {
		t.Errorf("error %v is not a ServiceError", err)
	}
}

func TestServiceSynthesize_Timeout(t *testing.T) {
	svc := NewServiceWith(config.BackendGoogle, stubSynth{block: true}, 20*time.Millisecond)

	start := time.Now()
	_, err := svc.Synthesize(context.Background(), "x", VoiceConfig{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v; want deadline exceeded", err)
	}

	if time.Since(start) > 2*time.Second {
		t.Error("timeout was not applied")
	}
}

func TestServiceSynthesize_PassesWaveform(t *testing.T) {
	want := audio.Waveform{SampleRate: 24000, Samples: []float32{0.1, 0.2}}
	svc := NewServiceWith(config.BackendPocketTTS, stubSynth{wave: want}, time.Second)

	got, err := svc.Synthesize(context.Background(), "x", VoiceConfig{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if got.SampleRate != 24000 || got.Len() != 2 {
		t.Errorf("Synthesize = %+v", got)
	}

	if svc.Backend() != config.BackendPocketTTS {
		t.Errorf("Backend() = %q", svc.Backend())
	}

	if err := svc.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Google request building
// ---------------------------------------------------------------------------

func TestBuildGoogleRequest(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		voice       VoiceConfig
		wantSSML    bool
		wantRate    float64
		wantLang    string
		wantProfile bool
	}{
		{
			name:        "chirp voice ignores prosody",
			input:       "কাল।",
			voice:       VoiceConfig{Name: "bn-IN-Chirp3-HD-Aoede", LanguageCode: "bn-IN", SpeakingRate: 0.8, EffectsProfile: "headphone-class-device"},
			wantRate:    0,
			wantLang:    "bn-IN",
			wantProfile: true,
		},
		{
			name:     "wavenet voice sends prosody",
			input:    "খাল।",
			voice:    VoiceConfig{Name: "bn-IN-Wavenet-A", LanguageCode: "bn-IN", SpeakingRate: 0.8},
			wantRate: 0.8,
			wantLang: "bn-IN",
		},
		{
			name:     "ssml input and default language",
			input:    "<speak>কাল</speak>",
			voice:    VoiceConfig{Name: "bn-IN-Wavenet-B"},
			wantSSML: true,
			wantLang: DefaultLanguageCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := buildGoogleRequest(tt.input, tt.voice)

			if got := req.GetInput().GetSsml() != ""; got != tt.wantSSML {
				t.Errorf("ssml input = %v; want %v", got, tt.wantSSML)
			}

			if req.GetAudioConfig().GetAudioEncoding() != texttospeechpb.AudioEncoding_LINEAR16 {
				t.Errorf("encoding = %v; want LINEAR16", req.GetAudioConfig().GetAudioEncoding())
			}

			if got := req.GetAudioConfig().GetSpeakingRate(); got != tt.wantRate {
				t.Errorf("speaking rate = %v; want %v", got, tt.wantRate)
			}

			if got := req.GetVoice().GetLanguageCode(); got != tt.wantLang {
				t.Errorf("language = %q; want %q", got, tt.wantLang)
			}

			if got := len(req.GetAudioConfig().GetEffectsProfileId()) > 0; got != tt.wantProfile {
				t.Errorf("effects profile set = %v; want %v", got, tt.wantProfile)
			}

			if req.GetVoice().GetName() != tt.voice.Name {
				t.Errorf("voice name = %q; want %q", req.GetVoice().GetName(), tt.voice.Name)
			}
		})
	}
}

func TestGoogleSynthesizer_DecodesLinear16(t *testing.T) {
	wav := testWAV(t)
	var gotReq *texttospeechpb.SynthesizeSpeechRequest
	g := &GoogleSynthesizer{
		synthesize: func(_ context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
			gotReq = req
			return &texttospeechpb.SynthesizeSpeechResponse{AudioContent: wav}, nil
		},
	}

	w, err := g.Synthesize(context.Background(), "কাল।", VoiceConfig{Name: "bn-IN-Wavenet-A"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if w.SampleRate != 24000 || w.Len() != 240 {
		t.Errorf("waveform = rate %d len %d; want 24000/240", w.SampleRate, w.Len())
	}

	if gotReq.GetInput().GetText() != "কাল।" {
		t.Errorf("request text = %q", gotReq.GetInput().GetText())
	}
}

func TestGoogleSynthesizer_EmptyResponse(t *testing.T) {
	g := &GoogleSynthesizer{
		synthesize: func(context.Context, *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
			return &texttospeechpb.SynthesizeSpeechResponse{}, nil
		},
	}

	if _, err := g.Synthesize(context.Background(), "x", VoiceConfig{}); err == nil {
		t.Error("empty audio content should be an error")
	}
}

func TestGoogleSynthesizer_UndecodableResponse(t *testing.T) {
	g := &GoogleSynthesizer{
		synthesize: func(context.Context, *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
			return &texttospeechpb.SynthesizeSpeechResponse{AudioContent: []byte("not a wav")}, nil
		},
	}

	if _, err := g.Synthesize(context.Background(), "x", VoiceConfig{}); err == nil {
		t.Error("undecodable audio should be an error")
	}
}

// ---------------------------------------------------------------------------
// pocket-tts
// ---------------------------------------------------------------------------

func TestPocketSynthesizer_PassesVoiceAndDecodes(t *testing.T) {
	wav := testWAV(t)
	var gotOpts *pockettts.Options
	p := &PocketSynthesizer{
		exe: "/opt/pocket-tts",
		generate: func(_ context.Context, _ string, opts *pockettts.Options) (*pockettts.WAVResult, error) {
			gotOpts = opts
			return &pockettts.WAVResult{Data: wav}, nil
		},
	}

	w, err := p.Synthesize(context.Background(), "hello", VoiceConfig{Name: "alba"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if w.Len() != 240 {
		t.Errorf("waveform len = %d; want 240", w.Len())
	}

	if gotOpts.Voice != "alba" || gotOpts.ExecutablePath != "/opt/pocket-tts" || !gotOpts.Quiet {
		t.Errorf("options = %+v", gotOpts)
	}
}

func TestPocketSynthesizer_PropagatesErrors(t *testing.T) {
	cause := errors.New("exit status 1")
	p := &PocketSynthesizer{
		generate: func(context.Context, string, *pockettts.Options) (*pockettts.WAVResult, error) {
			return nil, cause
		},
	}

	if _, err := p.Synthesize(context.Background(), "x", VoiceConfig{}); !errors.Is(err, cause) {
		t.Errorf("error = %v; want %v", err, cause)
	}
}
