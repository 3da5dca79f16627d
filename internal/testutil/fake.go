package testutil

import (
	"context"
	"sync"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/tts"
)

// FakeStep is one scripted synthesizer response.
type FakeStep struct {
	Wave audio.Waveform
	Err  error
}

// FakeCall records one Synthesize invocation.
type FakeCall struct {
	Text  string
	Voice string
}

// FakeSynthesizer replays Script in order and then keeps returning Default.
// Respond, when set, takes precedence over both.
type FakeSynthesizer struct {
	Script  []FakeStep
	Default FakeStep
	Respond func(text string, voice tts.VoiceConfig) (audio.Waveform, error)

	mu    sync.Mutex
	calls []FakeCall
}

// NewFakeSynthesizer returns a fake that answers every call with SpokenWord.
func NewFakeSynthesizer(script ...FakeStep) *FakeSynthesizer {
	return &FakeSynthesizer{Script: script, Default: FakeStep{Wave: SpokenWord()}}
}

func (f *FakeSynthesizer) Synthesize(ctx context.Context, text string, voice tts.VoiceConfig) (audio.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return audio.Waveform{}, err
	}

	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, FakeCall{Text: text, Voice: voice.Name})
	f.mu.Unlock()

	if f.Respond != nil {
		return f.Respond(text, voice)
	}

	step := f.Default
	if n < len(f.Script) {
		step = f.Script[n]
	}

	return step.Wave, step.Err
}

// Calls returns a copy of the recorded invocations.
func (f *FakeSynthesizer) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)

	return out
}
