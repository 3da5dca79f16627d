package tts

import (
	"context"
	"fmt"

	pockettts "github.com/cwbudde/go-call-pocket-tts"

	"github.com/example/minpairs-audio/internal/audio"
)

// PocketSynthesizer runs the local pocket-tts CLI. It needs no cloud
// credentials, which makes it useful for dry runs of the pipeline.
type PocketSynthesizer struct {
	exe      string
	generate func(ctx context.Context, text string, opts *pockettts.Options) (*pockettts.WAVResult, error)
}

// NewPocketSynthesizer verifies that the pocket-tts executable resolves.
// An empty exe means "pocket-tts" on PATH.
func NewPocketSynthesizer(exe string) (*PocketSynthesizer, error) {
	if err := pockettts.Preflight(exe); err != nil {
		return nil, err
	}

	return &PocketSynthesizer{exe: exe, generate: pockettts.Generate}, nil
}

func (p *PocketSynthesizer) Synthesize(ctx context.Context, input string, voice VoiceConfig) (audio.Waveform, error) {
	res, err := p.generate(ctx, input, &pockettts.Options{
		Voice:          voice.Name,
		ExecutablePath: p.exe,
		Quiet:          true,
	})
	if err != nil {
		return audio.Waveform{}, err
	}

	w, err := audio.DecodeWAV(res.Data)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("decode pocket-tts output: %w", err)
	}

	return w, nil
}
