package tts

import (
	"context"
	"errors"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/text"
)

type speechFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// GoogleSynthesizer calls Google Cloud Text-to-Speech and decodes the LINEAR16
// (WAV) response.
type GoogleSynthesizer struct {
	synthesize speechFunc
}

// NewGoogleSynthesizer dials the Text-to-Speech API using application default
// credentials. The returned func closes the client.
func NewGoogleSynthesizer(ctx context.Context) (*GoogleSynthesizer, func() error, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	g := &GoogleSynthesizer{
		synthesize: func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
			return client.SynthesizeSpeech(ctx, req)
		},
	}

	return g, client.Close, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, input string, voice VoiceConfig) (audio.Waveform, error) {
	resp, err := g.synthesize(ctx, buildGoogleRequest(input, voice))
	if err != nil {
		return audio.Waveform{}, err
	}

	content := resp.GetAudioContent()
	if len(content) == 0 {
		return audio.Waveform{}, errors.New("empty audio content")
	}

	w, err := audio.DecodeWAV(content)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("decode LINEAR16 response: %w", err)
	}

	return w, nil
}

func buildGoogleRequest(input string, voice VoiceConfig) *texttospeechpb.SynthesizeSpeechRequest {
	si := &texttospeechpb.SynthesisInput{
		InputSource: &texttospeechpb.SynthesisInput_Text{Text: input},
	}
	if text.IsSSML(input) {
		si.InputSource = &texttospeechpb.SynthesisInput_Ssml{Ssml: input}
	}

	lang := voice.LanguageCode
	if lang == "" {
		lang = DefaultLanguageCode
	}

	cfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_LINEAR16,
		VolumeGainDb:  voice.VolumeGainDB,
	}
	if voice.EffectsProfile != "" {
		cfg.EffectsProfileId = []string{voice.EffectsProfile}
	}
	if SupportsProsody(voice.Name) {
		cfg.SpeakingRate = voice.SpeakingRate
		cfg.Pitch = voice.Pitch
	}

	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: si,
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice.Name,
		},
		AudioConfig: cfg,
	}
}
