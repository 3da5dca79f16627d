package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/config"
	"github.com/example/minpairs-audio/internal/dataset"
	"github.com/example/minpairs-audio/internal/tts"
)

// newSynthesizer opens the configured backend. Tests replace it with a fake.
var newSynthesizer = func(ctx context.Context, cfg config.SynthConfig) (tts.Synthesizer, func() error, error) {
	svc, err := tts.NewService(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return svc, svc.Close, nil
}

// loadLanguage reads the dataset and selects the configured language.
func loadLanguage(cfg config.Config) (*dataset.Language, error) {
	ds, err := dataset.Load(appFs, cfg.Paths.DataFile)
	if err != nil {
		return nil, err
	}

	lang, err := ds.Language(cfg.Synth.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Paths.DataFile, err)
	}

	return lang, nil
}

// audioRoot is the language's audio directory. The dataset is consulted for
// audioBasePath; without it the default audio/{code} layout is used.
func audioRoot(cfg config.Config) string {
	lang, err := loadLanguage(cfg)
	if err != nil {
		lang = &dataset.Language{Code: cfg.Synth.LanguageCode}
	}

	return lang.AudioDir(cfg.Paths.PublicDir)
}

func voiceList(cfg config.Config) []string {
	if len(cfg.Synth.Voices) > 0 {
		return cfg.Synth.Voices
	}

	return tts.DefaultVoices()
}

func baseVoice(cfg config.SynthConfig) tts.VoiceConfig {
	return tts.VoiceConfig{
		LanguageCode:   cfg.LanguageCode,
		VolumeGainDB:   cfg.VolumeGainDB,
		EffectsProfile: cfg.EffectsProfile,
		SpeakingRate:   cfg.SpeakingRate,
		Pitch:          cfg.Pitch,
	}
}

func trimOptions(s config.SilenceConfig) audio.TrimOptions {
	return audio.TrimOptions{
		ThresholdDB:   s.ThresholdDB,
		KeepSilenceMS: float64(s.KeepSilenceMS),
		ChunkMS:       float64(s.ChunkMS),
	}
}

func splitOptions(s config.SilenceConfig) audio.SplitOptions {
	return audio.SplitOptions{
		TopDB:        s.TopDB,
		FloorDB:      s.FloorDB,
		FrameLength:  s.FrameLength,
		HopLength:    s.HopLength,
		MinSilenceMS: float64(s.MinSilenceMS),
	}
}

func readWaveform(name string) (audio.Waveform, error) {
	data, err := afero.ReadFile(appFs, name)
	if err != nil {
		return audio.Waveform{}, err
	}

	return audio.Decode(name, data)
}

func writeWaveform(name string, w audio.Waveform) error {
	data, err := audio.EncodeWAV(w)
	if err != nil {
		return err
	}
	if err := appFs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}

	return afero.WriteFile(appFs, name, data, 0o644)
}

// wavName replaces the extension of name with .wav.
func wavName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + audio.ExtWAV
}
