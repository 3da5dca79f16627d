package tts

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

// DefaultLanguageCode is the dataset language recorded by default.
const DefaultLanguageCode = "bn-IN"

// VoiceConfig selects a voice and the audio settings sent with one synthesis
// request. It is passed by value and never mutated by a Synthesizer.
type VoiceConfig struct {
	Name           string
	LanguageCode   string
	VolumeGainDB   float64
	EffectsProfile string
	SpeakingRate   float64
	Pitch          float64
}

// WithName returns a copy of v using the named voice.
func (v VoiceConfig) WithName(name string) VoiceConfig {
	v.Name = name
	return v
}

var chirp3HDVoices = []string{
	"Achernar", "Achird", "Algenib", "Algieba", "Alnilam", "Aoede", "Autonoe",
	"Callirrhoe", "Charon", "Despina", "Enceladus", "Erinome", "Fenrir",
	"Gacrux", "Iapetus", "Kore", "Laomedeia", "Leda", "Orus", "Puck",
	"Pulcherrima", "Rasalgethi", "Sadachbia", "Sadaltager", "Schedar",
	"Sulafat", "Umbriel",
}

var wavenetVoices = []string{"A", "B", "C", "D"}

// DefaultVoices returns every Google voice available for bn-IN: the
// Chirp3-HD voices followed by the Wavenet voices.
func DefaultVoices() []string {
	out := make([]string, 0, len(chirp3HDVoices)+len(wavenetVoices))
	for _, v := range chirp3HDVoices {
		out = append(out, DefaultLanguageCode+"-Chirp3-HD-"+v)
	}
	for _, v := range wavenetVoices {
		out = append(out, DefaultLanguageCode+"-Wavenet-"+v)
	}

	return out
}

// MinimalVoiceName turns a full voice identifier into the short name used in
// file names: "bn-IN-Chirp3-HD-Aoede" becomes "chirp3-hd-aoede". Names
// without the bn-IN prefix are only lowercased.
func MinimalVoiceName(full string) string {
	return strings.ToLower(strings.TrimPrefix(full, DefaultLanguageCode+"-"))
}

// SupportsProsody reports whether the voice accepts speaking rate and pitch.
// Chirp HD voices reject both.
func SupportsProsody(name string) bool {
	return !strings.Contains(strings.ToLower(name), "chirp")
}

// FallbackStrategy picks the voice used for the next attempt after a failed
// one.
type FallbackStrategy interface {
	Next(current VoiceConfig) VoiceConfig
}

// FallbackFunc adapts a function to FallbackStrategy.
type FallbackFunc func(current VoiceConfig) VoiceConfig

func (f FallbackFunc) Next(current VoiceConfig) VoiceConfig { return f(current) }

// SameVoice retries with the voice that just failed.
var SameVoice = FallbackFunc(func(current VoiceConfig) VoiceConfig { return current })

// RandomFallback picks a random voice from a fixed list, avoiding the voice
// that just failed when another is available. It is not safe for concurrent
// use.
type RandomFallback struct {
	voices []string
	rng    *rand.Rand
}

// NewRandomFallback creates a RandomFallback over voices. A nil rng is
// seeded from the clock.
func NewRandomFallback(voices []string, rng *rand.Rand) *RandomFallback {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return &RandomFallback{voices: slices.Clone(voices), rng: rng}
}

func (f *RandomFallback) Next(current VoiceConfig) VoiceConfig {
	candidates := make([]string, 0, len(f.voices))
	for _, v := range f.voices {
		if v != current.Name {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return current
	}

	return current.WithName(candidates[f.rng.IntN(len(candidates))])
}
