package testutil

import (
	"math"

	"github.com/example/minpairs-audio/internal/audio"
)

// SampleRate is the rate used by the builders below.
const SampleRate = 16000

// Tone returns a 440 Hz sine of the given length and peak amplitude.
func Tone(ms float64, amp float32) audio.Waveform {
	n := int(math.Round(ms * SampleRate / 1000))
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}

	return audio.Waveform{SampleRate: SampleRate, Samples: out}
}

// Quiet returns digital silence.
func Quiet(ms float64) audio.Waveform {
	return audio.Silence(SampleRate, ms)
}

// SpokenWord looks like a single synthesized word: 600 ms of tone with
// 200 ms of silence on either side.
func SpokenWord() audio.Waveform {
	return audio.Concat(SampleRate, Quiet(200), Tone(600, 0.5), Quiet(200))
}

// SpokenPair holds two words separated by a clear pause.
func SpokenPair() audio.Waveform {
	return audio.Concat(SampleRate, Quiet(200), Tone(500, 0.5), Quiet(400), Tone(500, 0.4), Quiet(200))
}
