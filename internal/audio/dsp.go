package audio

import "math"

// SilenceFloorDB is the level reported for digital silence.
const SilenceFloorDB = -200.0

// RMS returns the root-mean-square amplitude of samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// DBFS converts a linear amplitude (full scale 1.0) to decibels relative to
// full scale. Zero maps to SilenceFloorDB.
func DBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return SilenceFloorDB
	}

	return max(SilenceFloorDB, 20*math.Log10(amplitude))
}

// Silence returns ms milliseconds of zero samples at sampleRate.
func Silence(sampleRate int, ms float64) Waveform {
	return Waveform{SampleRate: sampleRate, Samples: make([]float32, msToSamples(sampleRate, ms))}
}

// Reverse returns a reversed copy of w.
func Reverse(w Waveform) Waveform {
	out := make([]float32, len(w.Samples))
	for i, v := range w.Samples {
		out[len(out)-1-i] = v
	}

	return Waveform{SampleRate: w.SampleRate, Samples: out}
}

// Concat joins waveforms that share a sample rate.
func Concat(sampleRate int, parts ...Waveform) Waveform {
	n := 0
	for _, p := range parts {
		n += len(p.Samples)
	}

	out := make([]float32, 0, n)
	for _, p := range parts {
		out = append(out, p.Samples...)
	}

	return Waveform{SampleRate: sampleRate, Samples: out}
}

func msToSamples(sampleRate int, ms float64) int {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}

	return int(math.Round(ms * float64(sampleRate) / 1000))
}
