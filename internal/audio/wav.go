package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/wav"
)

// Output format written by EncodeWAV.
const (
	OutputChannels = 1
	OutputBitDepth = 16
)

var (
	// ErrFormatMismatch is returned when a decoded WAV has a format we cannot use.
	ErrFormatMismatch = errors.New("WAV format mismatch")
	// ErrInvalidWAV is returned when the input does not carry a RIFF/WAVE header.
	ErrInvalidWAV = errors.New("invalid WAV file")
)

// Waveform is mono PCM audio with samples in [-1, 1].
type Waveform struct {
	SampleRate int
	Samples    []float32
}

// Len returns the number of samples.
func (w Waveform) Len() int { return len(w.Samples) }

// Duration returns the playback length of the waveform.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}

	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.SampleRate)
}

// DurationMS returns the playback length in milliseconds.
func (w Waveform) DurationMS() float64 {
	if w.SampleRate <= 0 {
		return 0
	}

	return float64(len(w.Samples)) * 1000 / float64(w.SampleRate)
}

// Slice returns the samples in [start, end), clamped to the waveform bounds.
// The returned waveform shares memory with w.
func (w Waveform) Slice(start, end int) Waveform {
	start = max(0, min(start, len(w.Samples)))
	end = max(start, min(end, len(w.Samples)))

	return Waveform{SampleRate: w.SampleRate, Samples: w.Samples[start:end]}
}

// DecodeWAV decodes WAV bytes into a mono Waveform.
// Multi-channel input is downmixed by averaging channels.
func DecodeWAV(data []byte) (Waveform, error) {
	if len(data) == 0 {
		return Waveform{}, errors.New("empty WAV input")
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Waveform{}, ErrInvalidWAV
	}

	if dec.SampleRate == 0 {
		return Waveform{}, fmt.Errorf("%w: sample rate 0", ErrFormatMismatch)
	}
	if dec.NumChans == 0 {
		return Waveform{}, fmt.Errorf("%w: no channels", ErrFormatMismatch)
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return Waveform{}, fmt.Errorf("%w: bit depth %d", ErrFormatMismatch, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("reading PCM data: %w", err)
	}

	return Waveform{
		SampleRate: int(dec.SampleRate),
		Samples:    downmix(buf.Data, int(dec.NumChans)),
	}, nil
}

// downmix averages interleaved frames into a single channel.
func downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}

	out := make([]float32, len(interleaved)/channels)
	for i := range out {
		var sum float32
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}

	return out
}
