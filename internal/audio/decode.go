package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// Supported container extensions, without the leading dot.
const (
	ExtWAV = "wav"
	ExtMP3 = "mp3"
)

// Decode decodes audio bytes according to the extension of name.
func Decode(name string, data []byte) (Waveform, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")); ext {
	case ExtWAV:
		return DecodeWAV(data)
	case ExtMP3:
		return DecodeMP3(bytes.NewReader(data))
	default:
		return Waveform{}, fmt.Errorf("unsupported audio extension %q", ext)
	}
}

// DecodeMP3 decodes an MP3 stream into a mono Waveform.
// go-mp3 always yields 16-bit little-endian stereo frames.
func DecodeMP3(r io.Reader) (Waveform, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return Waveform{}, fmt.Errorf("open MP3 stream: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return Waveform{}, fmt.Errorf("decode MP3 stream: %w", err)
	}

	const frameBytes = 4
	frames := len(raw) / frameBytes
	samples := make([]float32, frames)
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(raw[i*frameBytes:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*frameBytes+2:]))
		samples[i] = (float32(l) + float32(r)) / 2 / 32768
	}

	return Waveform{SampleRate: dec.SampleRate(), Samples: samples}, nil
}
