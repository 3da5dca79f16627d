package testutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
)

// wavInfo is the subset of a PCM WAV header the assertions look at.
type wavInfo struct {
	format     uint16
	channels   uint16
	sampleRate uint32
	bitDepth   uint16
	dataBytes  uint32
}

func (w wavInfo) samples() uint32 {
	if w.channels == 0 || w.bitDepth == 0 {
		return 0
	}
	return w.dataBytes / (uint32(w.channels) * uint32(w.bitDepth/8))
}

func (w wavInfo) seconds() float64 {
	if w.sampleRate == 0 {
		return 0
	}
	return float64(w.samples()) / float64(w.sampleRate)
}

// readWAVInfo walks the RIFF chunk list. The fmt and data chunks may appear
// in any order after the RIFF/WAVE header.
func readWAVInfo(data []byte) (wavInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return wavInfo{}, errors.New("missing RIFF/WAVE header")
	}

	var info wavInfo
	var haveFmt, haveData bool
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		body := data[off+8:]

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return wavInfo{}, errors.New("truncated fmt chunk")
			}
			info.format = binary.LittleEndian.Uint16(body[0:2])
			info.channels = binary.LittleEndian.Uint16(body[2:4])
			info.sampleRate = binary.LittleEndian.Uint32(body[4:8])
			info.bitDepth = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
		case "data":
			info.dataBytes = size
			haveData = true
		}

		off += 8 + int(size) + int(size%2)
	}

	switch {
	case !haveFmt:
		return wavInfo{}, errors.New("fmt chunk not found")
	case !haveData:
		return wavInfo{}, errors.New("data chunk not found")
	}

	return info, nil
}

// AssertValidWAV checks that data is mono 16-bit PCM at sampleRate with at
// least one sample, which is what the audio package writes.
func AssertValidWAV(tb testing.TB, data []byte, sampleRate int) {
	tb.Helper()

	info, err := readWAVInfo(data)
	if err != nil {
		tb.Fatalf("WAV: %v", err)
	}

	var problems []string
	if info.format != 1 {
		problems = append(problems, fmt.Sprintf("format %d, want PCM (1)", info.format))
	}
	if info.channels != 1 {
		problems = append(problems, fmt.Sprintf("%d channels, want mono", info.channels))
	}
	if int(info.sampleRate) != sampleRate {
		problems = append(problems, fmt.Sprintf("sample rate %d, want %d", info.sampleRate, sampleRate))
	}
	if info.bitDepth != 16 {
		problems = append(problems, fmt.Sprintf("%d-bit, want 16-bit", info.bitDepth))
	}
	if info.samples() == 0 {
		problems = append(problems, "no samples")
	}
	if len(problems) > 0 {
		tb.Fatalf("WAV: %v", problems)
	}
}

// AssertWAVDurationApprox asserts that the WAV duration falls within
// [minSec, maxSec].
func AssertWAVDurationApprox(tb testing.TB, data []byte, minSec, maxSec float64) {
	tb.Helper()

	info, err := readWAVInfo(data)
	if err != nil {
		tb.Fatalf("WAV duration check: %v", err)
	}
	if info.sampleRate == 0 {
		tb.Fatal("WAV duration check: zero sample rate")
	}

	if d := info.seconds(); d < minSec || d > maxSec {
		tb.Fatalf("WAV duration %.3fs out of expected range [%.3fs, %.3fs]", d, minSec, maxSec)
	}
}

// AssertRecording checks that name holds a valid WAV at sampleRate larger
// than minSize bytes, the condition the recorder treats as done.
func AssertRecording(tb testing.TB, fsys afero.Fs, name string, sampleRate int, minSize int64) {
	tb.Helper()

	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		tb.Fatalf("recording %s: %v", name, err)
	}
	if int64(len(data)) <= minSize {
		tb.Fatalf("recording %s is %d bytes, want more than %d", name, len(data), minSize)
	}

	AssertValidWAV(tb, data, sampleRate)
}
