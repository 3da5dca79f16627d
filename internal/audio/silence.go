package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoSegments is returned when a waveform contains no non-silent audio.
var ErrNoSegments = errors.New("no audio splits")

// TrimOptions configures Trim.
type TrimOptions struct {
	// ThresholdDB is the chunk level in dBFS below which audio counts as silence.
	ThresholdDB float64
	// KeepSilenceMS is the silence kept before and after the speech.
	KeepSilenceMS float64
	// ChunkMS is the detection granularity.
	ChunkMS float64
}

// DefaultTrimOptions returns -50 dBFS, 100 ms padding and 10 ms chunks.
func DefaultTrimOptions() TrimOptions {
	return TrimOptions{
		ThresholdDB:   -50,
		KeepSilenceMS: 100,
		ChunkMS:       10,
	}
}

// SplitOptions configures Split.
type SplitOptions struct {
	// TopDB is how far below the loudest frame a frame may fall and still
	// count as sound.
	TopDB float64
	// FloorDB is an absolute dBFS level; frames at or below it are silent
	// regardless of TopDB. Zero means no floor beyond digital silence.
	FloorDB float64
	// FrameLength and HopLength are the RMS analysis window, in samples.
	FrameLength int
	HopLength   int
	// MinSilenceMS merges segments separated by shorter gaps. Zero keeps
	// every gap.
	MinSilenceMS float64
}

// DefaultSplitOptions returns a 40 dB range, -60 dBFS floor and a
// 2048/512 analysis window.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		TopDB:       40,
		FloorDB:     -60,
		FrameLength: 2048,
		HopLength:   512,
	}
}

// Segment is a half-open sample range [Start, End).
type Segment struct {
	Start int
	End   int
}

// Len returns the number of samples in the segment.
func (s Segment) Len() int { return s.End - s.Start }

// SegmentCountError reports a split that did not produce the expected
// number of segments.
type SegmentCountError struct {
	Want int
	Got  int
}

func (e *SegmentCountError) Error() string {
	return fmt.Sprintf("expected %d audio segments, found %d", e.Want, e.Got)
}

// Is reports a zero-segment result as ErrNoSegments.
func (e *SegmentCountError) Is(target error) bool {
	return target == ErrNoSegments && e.Got == 0
}

// DetectLeadingSilence returns the number of leading samples whose chunk
// level stays below thresholdDB. The result is a multiple of the chunk size,
// capped at the waveform length.
func DetectLeadingSilence(w Waveform, thresholdDB, chunkMS float64) int {
	n := len(w.Samples)
	chunk := max(1, msToSamples(w.SampleRate, chunkMS))

	trim := 0
	for trim < n && DBFS(RMS(w.Samples[trim:min(trim+chunk, n)])) < thresholdDB {
		trim += chunk
	}

	return min(trim, n)
}

// Trim replaces leading silence with opts.KeepSilenceMS of digital silence and
// cuts trailing silence down to at most opts.KeepSilenceMS. A waveform that is
// silent throughout becomes a silent clip of twice the keep length.
func Trim(w Waveform, opts TrimOptions) Waveform {
	lead := DetectLeadingSilence(w, opts.ThresholdDB, opts.ChunkMS)
	speech := w.Slice(lead, w.Len())
	if speech.Len() == 0 {
		return Silence(w.SampleRate, 2*opts.KeepSilenceMS)
	}

	keep := msToSamples(w.SampleRate, opts.KeepSilenceMS)
	padded := Concat(w.SampleRate, Silence(w.SampleRate, opts.KeepSilenceMS), speech)

	trail := DetectLeadingSilence(Reverse(padded), opts.ThresholdDB, opts.ChunkMS)
	end := min(padded.Len(), padded.Len()-trail+keep)
	if end <= keep {
		return padded
	}

	return padded.Slice(0, end)
}

// Split partitions w into contiguous non-silent segments.
func Split(w Waveform, opts SplitOptions) []Segment {
	n := len(w.Samples)
	if n == 0 {
		return nil
	}

	frame := opts.FrameLength
	if frame <= 0 {
		frame = 2048
	}
	hop := opts.HopLength
	if hop <= 0 {
		hop = 512
	}

	floor := opts.FloorDB
	if floor == 0 {
		floor = SilenceFloorDB
	}

	levels := frameLevels(w.Samples, frame, hop)

	peak := SilenceFloorDB
	for _, db := range levels {
		peak = math.Max(peak, db)
	}
	if peak <= floor {
		return nil
	}

	var segs []Segment
	start := -1
	for t, db := range levels {
		loud := db > peak-opts.TopDB && db > floor
		switch {
		case loud && start < 0:
			start = t
		case !loud && start >= 0:
			segs = appendSegment(segs, start*hop, min(n, t*hop))
			start = -1
		}
	}
	if start >= 0 {
		segs = appendSegment(segs, start*hop, n)
	}

	return mergeGaps(segs, msToSamples(w.SampleRate, opts.MinSilenceMS))
}

// SplitExpected splits w and returns exactly want segment waveforms, or a
// *SegmentCountError when the count differs.
func SplitExpected(w Waveform, opts SplitOptions, want int) ([]Waveform, error) {
	segs := Split(w, opts)
	if len(segs) != want {
		return nil, &SegmentCountError{Want: want, Got: len(segs)}
	}

	out := make([]Waveform, len(segs))
	for i, s := range segs {
		out[i] = w.Slice(s.Start, s.End)
	}

	return out, nil
}

// frameLevels returns the dBFS level of centered, zero-padded RMS frames.
func frameLevels(samples []float32, frame, hop int) []float64 {
	n := len(samples)
	pad := frame / 2
	count := 1 + n/hop

	levels := make([]float64, count)
	for t := range count {
		lo := t*hop - pad
		hi := lo + frame

		var sum float64
		for i := max(0, lo); i < min(n, hi); i++ {
			v := float64(samples[i])
			sum += v * v
		}
		levels[t] = DBFS(math.Sqrt(sum / float64(frame)))
	}

	return levels
}

func appendSegment(segs []Segment, start, end int) []Segment {
	if end <= start {
		return segs
	}

	return append(segs, Segment{Start: start, End: end})
}

func mergeGaps(segs []Segment, minGap int) []Segment {
	if minGap <= 0 || len(segs) < 2 {
		return segs
	}

	out := []Segment{segs[0]}
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if s.Start-last.End < minGap {
			last.End = s.End
			continue
		}
		out = append(out, s)
	}

	return out
}
