package audio

import (
	"errors"
	"math"
	"testing"
)

const testRate = 16000

func tone(ms float64, amp float32) Waveform {
	n := msToSamples(testRate, ms)
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*440*float64(i)/testRate))
	}

	return Waveform{SampleRate: testRate, Samples: out}
}

func quiet(ms float64) Waveform { return Silence(testRate, ms) }

func TestDetectLeadingSilence(t *testing.T) {
	w := Concat(testRate, quiet(300), tone(500, 0.5))

	got := DetectLeadingSilence(w, -50, 10)
	if got != msToSamples(testRate, 300) {
		t.Errorf("leading silence = %d samples, want %d", got, msToSamples(testRate, 300))
	}

	if got := DetectLeadingSilence(quiet(250), -50, 10); got != msToSamples(testRate, 250) {
		t.Errorf("all-silent leading silence = %d, want full length", got)
	}
}

func TestTrim_KeepsPaddingAroundSpeech(t *testing.T) {
	w := Concat(testRate, quiet(300), tone(2000, 0.5), quiet(400))

	got := Trim(w, DefaultTrimOptions())

	const want = 100 + 2000 + 100
	if math.Abs(got.DurationMS()-want) > 10 {
		t.Fatalf("trimmed duration = %.1fms, want %dms ±10", got.DurationMS(), want)
	}

	lead := DetectLeadingSilence(got, -50, 10)
	if lead != msToSamples(testRate, 100) {
		t.Errorf("leading pad = %d samples, want %d", lead, msToSamples(testRate, 100))
	}
}

func TestTrim_ShortTailIsNotExtended(t *testing.T) {
	w := Concat(testRate, quiet(50), tone(1000, 0.5), quiet(30))

	got := Trim(w, DefaultTrimOptions())

	// 100ms pad + 1000ms speech + the 30ms tail that was there.
	if math.Abs(got.DurationMS()-1130) > 10 {
		t.Fatalf("trimmed duration = %.1fms, want ~1130ms", got.DurationMS())
	}
}

func TestTrim_AllSilenceYieldsShortClip(t *testing.T) {
	got := Trim(quiet(1500), DefaultTrimOptions())

	if got.DurationMS() != 200 {
		t.Fatalf("duration = %.1fms, want 200ms", got.DurationMS())
	}
	if RMS(got.Samples) != 0 {
		t.Error("expected a silent clip")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   Waveform
		opts SplitOptions
		want int
	}{
		{
			name: "single word",
			in:   Concat(testRate, quiet(200), tone(600, 0.5), quiet(200)),
			opts: DefaultSplitOptions(),
			want: 1,
		},
		{
			name: "pair separated by a pause",
			in:   Concat(testRate, quiet(200), tone(500, 0.5), quiet(400), tone(500, 0.4), quiet(200)),
			opts: DefaultSplitOptions(),
			want: 2,
		},
		{
			name: "short pause merged by min silence",
			in:   Concat(testRate, quiet(200), tone(500, 0.5), quiet(400), tone(500, 0.4), quiet(200)),
			opts: func() SplitOptions {
				o := DefaultSplitOptions()
				o.MinSilenceMS = 1000
				return o
			}(),
			want: 1,
		},
		{
			name: "digital silence",
			in:   quiet(1000),
			opts: DefaultSplitOptions(),
			want: 0,
		},
		{
			name: "digital silence without floor",
			in:   quiet(1000),
			opts: SplitOptions{TopDB: 40},
			want: 0,
		},
		{
			name: "noise below floor",
			in:   tone(1000, 0.0002),
			opts: DefaultSplitOptions(),
			want: 0,
		},
		{
			name: "empty",
			in:   Waveform{SampleRate: testRate},
			opts: DefaultSplitOptions(),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Split(tt.in, tt.opts)
			if len(segs) != tt.want {
				t.Fatalf("got %d segments %v, want %d", len(segs), segs, tt.want)
			}
			for i, s := range segs {
				if s.Start < 0 || s.End > tt.in.Len() || s.Len() <= 0 {
					t.Errorf("segment %d out of bounds: %+v (len %d)", i, s, tt.in.Len())
				}
				if i > 0 && s.Start < segs[i-1].End {
					t.Errorf("segment %d overlaps previous: %+v", i, s)
				}
			}
		})
	}
}

func TestSplit_SegmentCoversSpeech(t *testing.T) {
	w := Concat(testRate, quiet(500), tone(800, 0.5), quiet(500))

	segs := Split(w, DefaultSplitOptions())
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}

	speechStart := msToSamples(testRate, 500)
	speechEnd := speechStart + msToSamples(testRate, 800)
	if segs[0].Start > speechStart || segs[0].End < speechEnd {
		t.Errorf("segment %+v does not cover speech [%d, %d)", segs[0], speechStart, speechEnd)
	}
}

func TestSplitExpected(t *testing.T) {
	pair := Concat(testRate, quiet(200), tone(500, 0.5), quiet(400), tone(500, 0.4), quiet(200))

	parts, err := SplitExpected(pair, DefaultSplitOptions(), 2)
	if err != nil {
		t.Fatalf("SplitExpected: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}

	_, err = SplitExpected(pair, DefaultSplitOptions(), 3)
	var countErr *SegmentCountError
	if !errors.As(err, &countErr) {
		t.Fatalf("expected *SegmentCountError, got %v", err)
	}
	if countErr.Want != 3 || countErr.Got != 2 {
		t.Errorf("count error = %+v", countErr)
	}
	if errors.Is(err, ErrNoSegments) {
		t.Error("two segments must not match ErrNoSegments")
	}

	_, err = SplitExpected(quiet(500), DefaultSplitOptions(), 2)
	if !errors.Is(err, ErrNoSegments) {
		t.Errorf("silent input: expected ErrNoSegments, got %v", err)
	}
}
