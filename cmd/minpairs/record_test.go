package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/config"
	"github.com/example/minpairs-audio/internal/testutil"
	"github.com/example/minpairs-audio/internal/tts"
)

var recordArgs = []string{
	"record", "--no-progress", "--delay", "0",
	"--voices", "bn-IN-Wavenet-A,bn-IN-Wavenet-B",
}

func TestRecordCmd_WritesTree(t *testing.T) {
	h := newHarness(t)

	out, err := run(t, recordArgs...)
	if err != nil {
		t.Fatalf("record: %v\n%s", err, out)
	}

	for _, word := range []string{"kaal", "khaal"} {
		for _, voice := range []string{"wavenet-a", "wavenet-b"} {
			name := filepath.Join(testRoot, word, word+"_"+voice+".wav")
			testutil.AssertRecording(t, h.fs, name, testutil.SampleRate, 1000)
		}
	}

	// The untransliterated word is never recorded.
	if got := len(h.synth.Calls()); got != 4 {
		t.Errorf("synth calls = %d; want 4", got)
	}
	for _, c := range h.synth.Calls() {
		if !strings.HasSuffix(c.Text, "।") {
			t.Errorf("text %q not terminated", c.Text)
		}
	}

	for _, want := range []string{"Found 2 unique words", "Audio Generation Complete", "Successful", testRoot} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRecordCmd_SkipsExisting(t *testing.T) {
	h := newHarness(t)

	if _, err := run(t, recordArgs...); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := run(t, recordArgs...); err != nil {
		t.Fatalf("second record: %v", err)
	}

	if got := len(h.synth.Calls()); got != 4 {
		t.Errorf("synth calls after rerun = %d; want 4", got)
	}
}

func TestRecordCmd_ReportsWordFailures(t *testing.T) {
	h := newHarness(t)
	h.synth.Respond = func(text string, _ tts.VoiceConfig) (audio.Waveform, error) {
		if strings.HasPrefix(text, "খাল") {
			return audio.Waveform{}, errors.New("quota exceeded")
		}
		return testutil.SpokenWord(), nil
	}

	out, err := run(t, append(recordArgs, "--max-retries", "2")...)
	if err != nil {
		t.Fatalf("record should complete despite item failures: %v", err)
	}

	if !strings.Contains(out, "⚠ খাল: ✓ 0 | ✗ 2 | → 0") {
		t.Errorf("output missing word failure line:\n%s", out)
	}
	if strings.Contains(out, "⚠ কাল") {
		t.Errorf("successful word reported as failed:\n%s", out)
	}
}

func TestRecordCmd_UnknownLanguage(t *testing.T) {
	newHarness(t)

	if _, err := run(t, append(recordArgs, "--language", "hi-IN")...); err == nil {
		t.Fatal("expected error for unknown language")
	}
}

func TestRecordCmd_MissingDataset(t *testing.T) {
	newHarness(t)

	if _, err := run(t, append(recordArgs, "--data-file", "missing.json")...); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestRecordCmd_SynthesizerSetupError(t *testing.T) {
	newHarness(t)
	newSynthesizer = func(_ context.Context, _ config.SynthConfig) (tts.Synthesizer, func() error, error) {
		return nil, nil, errors.New("no credentials")
	}

	if _, err := run(t, recordArgs...); err == nil {
		t.Fatal("expected setup error")
	}
}
