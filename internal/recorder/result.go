package recorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/minpairs-audio/internal/dataset"
)

// Status is the terminal state of one (word, voice) recording.
type Status int

const (
	StatusSuccess Status = iota
	// StatusRegenerated is a success that replaced an existing file at or
	// below the minimum size.
	StatusRegenerated
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRegenerated:
		return "regenerated"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Succeeded reports whether s counts as a successful recording.
func (s Status) Succeeded() bool {
	return s == StatusSuccess || s == StatusRegenerated
}

// Result describes one (word, voice) recording.
type Result struct {
	Word dataset.Word
	// Voice is the requested voice. Path is always derived from it.
	Voice string
	// UsedVoice is the voice that produced the file, which differs from Voice
	// after a fallback. Empty when nothing was synthesized.
	UsedVoice string
	Path      string
	Size      int64
	Status    Status
	Attempts  int
	Reason    string
	Err       error
}

// WordSummary counts the results of one word across all voices.
type WordSummary struct {
	Word    dataset.Word
	Success int
	Failed  int
	Skipped int
}

// Report is the outcome of a Run.
type Report struct {
	RunID      uuid.UUID
	Started    time.Time
	Elapsed    time.Duration
	Root       string
	TotalWords int
	Voices     []string

	// Successful includes Regenerated.
	Successful  int
	Failed      int
	Skipped     int
	Regenerated int

	Words    []WordSummary
	Failures []Result
}

// Processed is the number of (word, voice) pairs that reached a terminal
// state.
func (r *Report) Processed() int {
	return r.Successful + r.Failed + r.Skipped
}

func (r *Report) add(res Result) {
	switch res.Status {
	case StatusSuccess:
		r.Successful++
	case StatusRegenerated:
		r.Successful++
		r.Regenerated++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
		r.Failures = append(r.Failures, res)
	}
}

func (w *WordSummary) add(res Result) {
	switch {
	case res.Status.Succeeded():
		w.Success++
	case res.Status == StatusSkipped:
		w.Skipped++
	case res.Status == StatusFailed:
		w.Failed++
	}
}
