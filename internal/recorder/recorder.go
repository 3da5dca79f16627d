// Package recorder synthesizes one audio file per (word, voice) pair into the
// audio tree, retrying with fallback voices until each file passes the
// minimum size check.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/dataset"
	"github.com/example/minpairs-audio/internal/layout"
	"github.com/example/minpairs-audio/internal/text"
	"github.com/example/minpairs-audio/internal/tts"
)

const (
	DefaultMinFileSize = 1000
	DefaultMaxRetries  = 3
	DefaultDelay       = 100 * time.Millisecond
)

// Options configures a Recorder. Zero values fall back to the defaults above.
type Options struct {
	// Root is the language's audio directory.
	Root string
	// Voices are the full voice names to record, in order.
	Voices []string
	// Base carries the settings shared by every voice.
	Base tts.VoiceConfig
	// Terminator is appended to each word before synthesis.
	Terminator  string
	MinFileSize int64
	// MaxRetries bounds the attempts per pair across every failure cause.
	MaxRetries int
	// Delay is the minimum spacing between synthesis calls. Zero disables
	// pacing.
	Delay     time.Duration
	Overwrite bool
	Split     audio.SplitOptions

	Fallback tts.FallbackStrategy
	Logger   *slog.Logger
	Now      func() time.Time

	// OnStart is called before each pair with its 1-based position.
	OnStart func(n, total int, word dataset.Word, voice string)
	// OnResult is called after each pair.
	OnResult func(Result)
	// OnWord is called after the last voice of each word.
	OnWord func(WordSummary)
}

// Recorder runs the per-pair state machine sequentially.
type Recorder struct {
	fs      afero.Fs
	synth   tts.Synthesizer
	opts    Options
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(fsys afero.Fs, synth tts.Synthesizer, opts Options) *Recorder {
	if opts.MinFileSize == 0 {
		opts.MinFileSize = DefaultMinFileSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Split == (audio.SplitOptions{}) {
		opts.Split = audio.DefaultSplitOptions()
	}
	if opts.Fallback == nil {
		opts.Fallback = tts.NewRandomFallback(tts.DefaultVoices(), nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &Recorder{
		fs:      fsys,
		synth:   synth,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Run records every word with every voice. It stops early when ctx is done
// and returns the partial report together with ctx.Err().
func (r *Recorder) Run(ctx context.Context, words []dataset.Word) (*Report, error) {
	if len(r.opts.Voices) == 0 {
		return nil, errors.New("no voices to record")
	}

	rep := &Report{
		RunID:      uuid.New(),
		Started:    r.opts.Now(),
		Root:       r.opts.Root,
		TotalWords: len(words),
		Voices:     append([]string(nil), r.opts.Voices...),
	}
	log := r.logger.With("run_id", rep.RunID.String())
	log.Info("recording started", "words", len(words), "voices", len(r.opts.Voices), "root", r.opts.Root)

	total := len(words) * len(r.opts.Voices)
	n := 0

	var runErr error
loop:
	for _, w := range words {
		sum := WordSummary{Word: w}
		for _, v := range r.opts.Voices {
			if err := ctx.Err(); err != nil {
				runErr = err
				break loop
			}

			n++
			if r.opts.OnStart != nil {
				r.opts.OnStart(n, total, w, v)
			}

			res := r.record(ctx, log, w, r.opts.Base.WithName(v))
			if res.Status == StatusFailed && ctx.Err() != nil {
				// Interrupted, not failed.
				runErr = ctx.Err()
				break loop
			}

			rep.add(res)
			sum.add(res)
			if r.opts.OnResult != nil {
				r.opts.OnResult(res)
			}
		}

		rep.Words = append(rep.Words, sum)
		if r.opts.OnWord != nil {
			r.opts.OnWord(sum)
		}
	}

	rep.Elapsed = r.opts.Now().Sub(rep.Started)
	log.Info("recording finished",
		"successful", rep.Successful,
		"failed", rep.Failed,
		"skipped", rep.Skipped,
		"regenerated", rep.Regenerated,
		"elapsed", rep.Elapsed,
	)

	return rep, runErr
}

// Record runs the state machine for a single pair.
func (r *Recorder) Record(ctx context.Context, word dataset.Word, voice tts.VoiceConfig) Result {
	return r.record(ctx, r.logger, word, voice)
}

func (r *Recorder) record(ctx context.Context, log *slog.Logger, word dataset.Word, voice tts.VoiceConfig) Result {
	res := Result{
		Word:  word,
		Voice: voice.Name,
		Path:  layout.Path(r.opts.Root, word.Translit, voice.Name, audio.ExtWAV),
	}
	log = log.With("word", word.Translit, "voice", voice.Name)

	// Check
	regenerate := false
	info, err := r.fs.Stat(res.Path)
	switch {
	case err == nil:
		if info.Size() > r.opts.MinFileSize && !r.opts.Overwrite {
			res.Status, res.Size = StatusSkipped, info.Size()
			return res
		}
		regenerate = info.Size() <= r.opts.MinFileSize
	case !errors.Is(err, fs.ErrNotExist):
		return r.fail(log, res, "stat existing file", err)
	}

	input, err := text.PrepareWord(word.Text, r.opts.Terminator)
	if err != nil {
		return r.fail(log, res, "prepare text", err)
	}

	if err := r.fs.MkdirAll(layout.WordDir(r.opts.Root, word.Translit), 0o755); err != nil {
		return r.fail(log, res, "create word directory", err)
	}

	current := voice
	for attempt := 1; attempt <= r.opts.MaxRetries; attempt++ {
		res.Attempts = attempt
		last := attempt == r.opts.MaxRetries

		if err := r.limiter.Wait(ctx); err != nil {
			return r.fail(log, res, "wait for rate limiter", err)
		}

		// Synthesize
		wave, err := r.synth.Synthesize(ctx, input, current)
		if err != nil {
			if ctx.Err() != nil || last {
				res.Status, res.Reason, res.Err = StatusFailed, err.Error(), err
				log.Warn("recording failed", "attempt", attempt, "reason", res.Reason)
				return res
			}
			current = r.opts.Fallback.Next(current)
			log.Debug("synthesis failed, switching voice", "attempt", attempt, "next_voice", current.Name, "err", err)
			continue
		}

		// PostProcess
		segs := audio.Split(wave, r.opts.Split)
		if len(segs) == 0 {
			if last {
				res.Status, res.Reason, res.Err = StatusFailed, audio.ErrNoSegments.Error(), audio.ErrNoSegments
				log.Warn("recording failed", "attempt", attempt, "reason", res.Reason)
				return res
			}
			current = r.opts.Fallback.Next(current)
			log.Debug("no audio splits, switching voice", "attempt", attempt, "next_voice", current.Name)
			continue
		}

		// Validate
		res.UsedVoice = current.Name
		size, err := r.write(res.Path, wave.Slice(segs[0].Start, segs[0].End))
		if err != nil {
			return r.fail(log, res, "write recording", err)
		}
		res.Size = size

		if size < r.opts.MinFileSize {
			if last {
				res.Status = StatusFailed
				res.Reason = fmt.Sprintf("file too small after %d attempts", r.opts.MaxRetries)
				log.Warn("recording failed", "attempt", attempt, "reason", res.Reason, "size", size)
				return res
			}
			log.Debug("file too small, retrying", "attempt", attempt, "size", size)
			continue
		}

		res.Status = StatusSuccess
		if regenerate {
			res.Status = StatusRegenerated
		}
		if current.Name != voice.Name {
			log.Info("recorded with fallback voice", "used_voice", current.Name)
		}

		return res
	}

	// Unreachable while MaxRetries >= 1.
	res.Status, res.Reason = StatusFailed, fmt.Sprintf("failed after %d attempts", r.opts.MaxRetries)
	return res
}

// fail records a filesystem or input error. These are not retried.
func (r *Recorder) fail(log *slog.Logger, res Result, op string, err error) Result {
	res.Status = StatusFailed
	res.Err = fmt.Errorf("%s: %w", op, err)
	res.Reason = res.Err.Error()
	log.Warn("recording failed", "attempt", res.Attempts, "reason", res.Reason)

	return res
}

func (r *Recorder) write(name string, w audio.Waveform) (int64, error) {
	f, err := r.fs.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if err != nil {
		return 0, err
	}

	if err := audio.WriteWAV(f, w); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	info, err := r.fs.Stat(name)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}
