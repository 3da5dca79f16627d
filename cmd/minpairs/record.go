package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/config"
	"github.com/example/minpairs-audio/internal/dataset"
	"github.com/example/minpairs-audio/internal/recorder"
	"github.com/example/minpairs-audio/internal/tts"
)

func newRecordCmd() *cobra.Command {
	var noProgress bool

	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Synthesize every dataset word with every voice",
		Long: "Record walks the unique words of the configured language and writes one WAV\n" +
			"per word and voice under the language's audio directory. Existing files above\n" +
			"the minimum size are skipped unless --overwrite is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			lang, err := loadLanguage(cfg)
			if err != nil {
				return err
			}
			words := lang.UniqueWords()
			root := lang.AudioDir(cfg.Paths.PublicDir)
			voices := voiceList(cfg)

			synth, closeSynth, err := newSynthesizer(cmd.Context(), cfg.Synth)
			if err != nil {
				return err
			}
			defer func() { _ = closeSynth() }()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Output base path: %s\n", root)
			_, _ = fmt.Fprintf(out, "Found %d unique words across all categories\n", len(words))
			_, _ = fmt.Fprintf(out, "Using %d voice models\n", len(voices))

			var bar *pterm.ProgressbarPrinter
			if !noProgress && len(words) > 0 {
				bar, err = pterm.DefaultProgressbar.
					WithTotal(len(words) * len(voices)).
					WithTitle("Recording").
					WithWriter(out).
					Start()
				if err != nil {
					return fmt.Errorf("start progress bar: %w", err)
				}
			}

			rec := recorder.New(appFs, synth, recorder.Options{
				Root:        root,
				Voices:      voices,
				Base:        baseVoice(cfg.Synth),
				Terminator:  cfg.Synth.Terminator,
				MinFileSize: cfg.Recorder.MinFileSize,
				MaxRetries:  cfg.Recorder.MaxRetries,
				Delay:       cfg.Recorder.Delay,
				Overwrite:   cfg.Recorder.Overwrite,
				Split:       splitOptions(cfg.Silence),
				Fallback:    tts.NewRandomFallback(voices, nil),
				Logger:      slog.Default(),
				OnStart: func(_, _ int, w dataset.Word, voice string) {
					if bar != nil {
						bar.UpdateTitle(fmt.Sprintf("%s (%s)", w.Translit, tts.MinimalVoiceName(voice)))
					}
				},
				OnResult: func(recorder.Result) {
					if bar != nil {
						bar.Increment()
					}
				},
				OnWord: func(s recorder.WordSummary) {
					if s.Failed > 0 {
						_, _ = fmt.Fprintf(out, "⚠ %s: ✓ %d | ✗ %d | → %d\n", s.Word.Text, s.Success, s.Failed, s.Skipped)
					}
				},
			})

			rep, runErr := rec.Run(cmd.Context(), words)
			if bar != nil {
				_, _ = bar.Stop()
			}
			if rep != nil {
				if err := renderRecordReport(out, rep); err != nil {
					return err
				}
			}

			return runErr
		},
	}

	cmd.Flags().String("language", defaults.Synth.LanguageCode, "Dataset language to record")
	cmd.Flags().StringSlice("voices", nil, "Voices to record (default: every bn-IN voice)")
	cmd.Flags().Int64("min-file-size", defaults.Recorder.MinFileSize, "Minimum size in bytes of a valid recording")
	cmd.Flags().Int("max-retries", defaults.Recorder.MaxRetries, "Attempts per word and voice")
	cmd.Flags().Duration("delay", defaults.Recorder.Delay, "Minimum spacing between synthesis requests")
	cmd.Flags().Bool("overwrite", defaults.Recorder.Overwrite, "Re-record files that already pass the size check")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

func renderRecordReport(w io.Writer, rep *recorder.Report) error {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Total Words", strconv.Itoa(rep.TotalWords)},
		{"Voices Used", strconv.Itoa(len(rep.Voices))},
		{"Successful", strconv.Itoa(rep.Successful)},
		{"Failed", strconv.Itoa(rep.Failed)},
		{"Skipped", strconv.Itoa(rep.Skipped)},
		{"Regenerated", strconv.Itoa(rep.Regenerated)},
		{"Total Time", fmt.Sprintf("%.1fs", rep.Elapsed.Seconds())},
		{"Output Path", rep.Root},
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Audio Generation Complete")
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).WithWriter(w).Render(); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	pattern := filepath.Join(rep.Root, "[word]", "[word]_[voicename]."+audio.ExtWAV)
	_, _ = fmt.Fprintf(w, "\nAudio files are organized in: %s\n", pattern)

	return nil
}
