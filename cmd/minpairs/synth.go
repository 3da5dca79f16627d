package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/text"
)

func newSynthCmd() *cobra.Command {
	var input string
	var voice string
	var out string
	var trim bool

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize one text to WAV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			raw, err := readSynthText(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			prepared, err := text.PrepareWord(raw, cfg.Synth.Terminator)
			if err != nil {
				return err
			}

			if voice == "" {
				voice = voiceList(cfg)[0]
			}

			synth, closeSynth, err := newSynthesizer(cmd.Context(), cfg.Synth)
			if err != nil {
				return err
			}
			defer func() { _ = closeSynth() }()

			// Status lines go to stderr so "--out -" stays a clean WAV stream.
			status := cmd.ErrOrStderr()
			_, _ = fmt.Fprintf(status, "Synthesizing: %s\n", prepared)
			start := time.Now()

			wave, err := synth.Synthesize(cmd.Context(), prepared, baseVoice(cfg.Synth).WithName(voice))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(status, "Successfully synthesized in %.2fs\n", time.Since(start).Seconds())

			if trim {
				wave = audio.Trim(wave, trimOptions(cfg.Silence))
			}

			if out == "-" {
				data, err := audio.EncodeWAV(wave)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := writeWaveform(out, wave); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			_, _ = fmt.Fprintf(status, "Wrote %s (%.2fs)\n", out, wave.Duration().Seconds())

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().StringVar(&voice, "voice", "", "Full voice name (default: first configured voice)")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output WAV path ('-' for stdout)")
	cmd.Flags().BoolVar(&trim, "trim", false, "Trim leading and trailing silence")

	return cmd
}

func readSynthText(flagText string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(flagText) != "" {
		return flagText, nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no input text: pass --text or pipe text on stdin")
		}
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	return string(data), nil
}
