package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/config"
)

func newSplitCmd() *cobra.Command {
	var expect int
	var outDir string

	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "split FILE...",
		Short: "Split recordings on silence into their spoken segments",
		Long: "Split cuts each input at silent gaps and writes the segments as\n" +
			"{name}_1.wav, {name}_2.wav, ... Files that do not yield exactly --expect\n" +
			"segments are reported and left alone.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if expect < 1 {
				return fmt.Errorf("--expect must be at least 1, got %d", expect)
			}
			opts := splitOptions(cfg.Silence)

			w := cmd.OutOrStdout()
			written, failed := 0, 0
			for _, in := range args {
				wave, err := readWaveform(in)
				if err != nil {
					failed++
					_, _ = fmt.Fprintf(w, "✗ %s: %v\n", in, err)
					continue
				}

				parts, err := audio.SplitExpected(wave, opts, expect)
				if err != nil {
					failed++
					var sce *audio.SegmentCountError
					if errors.As(err, &sce) {
						_, _ = fmt.Fprintf(w, "✗ %s: found %d segments, want %d\n", in, sce.Got, sce.Want)
					} else {
						_, _ = fmt.Fprintf(w, "✗ %s: %v\n", in, err)
					}
					continue
				}

				dir := outDir
				if dir == "" {
					dir = filepath.Dir(in)
				}
				stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))

				if err := writeSegments(dir, stem, parts); err != nil {
					failed++
					_, _ = fmt.Fprintf(w, "✗ %s: %v\n", in, err)
					continue
				}
				written += len(parts)
				_, _ = fmt.Fprintf(w, "✓ %s: %d segments\n", in, len(parts))
			}

			_, _ = fmt.Fprintf(w, "\nSegments written: %d, Files failed: %d\n", written, failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&expect, "expect", 2, "Number of segments each file must contain")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the segments (default: next to each input)")
	cmd.Flags().Float64("top-db", defaults.Silence.TopDB, "Range in dB below the peak that still counts as sound")
	cmd.Flags().Int("min-silence-ms", defaults.Silence.MinSilenceMS, "Merge segments separated by shorter gaps")

	return cmd
}

func writeSegments(dir, stem string, parts []audio.Waveform) error {
	for i, p := range parts {
		out := filepath.Join(dir, fmt.Sprintf("%s_%d.%s", stem, i+1, audio.ExtWAV))
		if err := writeWaveform(out, p); err != nil {
			return fmt.Errorf("write segment %d: %w", i+1, err)
		}
	}

	return nil
}
