package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/config"
	"github.com/example/minpairs-audio/internal/layout"
)

func newTrimCmd() *cobra.Command {
	var inDir string
	var outDir string

	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "trim",
		Short: "Trim leading and trailing silence from every mp3/wav file in a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			opts := trimOptions(cfg.Silence)

			infos, err := afero.ReadDir(appFs, inDir)
			if err != nil {
				return fmt.Errorf("read input directory: %w", err)
			}

			w := cmd.OutOrStdout()
			trimmed, skipped, failed := 0, 0, 0
			for _, fi := range infos {
				if fi.IsDir() || !layout.IsAudioFile(fi.Name()) {
					continue
				}

				in := filepath.Join(inDir, fi.Name())
				out := filepath.Join(outDir, wavName(fi.Name()))
				_, _ = fmt.Fprintf(w, "Processing: %s\n", in)

				wave, err := readWaveform(in)
				if err != nil {
					failed++
					_, _ = fmt.Fprintf(w, "  - Error processing %s: %v\n", in, err)
					continue
				}
				if audio.DetectLeadingSilence(wave, opts.ThresholdDB, opts.ChunkMS) >= wave.Len() {
					skipped++
					_, _ = fmt.Fprintf(w, "  - Audio in %s is entirely silence. Skipping.\n", in)
					continue
				}

				res := audio.Trim(wave, opts)
				if err := writeWaveform(out, res); err != nil {
					failed++
					_, _ = fmt.Fprintf(w, "  - Error writing %s: %v\n", out, err)
					continue
				}
				trimmed++
				_, _ = fmt.Fprintf(w, "  -> %s: %.2fs -> %.2fs\n", out, wave.Duration().Seconds(), res.Duration().Seconds())
			}

			_, _ = fmt.Fprintf(w, "\nTrimmed: %d, Skipped: %d, Failed: %d\n", trimmed, skipped, failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&inDir, "in-dir", ".", "Directory of mp3/wav files to trim")
	cmd.Flags().StringVar(&outDir, "out-dir", "trimmed_audio", "Directory for the trimmed WAV files")
	cmd.Flags().Float64("threshold-db", defaults.Silence.ThresholdDB, "Level in dBFS below which audio counts as silence")
	cmd.Flags().Int("keep-silence-ms", defaults.Silence.KeepSilenceMS, "Silence kept before and after speech")

	return cmd
}
