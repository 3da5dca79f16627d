package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/manifest"
)

const manifestSampleSize = 5

func newManifestCmd() *cobra.Command {
	var audioDir string
	var out string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write the audio manifest consumed by the web app",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			root := audioDir
			if root == "" {
				root = audioRoot(cfg)
			}
			dest := out
			if dest == "" {
				dest = cfg.Paths.ManifestPath
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Scanning audio directory: %s\n", root)

			m, err := manifest.NewScanner(appFs).Scan(root)
			if err != nil {
				return err
			}

			if m.TotalWords == 0 {
				_, _ = fmt.Fprintln(w, "No audio files found!")
				return nil
			}

			if err := manifest.Write(appFs, dest, m); err != nil {
				return err
			}
			slog.Info("manifest written", "path", dest, "words", m.TotalWords, "files", m.TotalFiles)

			_, _ = fmt.Fprintf(w, "Manifest written to %s\n", dest)
			_, _ = fmt.Fprintf(w, "Words with audio: %d\n", m.TotalWords)
			_, _ = fmt.Fprintf(w, "Total audio files: %d\n", m.TotalFiles)

			data := pterm.TableData{{"Word", "Voices", "Extension"}}
			for _, word := range m.Sorted() {
				if len(data) > manifestSampleSize {
					break
				}
				e := m.Words[word]
				data = append(data, []string{word, strconv.Itoa(len(e.Voices)), e.Extension})
			}

			_, _ = fmt.Fprintln(w, "\nSample entries:")
			return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()
		},
	}

	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "Audio directory to scan (default: the language's audio directory)")
	cmd.Flags().StringVar(&out, "out", "", "Manifest output path (default: --manifest-path)")

	return cmd
}
