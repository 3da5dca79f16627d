package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/config"
	"github.com/example/minpairs-audio/internal/outlier"
)

func newCleanCmd() *cobra.Command {
	var del bool
	var audioDir string

	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Find and optionally delete recordings much smaller than their siblings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			root := audioDir
			if root == "" {
				root = audioRoot(cfg)
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Analyzing audio files in: %s\n", root)
			action := "marked for deletion"
			if del {
				action = "deleted"
			}
			_, _ = fmt.Fprintf(w, "Threshold: Files < %.1f%% of median size will be %s\n\n", cfg.Clean.Threshold*100, action)

			rep, err := outlier.Scan(appFs, root, outlier.Options{
				Threshold: cfg.Clean.Threshold,
				Delete:    del,
				Logger:    slog.Default(),
			})
			if err != nil {
				return err
			}

			printCleanReport(w, rep)
			return nil
		},
	}

	cmd.Flags().BoolVar(&del, "delete", false, "Delete flagged files (default is a dry run)")
	cmd.Flags().Float64("threshold", defaults.Clean.Threshold, "Fraction of the directory median below which a file is flagged")
	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "Audio directory to scan (default: the language's audio directory)")

	return cmd
}

func printCleanReport(w io.Writer, rep *outlier.Report) {
	for _, g := range rep.Groups {
		_, _ = fmt.Fprintf(w, "📁 %s:\n", g.Dir)
		_, _ = fmt.Fprintf(w, "   Files: %d, Median: %.0f bytes, Range: %d - %d\n", g.Files, g.Median, g.Min, g.Max)
		_, _ = fmt.Fprintf(w, "   Threshold: %.0f bytes\n", g.ThresholdSize)
		for _, f := range g.Flagged {
			label := "❌ WOULD DELETE"
			if !rep.DryRun {
				label = "🗑️  DELETING"
			}
			_, _ = fmt.Fprintf(w, "   %s: %s\n", label, f.Name)
			_, _ = fmt.Fprintf(w, "      Size: %d bytes (%.1f%% of median)\n", f.Size, f.Ratio*100)
			switch {
			case f.Deleted:
				_, _ = fmt.Fprintln(w, "      ✅ Deleted successfully")
			case f.Err != nil:
				_, _ = fmt.Fprintf(w, "      ❌ Failed to delete: %v\n", f.Err)
			}
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "Summary:")
	_, _ = fmt.Fprintf(w, "  Total files analyzed: %d\n", rep.Analyzed)
	_, _ = fmt.Fprintf(w, "  Small files found: %d\n", rep.Flagged)
	if rep.DryRun {
		_, _ = fmt.Fprintf(w, "  Files that would be deleted: %d\n", rep.Flagged)
		_, _ = fmt.Fprintln(w, "\nTo actually delete files, run with --delete flag")
		return
	}
	_, _ = fmt.Fprintf(w, "  Files deleted: %d\n", rep.Deleted)
}
