package main

import (
	"slices"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/tts"
)

func newVoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the voices record uses and their file name suffixes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			selected := voiceList(cfg)
			all := tts.DefaultVoices()
			for _, v := range selected {
				if !slices.Contains(all, v) {
					all = append(all, v)
				}
			}

			data := pterm.TableData{{"Voice", "File suffix", "Prosody", "Recorded"}}
			for _, v := range all {
				data = append(data, []string{
					v,
					tts.MinimalVoiceName(v),
					yesNo(tts.SupportsProsody(v)),
					yesNo(slices.Contains(selected, v)),
				})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
