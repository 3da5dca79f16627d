package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	pockettts "github.com/cwbudde/go-call-pocket-tts"
	"github.com/spf13/cobra"

	"github.com/example/minpairs-audio/internal/config"
	"github.com/example/minpairs-audio/internal/dataset"
	"github.com/example/minpairs-audio/internal/doctor"
)

// Probes are package variables so tests can replace them.
var (
	probePocketTTSVersion = defaultProbePocketTTSVersion
	probePythonVersion    = defaultProbePythonVersion
	probeGoogleCreds      = defaultProbeGoogleCreds
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the dataset, audio tree and speech backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "backend: %s\n", cfg.Synth.Backend)

			exe := cfg.Synth.PocketTTSPath
			dcfg := doctor.Config{
				Fs:                appFs,
				Backend:           cfg.Synth.Backend,
				Dataset:           func() (string, error) { return describeDataset(cfg) },
				AudioRoot:         audioRoot(cfg),
				GoogleCredentials: probeGoogleCreds,
				PocketTTSVersion: func() (string, error) {
					return probePocketTTSVersion(exe)
				},
				PythonVersion: probePythonVersion,
				Voices:        voiceList(cfg),
			}

			result := doctor.Run(dcfg, out)
			if result.Failed() {
				for _, f := range result.Failures() {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(out, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

func describeDataset(cfg config.Config) (string, error) {
	ds, err := dataset.Load(appFs, cfg.Paths.DataFile)
	if err != nil {
		return "", err
	}
	lang, err := ds.Language(cfg.Synth.LanguageCode)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s: %d pairs, %d words", lang.Code, lang.PairCount(), len(lang.UniqueWords())), nil
}

// defaultProbePocketTTSVersion checks that the executable resolves and
// returns its `--version` output.
func defaultProbePocketTTSVersion(exe string) (string, error) {
	if err := pockettts.Preflight(exe); err != nil {
		return "", err
	}
	if exe == "" {
		exe = "pocket-tts"
	}

	out, err := exec.CommandContext(context.Background(), exe, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", exe, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// defaultProbePythonVersion tries python3 then python and returns the version string.
func defaultProbePythonVersion() (string, error) {
	for _, bin := range []string{"python3", "python"} {
		out, err := exec.CommandContext(context.Background(), bin, "--version").Output()
		if err != nil {
			continue
		}
		// Output is e.g. "Python 3.11.4\n"
		raw := strings.TrimPrefix(strings.TrimSpace(string(out)), "Python ")
		if raw != "" {
			return raw, nil
		}
	}

	return "", errors.New("python3/python not found on PATH")
}

func defaultProbeGoogleCreds() (string, error) {
	dir, _ := os.UserConfigDir()
	return doctor.GoogleCredentialsPath(appFs, os.Getenv, dir)
}
