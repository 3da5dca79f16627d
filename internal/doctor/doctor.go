// Package doctor provides environment preflight checks for the audio
// pipeline.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/example/minpairs-audio/internal/config"
	"github.com/example/minpairs-audio/internal/layout"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// DatasetFunc loads the dataset and describes it in one line, e.g.
// "bn-IN: 120 pairs, 214 words".
type DatasetFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	Fs afero.Fs
	// Backend is the normalized synth backend.
	Backend string

	// Dataset loads and summarizes the dataset file.
	Dataset DatasetFunc
	// AudioRoot is the language's audio directory. A missing root is
	// reported but not a failure: the first record run creates it.
	AudioRoot string

	// GoogleCredentials locates application default credentials.
	GoogleCredentials func() (string, error)

	// PocketTTSVersion returns the output of `pocket-tts --version`.
	PocketTTSVersion VersionFunc
	// PythonVersion returns the Python version string (e.g. "3.11.4").
	PythonVersion VersionFunc

	// Voices is the configured voice list.
	Voices []string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- dataset ----------------------------------------------------------
	if cfg.Dataset != nil {
		summary, err := cfg.Dataset()
		if err != nil {
			res.fail(fmt.Sprintf("dataset: %v", err))
			fmt.Fprintf(w, "%s dataset: %v\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s dataset: %s\n", PassMark, summary)
		}
	}

	// ---- audio root -------------------------------------------------------
	if cfg.AudioRoot != "" && cfg.Fs != nil {
		err := layout.CheckRoot(cfg.Fs, cfg.AudioRoot)
		switch {
		case err == nil:
			fmt.Fprintf(w, "%s audio directory: %s\n", PassMark, cfg.AudioRoot)
		case errors.Is(err, layout.ErrRootNotFound):
			fmt.Fprintf(w, "%s audio directory: %s does not exist yet\n", PassMark, cfg.AudioRoot)
		default:
			res.fail(fmt.Sprintf("audio directory: %v", err))
			fmt.Fprintf(w, "%s audio directory: %v\n", FailMark, err)
		}
	}

	// ---- backend ----------------------------------------------------------
	switch cfg.Backend {
	case config.BackendGoogle:
		checkGoogle(cfg, w, &res)
	case config.BackendPocketTTS:
		checkPocketTTS(cfg, w, &res)
	default:
		res.fail(fmt.Sprintf("backend: unknown backend %q", cfg.Backend))
		fmt.Fprintf(w, "%s backend: unknown backend %q\n", FailMark, cfg.Backend)
	}

	// ---- voices -----------------------------------------------------------
	if len(cfg.Voices) == 0 {
		res.fail("voices: no voices configured")
		fmt.Fprintf(w, "%s voices: none configured\n", FailMark)
	} else {
		fmt.Fprintf(w, "%s voices: %d configured\n", PassMark, len(cfg.Voices))
	}

	return res
}

func checkGoogle(cfg Config, w io.Writer, res *Result) {
	if cfg.GoogleCredentials == nil {
		fmt.Fprintf(w, "%s google credentials: skipped\n", PassMark)
		return
	}

	path, err := cfg.GoogleCredentials()
	if err != nil {
		res.fail(fmt.Sprintf("google credentials: %v", err))
		fmt.Fprintf(w, "%s google credentials: %v\n", FailMark, err)
		return
	}
	fmt.Fprintf(w, "%s google credentials: %s\n", PassMark, path)
}

func checkPocketTTS(cfg Config, w io.Writer, res *Result) {
	if cfg.PocketTTSVersion != nil {
		ver, err := cfg.PocketTTSVersion()
		if err != nil {
			res.fail(fmt.Sprintf("pocket-tts binary: %v", err))
			fmt.Fprintf(w, "%s pocket-tts binary: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s pocket-tts binary: %s\n", PassMark, ver)
		}
	}

	if cfg.PythonVersion != nil {
		pyVer, err := cfg.PythonVersion()
		if err != nil {
			res.fail(fmt.Sprintf("python version: %v", err))
			fmt.Fprintf(w, "%s python version: not found (%v)\n", FailMark, err)
		} else if pyErr := checkPythonVersion(pyVer); pyErr != nil {
			res.fail(fmt.Sprintf("python version: %v", pyErr))
			fmt.Fprintf(w, "%s python version %s: %v\n", FailMark, pyVer, pyErr)
		} else {
			fmt.Fprintf(w, "%s python version: %s\n", PassMark, pyVer)
		}
	}
}

// GoogleCredentialsPath finds application default credentials the way the
// Google client libraries do: GOOGLE_APPLICATION_CREDENTIALS first, then the
// gcloud well-known file under configDir.
func GoogleCredentialsPath(fsys afero.Fs, getenv func(string) string, configDir string) (string, error) {
	if p := getenv("GOOGLE_APPLICATION_CREDENTIALS"); p != "" {
		if _, err := fsys.Stat(p); err != nil {
			return "", fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS=%s: %w", p, err)
		}
		return p, nil
	}

	if configDir != "" {
		p := filepath.Join(configDir, "gcloud", "application_default_credentials.json")
		if _, err := fsys.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", errors.New("no application default credentials; set GOOGLE_APPLICATION_CREDENTIALS or run `gcloud auth application-default login`")
}

// checkPythonVersion returns an error if ver is outside [3.10, 3.15), the
// range pocket-tts supports. ver is expected to be a string like "3.11.4".
func checkPythonVersion(ver string) error {
	major, minor, err := parseMajorMinor(ver)
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", ver, err)
	}
	if major != 3 {
		return fmt.Errorf("requires Python 3, got %d", major)
	}
	if minor < 10 {
		return fmt.Errorf("requires Python >=3.10, got 3.%d", minor)
	}
	if minor >= 15 {
		return fmt.Errorf("requires Python <3.15, got 3.%d", minor)
	}
	return nil
}

func parseMajorMinor(ver string) (major, minor int, err error) {
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unexpected version format %q", ver)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad major in %q: %w", ver, err)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad minor in %q: %w", ver, err)
	}
	return major, minor, nil
}
