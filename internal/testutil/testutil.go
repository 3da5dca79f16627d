// Package testutil provides shared skip helpers, waveform builders and fakes
// for tests.
//
// Each Require helper calls t.Skip with a clear human-readable reason when the
// named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireGoogleCredentials(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"testing"
)

// RequirePocketTTS skips the test if the pocket-tts binary is not found in
// PATH or the path given by the MINPAIRS_SYNTH_POCKET_TTS_PATH environment
// variable.
func RequirePocketTTS(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("MINPAIRS_SYNTH_POCKET_TTS_PATH")
	if exe == "" {
		exe = "pocket-tts"
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("pocket-tts binary not available (%q not in PATH); set MINPAIRS_SYNTH_POCKET_TTS_PATH to override", exe)
		return ""
	}

	return path
}

// RequireGoogleCredentials skips the test unless GOOGLE_APPLICATION_CREDENTIALS
// names a readable file.
func RequireGoogleCredentials(tb testing.TB) {
	tb.Helper()

	p := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if p == "" {
		tb.Skip("GOOGLE_APPLICATION_CREDENTIALS not set")
		return
	}

	// #nosec G703 -- Integration tests intentionally accept explicit env-provided credential paths.
	if _, err := os.Stat(p); err != nil {
		tb.Skipf("Google credentials not readable at %q: %v", p, err)
	}
}
