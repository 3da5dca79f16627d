package config

import (
	"fmt"
	"strings"
)

const (
	BackendGoogle    = "google"
	BackendPocketTTS = "pocket-tts"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendGoogle
	}
	switch backend {
	case BackendGoogle, BackendPocketTTS:
		return backend, nil
	case "gcp", "cloud":
		return BackendGoogle, nil
	case "pocket", "pockettts", "cli":
		return BackendPocketTTS, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s)",
			raw,
			BackendGoogle,
			BackendPocketTTS,
		)
	}
}
