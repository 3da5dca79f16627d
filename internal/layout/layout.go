// Package layout names the files of the audio tree:
// {root}/{translit}/{translit}_{voice}.{ext}, where voice is the minimal voice
// name.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/text"
	"github.com/example/minpairs-audio/internal/tts"
)

// AudioExtensions lists recognized extensions in order of preference.
var AudioExtensions = []string{audio.ExtWAV, audio.ExtMP3}

// WordDir is the directory holding every recording of translit.
func WordDir(root, translit string) string {
	return filepath.Join(root, translit)
}

// FileName is the recording file name for a full voice identifier.
func FileName(translit, voice, ext string) string {
	return translit + "_" + tts.MinimalVoiceName(voice) + "." + ext
}

// Path joins WordDir and FileName.
func Path(root, translit, voice, ext string) string {
	return filepath.Join(WordDir(root, translit), FileName(translit, voice, ext))
}

// ParseFileName extracts the minimal voice name and extension from a file in
// the directory of translit. Both names are compared in NFC.
func ParseFileName(translit, name string) (voice, ext string, ok bool) {
	translit, name = text.NFC(translit), text.NFC(name)

	ext = strings.TrimPrefix(filepath.Ext(name), ".")
	if !IsAudioExt(ext) {
		return "", "", false
	}

	stem := strings.TrimSuffix(name, "."+ext)
	voice, found := strings.CutPrefix(stem, translit+"_")
	if !found || voice == "" {
		return "", "", false
	}

	return voice, ext, true
}

// IsAudioExt reports whether ext (without the dot) is a recognized audio
// extension.
func IsAudioExt(ext string) bool {
	for _, e := range AudioExtensions {
		if ext == e {
			return true
		}
	}

	return false
}

// IsAudioFile reports whether name has a recognized audio extension.
func IsAudioFile(name string) bool {
	return IsAudioExt(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ErrRootNotFound is returned when an audio root does not exist.
var ErrRootNotFound = errors.New("audio directory not found")

// CheckRoot verifies that root is an existing directory.
func CheckRoot(fsys afero.Fs, root string) error {
	info, err := fsys.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return fmt.Errorf("stat audio root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	return nil
}
