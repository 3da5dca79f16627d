// Package manifest builds the audio_manifest.json the web app reads to learn
// which recordings exist without probing the server.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/example/minpairs-audio/internal/audio"
	"github.com/example/minpairs-audio/internal/layout"
	"github.com/example/minpairs-audio/internal/text"
)

// ErrRootNotFound is returned when the audio root does not exist.
var ErrRootNotFound = layout.ErrRootNotFound

// Entry lists the recordings of one word.
type Entry struct {
	Voices    []string `json:"voices"`
	Extension string   `json:"extension"`
}

// Manifest is a snapshot of the audio tree.
type Manifest struct {
	Words       map[string]Entry `json:"words"`
	GeneratedAt time.Time        `json:"generated_at"`
	TotalWords  int              `json:"total_words"`
	TotalFiles  int              `json:"total_files"`
}

// Scanner walks an audio tree.
type Scanner struct {
	Fs     afero.Fs
	Now    func() time.Time
	Logger *slog.Logger
	// OnDir is called after each word directory.
	OnDir func(name string)
}

func NewScanner(fsys afero.Fs) *Scanner {
	return &Scanner{Fs: fsys, Now: time.Now, Logger: slog.Default()}
}

// Scan builds a Manifest from root. Unreadable word directories are logged
// and left out.
func (s *Scanner) Scan(root string) (*Manifest, error) {
	if err := layout.CheckRoot(s.Fs, root); err != nil {
		return nil, err
	}

	dirs, err := afero.ReadDir(s.Fs, root)
	if err != nil {
		return nil, fmt.Errorf("read audio root: %w", err)
	}

	m := &Manifest{Words: map[string]Entry{}}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}

		translit := text.NFC(d.Name())
		entry, files, err := s.scanWord(filepath.Join(root, d.Name()), translit)
		if err != nil {
			s.Logger.Warn("skipping unreadable word directory", "dir", d.Name(), "err", err)
		} else if files > 0 {
			m.Words[translit] = entry
			m.TotalFiles += files
		}

		if s.OnDir != nil {
			s.OnDir(translit)
		}
	}

	m.TotalWords = len(m.Words)
	m.GeneratedAt = s.Now()

	return m, nil
}

func (s *Scanner) scanWord(dir, translit string) (Entry, int, error) {
	infos, err := afero.ReadDir(s.Fs, dir)
	if err != nil {
		return Entry{}, 0, err
	}

	var voices []string
	hasWAV := false
	files := 0
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		voice, ext, ok := layout.ParseFileName(translit, fi.Name())
		if !ok {
			continue
		}
		files++
		voices = append(voices, voice)
		if ext == audio.ExtWAV {
			hasWAV = true
		}
	}

	sort.Strings(voices)
	entry := Entry{Voices: slices.Compact(voices), Extension: audio.ExtMP3}
	if hasWAV {
		entry.Extension = audio.ExtWAV
	}

	return entry, files, nil
}

// Sorted returns the word keys in order.
func (m *Manifest) Sorted() []string {
	keys := make([]string, 0, len(m.Words))
	for k := range m.Words {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Encode renders m as indented JSON. Non-ASCII text is written verbatim.
func Encode(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Write replaces the manifest at name. The data goes to a temporary file in
// the same directory first, so readers never see a partial manifest.
func Write(fsys afero.Fs, name string, m *Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(name)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmp, err := afero.TempFile(fsys, dir, ".audio_manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("close temp manifest: %w", err)
	}

	if err := fsys.Rename(tmpName, name); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("replace manifest: %w", err)
	}

	return nil
}
