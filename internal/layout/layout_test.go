package layout

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestPath(t *testing.T) {
	got := Path("public/audio/bn-IN", "kaal", "bn-IN-Chirp3-HD-Aoede", "wav")
	want := filepath.Join("public/audio/bn-IN", "kaal", "kaal_chirp3-hd-aoede.wav")

	if got != want {
		t.Errorf("Path() = %q; want %q", got, want)
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name      string
		translit  string
		file      string
		wantVoice string
		wantExt   string
		wantOK    bool
	}{
		{"wav", "kaal", "kaal_chirp3-hd-aoede.wav", "chirp3-hd-aoede", "wav", true},
		{"mp3", "kaal", "kaal_wavenet-a.mp3", "wavenet-a", "mp3", true},
		{"underscore in translit", "kaal_2", "kaal_2_wavenet-b.wav", "wavenet-b", "wav", true},
		{"other word", "kaal", "khaal_wavenet-a.wav", "", "", false},
		{"unknown extension", "kaal", "kaal_wavenet-a.ogg", "", "", false},
		{"uppercase extension", "kaal", "kaal_wavenet-a.WAV", "", "", false},
		{"empty voice", "kaal", "kaal_.wav", "", "", false},
		{"no separator", "kaal", "kaal.wav", "", "", false},
		{"decomposed name", "\u0995\u09cb", "\u0995\u09c7\u09be_wavenet-a.wav", "wavenet-a", "wav", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voice, ext, ok := ParseFileName(tt.translit, tt.file)
			if ok != tt.wantOK || voice != tt.wantVoice || ext != tt.wantExt {
				t.Errorf("ParseFileName(%q, %q) = %q, %q, %v; want %q, %q, %v",
					tt.translit, tt.file, voice, ext, ok, tt.wantVoice, tt.wantExt, tt.wantOK)
			}
		})
	}
}

func TestIsAudioFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.wav":  true,
		"a.mp3":  true,
		"a.json": false,
		"a":      false,
	} {
		if got := IsAudioFile(name); got != want {
			t.Errorf("IsAudioFile(%q) = %v; want %v", name, got, want)
		}
	}
}

func TestCheckRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("audio/bn-IN", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := afero.WriteFile(fs, "audio/file.wav", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := CheckRoot(fs, "audio/bn-IN"); err != nil {
		t.Errorf("CheckRoot(existing dir) = %v", err)
	}

	for _, root := range []string{"missing", "audio/file.wav"} {
		if err := CheckRoot(fs, root); !errors.Is(err, ErrRootNotFound) {
			t.Errorf("CheckRoot(%q) = %v; want ErrRootNotFound", root, err)
		}
	}
}
