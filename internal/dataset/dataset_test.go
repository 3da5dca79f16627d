package dataset

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

const sample = `{
  "bn-IN": {
    "audioBasePath": "audio/bn-IN",
    "types": {
      "Aspiration": {
        "pairs": [
          [["কাল", "kaal"], ["খাল", "khaal"]],
          [["চাল", "chaal"], ["ছাল", "chhaal"]]
        ]
      },
      "Vowel length": {
        "path": "audio/vowels",
        "pairs": [
          [["কাল", "kaal"], ["কল", "kol"]],
          [["জল", ""], ["ঝল", "jhol"]]
        ]
      }
    }
  },
  "en-US": {
    "types": {
      "Stops": {"pairs": [[["pat", "pat"], ["bat", "bat"]], [["kol", "kol"], ["cat", "cat"]]]}
    }
  }
}`

func TestParse_DocumentOrder(t *testing.T) {
	d, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := d.Codes(); len(got) != 2 || got[0] != "bn-IN" || got[1] != "en-US" {
		t.Fatalf("Codes() = %v; want [bn-IN en-US]", got)
	}

	bn, err := d.Language("bn-IN")
	if err != nil {
		t.Fatalf("Language: %v", err)
	}

	if len(bn.Categories) != 2 || bn.Categories[0].Name != "Aspiration" || bn.Categories[1].Name != "Vowel length" {
		t.Fatalf("categories = %+v", bn.Categories)
	}

	if bn.Categories[1].Path != "audio/vowels" {
		t.Errorf("category path = %q", bn.Categories[1].Path)
	}

	if bn.PairCount() != 4 {
		t.Errorf("PairCount() = %d; want 4", bn.PairCount())
	}
}

func TestLanguageUniqueWords(t *testing.T) {
	d, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	bn, _ := d.Language("bn-IN")
	words := bn.UniqueWords()

	want := []string{"kaal", "khaal", "chaal", "chhaal", "kol", "jhol"}
	if len(words) != len(want) {
		t.Fatalf("UniqueWords() = %+v; want %v", words, want)
	}

	for i, w := range words {
		if w.Translit != want[i] {
			t.Errorf("word %d = %q; want %q", i, w.Translit, want[i])
		}
	}

	if words[0].Text != "কাল" {
		t.Errorf("first word text = %q; want কাল", words[0].Text)
	}
}

func TestDatasetUniqueWords_AcrossLanguages(t *testing.T) {
	d, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	words := d.UniqueWords()
	// "kol" from en-US is a duplicate of the bn-IN entry and keeps its text.
	if len(words) != 9 {
		t.Fatalf("UniqueWords() returned %d words; want 9: %+v", len(words), words)
	}

	for _, w := range words {
		if w.Translit == "kol" && w.Text != "কল" {
			t.Errorf("kol text = %q; want the first occurrence কল", w.Text)
		}
	}
}

func TestParse_NormalizesToNFC(t *testing.T) {
	// ক + ে + া, the decomposed spelling of কো.
	doc := `{"bn-IN": {"types": {"x": {"pairs": [[["\u0995\u09c7\u09be", "ko"], ["খো", "kho"]]]}}}}`

	d, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	bn, _ := d.Language("bn-IN")
	if got := bn.UniqueWords()[0].Text; got != "\u0995\u09cb" {
		t.Errorf("text = %+q; want composed U+0995 U+09CB", got)
	}
}

func TestLanguage_Unknown(t *testing.T) {
	d, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = d.Language("hi-IN")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("Language(hi-IN) error = %v; want ErrUnknownLanguage", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, doc := range []string{"", "not json", "[1,2]", `{"bn-IN": `} {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidJSON) {
			t.Errorf("Parse(%q) error = %v; want ErrInvalidJSON", doc, err)
		}
	}
}

func TestParse_SkipsMalformedPairs(t *testing.T) {
	doc := `{"bn-IN": {"types": {"x": {"pairs": [[["কাল", "kaal"]], [["খাল", "khaal"], ["গাল", "gaal"]]]}}}}`

	d, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	bn, _ := d.Language("bn-IN")
	if bn.PairCount() != 1 {
		t.Errorf("PairCount() = %d; want 1", bn.PairCount())
	}
}

func TestAudioDir(t *testing.T) {
	withBase := &Language{Code: "bn-IN", AudioBasePath: "audio/bn-IN"}
	if got, want := withBase.AudioDir("public"), filepath.Join("public", "audio", "bn-IN"); got != want {
		t.Errorf("AudioDir = %q; want %q", got, want)
	}

	noBase := &Language{Code: "en-US"}
	if got, want := noBase.AudioDir("site"), filepath.Join("site", "audio", "en-US"); got != want {
		t.Errorf("AudioDir = %q; want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "public/minimal_pairs_db.json", []byte(sample), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d, err := Load(fs, "public/minimal_pairs_db.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(d.Languages) != 2 {
		t.Errorf("loaded %d languages; want 2", len(d.Languages))
	}

	if _, err := Load(fs, "missing.json"); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
