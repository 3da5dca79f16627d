// Package dataset reads the minimal pairs database that drives recording.
//
// The document is keyed by language code:
//
//	{"bn-IN": {"audioBasePath": "audio/bn-IN",
//	           "types": {"Vowels": {"path": "...", "pairs": [[["কাল","kaal"],["খাল","khaal"]]]}}}}
//
// Key order in the file is meaningful: categories and pairs are returned in
// document order, which fixes the recording order.
package dataset

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/example/minpairs-audio/internal/text"
)

// ErrUnknownLanguage is returned by Language for codes not in the dataset.
var ErrUnknownLanguage = errors.New("unknown language")

// ErrInvalidJSON is returned when the dataset is not a JSON object.
var ErrInvalidJSON = errors.New("dataset is not a valid JSON object")

// Word is one side of a minimal pair. Translit is the identifier used for
// directory and file names.
type Word struct {
	Text     string
	Translit string
}

type Pair [2]Word

type Category struct {
	Name  string
	Path  string
	Pairs []Pair
}

type Language struct {
	Code          string
	AudioBasePath string
	Categories    []Category
}

type Dataset struct {
	Languages []*Language
}

// Load reads and parses the dataset file at name.
func Load(fs afero.Fs, name string) (*Dataset, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", name, err)
	}

	return d, nil
}

// Parse decodes a dataset document.
func Parse(data []byte) (*Dataset, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrInvalidJSON
	}

	d := &Dataset{}
	root.ForEach(func(code, lang gjson.Result) bool {
		if !lang.IsObject() {
			return true
		}
		d.Languages = append(d.Languages, parseLanguage(code.String(), lang))
		return true
	})

	return d, nil
}

func parseLanguage(code string, lang gjson.Result) *Language {
	l := &Language{
		Code:          code,
		AudioBasePath: lang.Get("audioBasePath").String(),
	}

	lang.Get("types").ForEach(func(name, cat gjson.Result) bool {
		c := Category{Name: name.String(), Path: cat.Get("path").String()}
		cat.Get("pairs").ForEach(func(_, pair gjson.Result) bool {
			words := pair.Array()
			if len(words) != 2 {
				return true
			}
			c.Pairs = append(c.Pairs, Pair{parseWord(words[0]), parseWord(words[1])})
			return true
		})
		l.Categories = append(l.Categories, c)
		return true
	})

	return l
}

func parseWord(w gjson.Result) Word {
	parts := w.Array()
	var out Word
	if len(parts) > 0 {
		out.Text = text.NFC(parts[0].String())
	}
	if len(parts) > 1 {
		out.Translit = text.NFC(parts[1].String())
	}

	return out
}

// Language returns the language with the given code.
func (d *Dataset) Language(code string) (*Language, error) {
	for _, l := range d.Languages {
		if l.Code == code {
			return l, nil
		}
	}

	return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownLanguage, code, d.Codes())
}

// Codes lists language codes in document order.
func (d *Dataset) Codes() []string {
	out := make([]string, 0, len(d.Languages))
	for _, l := range d.Languages {
		out = append(out, l.Code)
	}

	return out
}

// UniqueWords collects the words of every language, deduplicated by
// transliteration.
func (d *Dataset) UniqueWords() []Word {
	u := newUniq()
	for _, l := range d.Languages {
		u.addLanguage(l)
	}

	return u.words
}

// UniqueWords returns each transliteration once, keeping the first
// occurrence in document order. Words without a transliteration are skipped;
// the app reads those aloud with browser speech instead.
func (l *Language) UniqueWords() []Word {
	u := newUniq()
	u.addLanguage(l)

	return u.words
}

// PairCount is the number of pairs across all categories.
func (l *Language) PairCount() int {
	n := 0
	for _, c := range l.Categories {
		n += len(c.Pairs)
	}

	return n
}

// AudioDir resolves the language's audio root under publicDir. A missing
// audioBasePath falls back to audio/{code}.
func (l *Language) AudioDir(publicDir string) string {
	base := l.AudioBasePath
	if base == "" {
		base = path.Join("audio", l.Code)
	}

	return filepath.Join(publicDir, filepath.FromSlash(base))
}

type uniq struct {
	seen  map[string]bool
	words []Word
}

func newUniq() *uniq { return &uniq{seen: map[string]bool{}} }

func (u *uniq) addLanguage(l *Language) {
	for _, c := range l.Categories {
		for _, p := range c.Pairs {
			for _, w := range p {
				if w.Translit == "" || u.seen[w.Translit] {
					continue
				}
				u.seen[w.Translit] = true
				u.words = append(u.words, w)
			}
		}
	}
}
