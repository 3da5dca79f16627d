package text

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Danda is the Bengali full stop. Appending it makes single-word prompts end
// with a falling, sentence-final intonation.
const Danda = "।"

// Normalize prepares raw input text for synthesis.
// It trims surrounding whitespace, normalizes line endings to \n, composes
// the text to Unicode NFC and rejects empty or whitespace-only input.
func Normalize(s string) (string, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(norm.NFC.String(s))

	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}

// NFC composes s to Unicode normalization form C. Filesystems such as APFS
// hand back decomposed names, so identifiers are compared in NFC.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// PrepareWord normalizes a single dataset word and appends terminator unless
// the word already ends in sentence punctuation.
func PrepareWord(word, terminator string) (string, error) {
	s, err := Normalize(word)
	if err != nil {
		return "", err
	}

	if terminator == "" || IsSSML(s) || endsSentence(s) {
		return s, nil
	}

	return s + terminator, nil
}

// IsSSML reports whether s is an SSML document.
func IsSSML(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "<speak")
}

func endsSentence(s string) bool {
	last, _ := utf8.DecodeLastRuneInString(s)
	return unicode.Is(unicode.Sentence_Terminal, last)
}
