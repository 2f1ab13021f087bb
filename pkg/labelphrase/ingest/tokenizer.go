package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"github.com/kljensen/snowball/english"
)

// DefaultMinLength is the shortest run of word characters kept as a token.
const DefaultMinLength = 3

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	minLength        int
	stopwords        map[string]struct{}
	englishStopwords bool
	stem             bool
}

// NewTokenizer creates a new tokenizer with the given stopword list.
// An empty list keeps every token of at least DefaultMinLength runes.
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{minLength: DefaultMinLength, stopwords: stops}
}

// SetMinLength changes the minimum token length. Values below 1 are clamped to 1.
func (t *Tokenizer) SetMinLength(n int) {
	if n < 1 {
		n = 1
	}
	t.minLength = n
}

// SetStemming enables Snowball (English) stemming of every emitted token.
// Example: "invoices" → "invoic", "shipping" → "ship"
func (t *Tokenizer) SetStemming(on bool) {
	t.stem = on
}

// SetEnglishStopwords enables the built-in Snowball English stopword list
// in addition to any configured stopwords.
func (t *Tokenizer) SetEnglishStopwords(on bool) {
	t.englishStopwords = on
}

// Tokenize collapses whitespace, lowercases the text and returns every
// maximal run of word characters (letters, digits, underscore) that is at
// least minLength runes long, in order of appearance.
func (t *Tokenizer) Tokenize(text string) []string {
	text = strings.ToLower(CollapseWhitespace(text))

	var tokens []string
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if word := t.processToken(text[start:i]); word != "" {
				tokens = append(tokens, word)
			}
			start = -1
		}
	}

	// Don't forget the last token
	if start >= 0 {
		if word := t.processToken(text[start:]); word != "" {
			tokens = append(tokens, word)
		}
	}

	return tokens
}

// processToken applies the length floor, stopword filtering and stemming.
func (t *Tokenizer) processToken(word string) string {
	if utf8.RuneCountInString(word) < t.minLength {
		return ""
	}
	if t.isStopword(word) {
		return ""
	}
	if t.stem {
		if stem, err := snowball.Stem(word, "english", false); err == nil && stem != "" {
			word = stem
		}
	}
	return word
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func (t *Tokenizer) isStopword(word string) bool {
	if _, ok := t.stopwords[word]; ok {
		return true
	}
	return t.englishStopwords && english.IsStopWord(word)
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, strings.ToLower(word))
}
