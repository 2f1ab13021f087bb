package config

import (
	"fmt"

	"github.com/cognicore/labelphrase/pkg/labelphrase/ingest"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	StoplistPath     string
	Stem             bool
	EnglishStopwords bool
}

// Components holds all loaded configuration components
type Components struct {
	Tokenizer *ingest.Tokenizer
}

// NewLoader builds a Loader from the tokenizer settings of cfg.
func NewLoader(cfg Config) Loader {
	return Loader{
		StoplistPath:     cfg.Stoplist,
		Stem:             cfg.Stem,
		EnglishStopwords: cfg.EnglishStopwords,
	}
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.StoplistPath != "" {
		stoplist, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Tokenizer = ingest.NewTokenizer(stoplist.Terms)
	} else {
		comp.Tokenizer = ingest.NewTokenizer([]string{})
	}

	comp.Tokenizer.SetStemming(l.Stem)
	comp.Tokenizer.SetEnglishStopwords(l.EnglishStopwords)

	return comp, nil
}
