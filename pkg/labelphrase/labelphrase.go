// Package labelphrase finds the word sequences that most distinctively
// characterize each labeled group of documents relative to the others, and
// turns them into disjunctive filter queries.
package labelphrase

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cognicore/labelphrase/pkg/labelphrase/ingest"
	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
	"github.com/cognicore/labelphrase/pkg/labelphrase/ngram"
	"github.com/cognicore/labelphrase/pkg/labelphrase/query"
	"github.com/cognicore/labelphrase/pkg/labelphrase/rank"
)

// Default parameters
const (
	DefaultN    = 4  // n-gram window size
	DefaultTopK = 10 // candidate phrases kept per label
	DefaultTopN = 3  // phrases promoted into a filter query
)

// Corpus is the plain text of every document carrying one label.
type Corpus struct {
	Label string
	Texts []string
}

// Options configures an Engine
type Options struct {
	N        int // window size used for counting
	TopK     int // candidate pool size, also the cap after scoring
	TopN     int // phrases per filter query
	MaxWords int // words per phrase in a filter query; 0 means N
	GlobalN  int // window used to re-derive sub-grams for scoring; 0 means N
	Workers  int // goroutines for per-label counting; 0 means 1

	Strategy  Strategy          // nil means Scored
	Tokenizer *ingest.Tokenizer // nil means ingest.NewTokenizer(nil)
	Logger    *log.Logger       // optional progress log
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.N == 0 {
		o.N = DefaultN
	}
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	if o.TopN == 0 {
		o.TopN = DefaultTopN
	}
	if o.MaxWords == 0 {
		o.MaxWords = o.N
	}
	if o.GlobalN == 0 {
		o.GlobalN = o.N
	}
	if o.Workers == 0 {
		o.Workers = 1
	}
	if o.Strategy == nil {
		o.Strategy = Scored{}
	}
	if o.Tokenizer == nil {
		o.Tokenizer = ingest.NewTokenizer(nil)
	}
	return o
}

// Validate rejects parameters outside their domains. Call it on the result
// of WithDefaults; zero N, TopK or TopN is invalid on its own.
func (o Options) Validate() error {
	switch {
	case o.N < 1:
		return fmt.Errorf("n must be >= 1, got %d: %w", o.N, internalerr.ErrInvalidConfig)
	case o.TopK < 1:
		return fmt.Errorf("top-k must be >= 1, got %d: %w", o.TopK, internalerr.ErrInvalidConfig)
	case o.TopN < 1:
		return fmt.Errorf("top-n must be >= 1, got %d: %w", o.TopN, internalerr.ErrInvalidConfig)
	case o.MaxWords < 0:
		return fmt.Errorf("max-words must be >= 0, got %d: %w", o.MaxWords, internalerr.ErrInvalidConfig)
	case o.GlobalN < 0:
		return fmt.Errorf("global-n must be >= 0, got %d: %w", o.GlobalN, internalerr.ErrInvalidConfig)
	case o.Workers < 0:
		return fmt.Errorf("workers must be >= 0, got %d: %w", o.Workers, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Engine runs the tokenize → count → rank → format flow.
type Engine struct {
	opts Options
}

// New fills defaults, validates the result and returns an Engine. Zero
// fields take their defaults; negative ones are rejected.
func New(opts Options) (*Engine, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the effective options, defaults included.
func (e *Engine) Options() Options {
	return e.opts
}

// Candidates tokenizes each label's concatenated texts and returns its top-K
// n-grams. Labels are independent here, so they are spread over Workers
// goroutines; output order always matches corpora.
func (e *Engine) Candidates(corpora []Corpus) []rank.LabelEntries {
	type job struct {
		idx    int
		corpus Corpus
	}

	out := make([]rank.LabelEntries, len(corpora))
	jobs := make(chan job)

	var wg sync.WaitGroup
	workers := min(e.opts.Workers, max(1, len(corpora)))
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				out[j.idx] = e.countLabel(j.corpus)
			}
		}()
	}

	for idx, c := range corpora {
		jobs <- job{idx: idx, corpus: c}
	}
	close(jobs)
	wg.Wait()

	return out
}

func (e *Engine) countLabel(c Corpus) rank.LabelEntries {
	e.logf("|- working on [%s] label.", c.Label)
	tokens := e.opts.Tokenizer.Tokenize(strings.Join(c.Texts, " "))
	entries := ngram.Count(tokens, e.opts.N, e.opts.TopK)
	if len(entries) == 0 {
		e.logf("   |- no candidate phrases for [%s] (%d tokens)", c.Label, len(tokens))
	}
	return rank.LabelEntries{Label: c.Label, Entries: entries}
}

// Rank returns every label's ranked phrases using the configured strategy.
func (e *Engine) Rank(corpora []Corpus) []rank.LabelRanking {
	return e.opts.Strategy.Rank(e.Candidates(corpora), e.params())
}

// Filters ranks corpora and formats one filter query per label.
func (e *Engine) Filters(corpora []Corpus) []query.Filter {
	return e.FiltersFor(e.Rank(corpora))
}

// FiltersFor formats already ranked phrases.
func (e *Engine) FiltersFor(rankings []rank.LabelRanking) []query.Filter {
	filters := query.Build(rankings, e.opts.TopN, e.opts.MaxWords)
	for _, f := range filters {
		e.logf("|- filter query created for label [%s]:", f.Label)
		e.logf("   |- [%s]", f.Query)
	}
	return filters
}

func (e *Engine) params() Params {
	return Params{GlobalN: e.opts.GlobalN, TopK: e.opts.TopK}
}

func (e *Engine) logf(format string, args ...any) {
	if e.opts.Logger != nil {
		e.opts.Logger.Printf(format, args...)
	}
}
