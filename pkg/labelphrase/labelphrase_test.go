package labelphrase

import (
	"bytes"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
	"github.com/cognicore/labelphrase/pkg/labelphrase/rank"
)

func sampleCorpora() []Corpus {
	return []Corpus{
		{Label: "shipping", Texts: []string{
			"Your package has shipped. Track your package online.",
			"Good news: your package has shipped and arrives soon.",
			"Your package has shipped from our warehouse today.",
		}},
		{Label: "receipts", Texts: []string{
			"Payment received, thank you for your order total.",
			"Payment received for invoice, thank you for shopping.",
		}},
		{Label: "newsletter", Texts: []string{
			"Weekly digest of stories you may have missed this week.",
			"Weekly digest of stories picked for you by editors.",
		}},
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()

	if opts.N != DefaultN || opts.TopK != DefaultTopK || opts.TopN != DefaultTopN {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.MaxWords != opts.N || opts.GlobalN != opts.N {
		t.Errorf("MaxWords and GlobalN should default to N: %+v", opts)
	}
	if opts.Workers != 1 || opts.Tokenizer == nil {
		t.Errorf("workers/tokenizer not defaulted: %+v", opts)
	}
	if opts.Strategy.Name() != StrategyScored {
		t.Errorf("default strategy = %s", opts.Strategy.Name())
	}

	opts = Options{N: 3}.WithDefaults()
	if opts.MaxWords != 3 || opts.GlobalN != 3 {
		t.Errorf("MaxWords/GlobalN should follow N=3: %+v", opts)
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := []Options{
		{N: -1},
		{TopK: -1},
		{TopN: -2},
		{MaxWords: -1},
		{GlobalN: -1},
		{Workers: -3},
	}
	for _, opts := range bad {
		_, err := New(opts)
		if !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("New(%+v) error = %v, want ErrInvalidConfig", opts, err)
		}
	}

	if _, err := New(Options{}); err != nil {
		t.Errorf("zero options should be valid: %v", err)
	}
	if err := (Options{}).Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Validate without defaults should reject N = 0, got %v", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	engine, err := New(Options{})
	if err != nil {
		t.Fatalf("New(Options{}): %v", err)
	}
	opts := engine.Options()
	if opts.N != DefaultN || opts.TopK != DefaultTopK || opts.TopN != DefaultTopN {
		t.Errorf("New(Options{}) = N %d, TopK %d, TopN %d; want %d, %d, %d",
			opts.N, opts.TopK, opts.TopN, DefaultN, DefaultTopK, DefaultTopN)
	}
	if opts.MaxWords != DefaultN || opts.GlobalN != DefaultN || opts.Workers != 1 {
		t.Errorf("derived defaults wrong: %+v", opts)
	}

	engine, err = New(Options{N: 3})
	if err != nil {
		t.Fatalf("New(Options{N: 3}): %v", err)
	}
	opts = engine.Options()
	if opts.N != 3 || opts.TopK != DefaultTopK || opts.TopN != DefaultTopN || opts.MaxWords != 3 || opts.GlobalN != 3 {
		t.Errorf("partial options not defaulted: %+v", opts)
	}
}

func TestEngineRankScored(t *testing.T) {
	engine, err := New(Options{N: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rankings := engine.Rank(sampleCorpora())
	if len(rankings) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(rankings))
	}
	for i, want := range []string{"shipping", "receipts", "newsletter"} {
		if rankings[i].Label != want {
			t.Errorf("rankings[%d] = %s, want %s", i, rankings[i].Label, want)
		}
	}
	for _, r := range rankings {
		if len(r.Phrases) == 0 || len(r.Phrases) > DefaultTopK {
			t.Errorf("%s: %d phrases", r.Label, len(r.Phrases))
		}
		for i, p := range r.Phrases {
			if !p.Scored || p.Score <= 0 {
				t.Errorf("%s phrase %q not scored", r.Label, p.Gram.Key())
			}
			if p.Gram.Len() != 3 {
				t.Errorf("%s phrase %q has %d words", r.Label, p.Gram.Key(), p.Gram.Len())
			}
			if i > 0 && p.Score > r.Phrases[i-1].Score {
				t.Errorf("%s: scores not descending", r.Label)
			}
		}
	}
}

func TestEngineRankExclusive(t *testing.T) {
	engine, err := New(Options{N: 3, Strategy: Exclusive{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rankings := engine.Rank(sampleCorpora())
	seen := make(map[string]string)
	for _, r := range rankings {
		for _, p := range r.Phrases {
			if p.Scored {
				t.Errorf("exclusive strategy should not score")
			}
			for _, tok := range p.Gram {
				if owner, ok := seen[tok]; ok && owner != r.Label {
					t.Errorf("token %q kept by both %s and %s", tok, owner, r.Label)
				}
				seen[tok] = r.Label
			}
		}
	}

	// "your" appears in shipping and receipts pools, so no surviving phrase
	// contains it.
	if _, ok := seen["your"]; ok {
		t.Error("shared token 'your' survived the exclusivity filter")
	}
}

func TestEngineRankScoredExclusive(t *testing.T) {
	engine, err := New(Options{N: 3, Strategy: ScoredExclusive{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, r := range engine.Rank(sampleCorpora()) {
		for _, p := range r.Phrases {
			if !p.Scored {
				t.Errorf("%s phrase %q should carry a score", r.Label, p.Gram.Key())
			}
			for _, tok := range p.Gram {
				if tok == "your" {
					t.Errorf("%s kept shared token in %q", r.Label, p.Gram.Key())
				}
			}
		}
	}
}

func TestEngineWorkersDeterministic(t *testing.T) {
	single, err := New(Options{N: 2, Workers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	parallel, err := New(Options{N: 2, Workers: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	corpora := sampleCorpora()
	a := single.Rank(corpora)
	b := parallel.Rank(corpora)
	if !reflect.DeepEqual(a, b) {
		t.Error("worker count changed the result")
	}
}

func TestEngineFilters(t *testing.T) {
	var buf bytes.Buffer
	engine, err := New(Options{N: 3, TopN: 2, MaxWords: 2, Logger: log.New(&buf, "", 0)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	filters := engine.Filters(sampleCorpora())
	if len(filters) != 3 {
		t.Fatalf("expected 3 filters, got %d", len(filters))
	}
	for _, f := range filters {
		if len(f.Phrases) == 0 || len(f.Phrases) > 2 {
			t.Errorf("%s: %d phrases", f.Label, len(f.Phrases))
		}
		for _, term := range f.Phrases {
			if words := strings.Fields(strings.Trim(term, `"`)); len(words) != 2 {
				t.Errorf("%s: term %s should have 2 words", f.Label, term)
			}
		}
		if f.Query != strings.Join(f.Phrases, " OR ") {
			t.Errorf("%s: query %q", f.Label, f.Query)
		}
	}

	logged := buf.String()
	if !strings.Contains(logged, "|- working on [shipping] label.") {
		t.Errorf("progress not logged:\n%s", logged)
	}
	if !strings.Contains(logged, "|- filter query created for label [newsletter]:") {
		t.Errorf("filter not logged:\n%s", logged)
	}
}

func TestEngineShortCorpus(t *testing.T) {
	engine, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rankings := engine.Rank([]Corpus{
		{Label: "tiny", Texts: []string{"too short"}},
		{Label: "none"},
	})
	for _, r := range rankings {
		if len(r.Phrases) != 0 {
			t.Errorf("%s should have no phrases, got %d", r.Label, len(r.Phrases))
		}
	}
	for _, f := range engine.FiltersFor(rankings) {
		if f.Query != "" {
			t.Errorf("%s: expected empty query, got %q", f.Label, f.Query)
		}
	}
}

func TestCandidatesJoinTexts(t *testing.T) {
	engine, err := New(Options{N: 2, TopK: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := engine.Candidates([]Corpus{{Label: "x", Texts: []string{"alpha", "beta"}}})
	if len(got) != 1 || len(got[0].Entries) != 1 {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if key := got[0].Entries[0].Gram.Key(); key != "alpha beta" {
		t.Errorf("bigram across texts = %q", key)
	}

	got = engine.Candidates([]Corpus{{Label: "x", Texts: []string{"gamma delta", "gamma delta"}}})
	if key := got[0].Entries[0].Gram.Key(); key != "gamma delta" || got[0].Entries[0].Count != 2 {
		t.Errorf("top bigram = %q (%d)", key, got[0].Entries[0].Count)
	}
}

func TestStrategyByName(t *testing.T) {
	cases := map[string]string{
		"":                 StrategyScored,
		"scored":           StrategyScored,
		"Exclusive":        StrategyExclusive,
		"scored-exclusive": StrategyScoredExclusive,
	}
	for name, want := range cases {
		s, err := StrategyByName(name)
		if err != nil {
			t.Errorf("StrategyByName(%q): %v", name, err)
			continue
		}
		if s.Name() != want {
			t.Errorf("StrategyByName(%q) = %s, want %s", name, s.Name(), want)
		}
	}

	if _, err := StrategyByName("bogus"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestStrategiesDoNotMutatePools(t *testing.T) {
	engine, err := New(Options{N: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pools := engine.Candidates(sampleCorpora())

	before := make([]rank.LabelEntries, len(pools))
	for i, p := range pools {
		before[i] = rank.LabelEntries{Label: p.Label, Entries: append(p.Entries[:0:0], p.Entries...)}
	}

	for _, s := range []Strategy{Scored{}, Exclusive{}, ScoredExclusive{}} {
		s.Rank(pools, Params{GlobalN: 2, TopK: 5})
	}
	if !reflect.DeepEqual(before, pools) {
		t.Error("a strategy modified the candidate pools")
	}
}
