package labelphrase

import (
	"fmt"
	"strings"

	"github.com/cognicore/labelphrase/pkg/labelphrase/exclusive"
	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
	"github.com/cognicore/labelphrase/pkg/labelphrase/rank"
)

// Params carries the knobs a Strategy needs beyond the candidate pools.
type Params struct {
	GlobalN int // sub-gram window for the global table
	TopK    int // cap applied after scoring
}

// Strategy turns every label's candidate pool into a ranked phrase list.
// Implementations must not mutate the pools.
type Strategy interface {
	Name() string
	Rank(pools []rank.LabelEntries, p Params) []rank.LabelRanking
}

// Strategy names accepted by StrategyByName.
const (
	StrategyScored          = "scored"
	StrategyExclusive       = "exclusive"
	StrategyScoredExclusive = "scored-exclusive"
)

// Scored ranks phrases by uniqueness score against the global sub-gram table.
type Scored struct{}

// Name returns StrategyScored.
func (Scored) Name() string { return StrategyScored }

// Rank scores every pool against the sub-grams of all pools and keeps the
// TopK best of each label.
func (Scored) Rank(pools []rank.LabelEntries, p Params) []rank.LabelRanking {
	return rank.ScoreAll(pools, p.GlobalN, p.TopK)
}

// Exclusive keeps count order and drops every phrase sharing a word with
// another label's candidates.
type Exclusive struct{}

// Name returns StrategyExclusive.
func (Exclusive) Name() string { return StrategyExclusive }

// Rank keeps each pool in count order minus the phrases that share a word
// with another label's pool. Phrases are left unscored.
func (Exclusive) Rank(pools []rank.LabelEntries, p Params) []rank.LabelRanking {
	rankings := make([]rank.LabelRanking, 0, len(pools))
	for _, l := range pools {
		rankings = append(rankings, rank.LabelRanking{Label: l.Label, Phrases: rank.FromEntries(l.Entries)})
	}
	return exclusive.Filter(rankings)
}

// ScoredExclusive scores first, then applies the exclusivity filter to the
// scored lists.
type ScoredExclusive struct{}

// Name returns StrategyScoredExclusive.
func (ScoredExclusive) Name() string { return StrategyScoredExclusive }

// Rank runs Scored, then filters the scored lists for exclusivity.
func (ScoredExclusive) Rank(pools []rank.LabelEntries, p Params) []rank.LabelRanking {
	return exclusive.Filter(Scored{}.Rank(pools, p))
}

// StrategyByName resolves a strategy name, case-insensitively.
// An empty name selects Scored.
func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyScored:
		return Scored{}, nil
	case StrategyExclusive:
		return Exclusive{}, nil
	case StrategyScoredExclusive:
		return ScoredExclusive{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (use %s|%s|%s): %w",
			name, StrategyScored, StrategyExclusive, StrategyScoredExclusive, internalerr.ErrInvalidConfig)
	}
}
