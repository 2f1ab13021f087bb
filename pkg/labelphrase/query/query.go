// Package query formats ranked phrases as disjunctive filter queries.
package query

import (
	"strings"

	"github.com/cognicore/labelphrase/pkg/labelphrase/rank"
)

// Filter is the formatted query for one label.
type Filter struct {
	Label   string
	Query   string
	Phrases []string // quoted phrase terms, in query order
}

// Empty reports whether the filter has no phrase terms.
func (f Filter) Empty() bool {
	return len(f.Phrases) == 0
}

// Build formats each label's top topN phrases as `"w1 w2 ..." OR "..."`,
// keeping at most maxWords words per phrase (maxWords < 1 keeps them all).
// The length and syntax limits of whatever consumes the query are not
// checked here.
func Build(labels []rank.LabelRanking, topN, maxWords int) []Filter {
	out := make([]Filter, 0, len(labels))
	for _, l := range labels {
		terms := Terms(l.Phrases, topN, maxWords)
		out = append(out, Filter{
			Label:   l.Label,
			Query:   strings.Join(terms, " OR "),
			Phrases: terms,
		})
	}
	return out
}

// Disjunction is Build for a single phrase list.
func Disjunction(phrases []rank.Ranked, topN, maxWords int) string {
	return strings.Join(Terms(phrases, topN, maxWords), " OR ")
}

// Terms returns the quoted phrase terms for the first topN phrases.
func Terms(phrases []rank.Ranked, topN, maxWords int) []string {
	if topN < 1 {
		return nil
	}
	if len(phrases) > topN {
		phrases = phrases[:topN]
	}
	terms := make([]string, 0, len(phrases))
	for _, p := range phrases {
		words := []string(p.Gram)
		if maxWords > 0 && len(words) > maxWords {
			words = words[:maxWords]
		}
		terms = append(terms, `"`+strings.Join(words, " ")+`"`)
	}
	return terms
}
