// Package rank scores candidate phrases by how rarely their internal
// structure occurs across all labels' candidate pools.
package rank

import (
	"sort"

	"github.com/cognicore/labelphrase/pkg/labelphrase/ngram"
)

// Ranked is a candidate phrase after ranking. Score is only meaningful when
// Scored is set; phrases that only went through counting carry Score 0.
type Ranked struct {
	Gram   ngram.Gram
	Count  int
	Score  float64
	Scored bool
}

// LabelEntries is one label's raw top-K candidate pool.
type LabelEntries struct {
	Label   string
	Entries []ngram.Entry
}

// LabelRanking is one label's ranked phrase list.
type LabelRanking struct {
	Label   string
	Phrases []Ranked
}

// FromEntries converts raw counted entries into unscored ranked phrases,
// preserving order.
func FromEntries(entries []ngram.Entry) []Ranked {
	out := make([]Ranked, 0, len(entries))
	for _, e := range entries {
		out = append(out, Ranked{Gram: e.Gram, Count: e.Count})
	}
	return out
}

// GlobalCounts maps a sub-gram key to the number of times it occurs across
// every label's candidate pool.
type GlobalCounts map[string]int

// Get returns the global count of g, or 0 when g never occurred.
func (gc GlobalCounts) Get(g ngram.Gram) int {
	return gc[g.Key()]
}

// Aggregate re-windows every candidate phrase of every label with width n
// and counts the resulting sub-grams in one shared table. Only candidate
// pools feed the table, never full token streams, so its size is bounded by
// the pool sizes. Which label contributed a sub-gram is not recorded.
func Aggregate(pools map[string][]ngram.Entry, n int) GlobalCounts {
	gc := make(GlobalCounts)
	for _, entries := range pools {
		for _, e := range entries {
			for _, sub := range ngram.Windows(e.Gram, n) {
				gc[sub.Key()]++
			}
		}
	}
	return gc
}

// Uniqueness returns the sum of 1/global count over the width-n sub-grams
// of g. A sub-gram missing from global (or with a non-positive count)
// counts as 1, so the result is never NaN or infinite and never negative.
func Uniqueness(g ngram.Gram, global GlobalCounts, n int) float64 {
	var score float64
	for _, sub := range ngram.Windows(g, n) {
		c := global.Get(sub)
		if c < 1 {
			c = 1
		}
		score += 1 / float64(c)
	}
	return score
}

// Score computes the uniqueness score of each entry, sorts by score
// descending (ties keep input order) and truncates to nCommon entries.
// nCommon < 1 yields nil.
func Score(entries []ngram.Entry, global GlobalCounts, n, nCommon int) []Ranked {
	if nCommon < 1 {
		return nil
	}
	out := make([]Ranked, 0, len(entries))
	for _, e := range entries {
		out = append(out, Ranked{
			Gram:   e.Gram,
			Count:  e.Count,
			Score:  Uniqueness(e.Gram, global, n),
			Scored: true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > nCommon {
		out = out[:nCommon]
	}
	return out
}

// ScoreAll aggregates the global table from every label's pool and scores
// each label against it. Output order follows labels.
func ScoreAll(labels []LabelEntries, n, nCommon int) []LabelRanking {
	pools := make(map[string][]ngram.Entry, len(labels))
	for _, l := range labels {
		pools[l.Label] = append(pools[l.Label], l.Entries...)
	}
	global := Aggregate(pools, n)

	out := make([]LabelRanking, 0, len(labels))
	for _, l := range labels {
		out = append(out, LabelRanking{
			Label:   l.Label,
			Phrases: Score(l.Entries, global, n, nCommon),
		})
	}
	return out
}
