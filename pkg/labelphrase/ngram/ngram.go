// Package ngram counts fixed-width token windows.
package ngram

import (
	"sort"
	"strings"
)

// Gram is an ordered tuple of consecutive tokens. Two grams are equal when
// their tokens are equal position by position; use Key for map lookups.
type Gram []string

// Key returns the value identity of the gram. Tokens never contain
// whitespace, so joining with a single space is injective.
func (g Gram) Key() string {
	return strings.Join(g, " ")
}

// Len returns the number of tokens in the gram.
func (g Gram) Len() int {
	return len(g)
}

// Equal reports whether g and other hold the same tokens in the same order.
func (g Gram) Equal(other Gram) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

// Entry pairs a gram with its occurrence count.
type Entry struct {
	Gram  Gram
	Count int
}

// Windows returns every contiguous length-n window of tokens, in order.
// It returns nil when n < 1 or len(tokens) < n.
func Windows(tokens []string, n int) []Gram {
	if n < 1 || len(tokens) < n {
		return nil
	}
	grams := make([]Gram, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		g := make(Gram, n)
		copy(g, tokens[i:i+n])
		grams = append(grams, g)
	}
	return grams
}

// Table counts grams and remembers the order in which each distinct gram was
// first seen. The zero value is not usable; call NewTable.
type Table struct {
	counts map[string]int
	order  []Gram
}

// NewTable creates an empty frequency table.
func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// Add increments the count of g by one.
func (t *Table) Add(g Gram) {
	t.AddN(g, 1)
}

// AddN increments the count of g by n.
func (t *Table) AddN(g Gram, n int) {
	key := g.Key()
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, g)
	}
	t.counts[key] += n
}

// Count returns the count of g, or 0 when g was never added.
func (t *Table) Count(g Gram) int {
	return t.counts[g.Key()]
}

// Len returns the number of distinct grams.
func (t *Table) Len() int {
	return len(t.order)
}

// Entries returns every distinct gram with its count in first-seen order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, g := range t.order {
		out = append(out, Entry{Gram: g, Count: t.counts[g.Key()]})
	}
	return out
}

// MostCommon returns up to k entries ordered by count descending. Ties keep
// first-seen order. k < 1 yields nil.
func (t *Table) MostCommon(k int) []Entry {
	if k < 1 {
		return nil
	}
	entries := t.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// Count slides a width-n window over tokens and returns the topK most
// frequent grams, count descending with ties in order of first occurrence.
// Fewer than n tokens, n < 1 or topK < 1 yield an empty result.
func Count(tokens []string, n, topK int) []Entry {
	t := NewTable()
	for _, g := range Windows(tokens, n) {
		t.Add(g)
	}
	return t.MostCommon(topK)
}
