// Package exclusive drops phrases that share any word with another label's
// candidate phrases.
package exclusive

import "github.com/cognicore/labelphrase/pkg/labelphrase/rank"

// Filter keeps, for each label, only the phrases with no token in common
// with any phrase of any other label. Input order of labels and phrases is
// preserved. With a single label every phrase survives. Labels are told
// apart by position, so two entries with the same name still compare
// against each other.
func Filter(labels []rank.LabelRanking) []rank.LabelRanking {
	vocab := make([]map[string]struct{}, len(labels))
	for i, l := range labels {
		vocab[i] = tokenSet(l.Phrases)
	}

	out := make([]rank.LabelRanking, 0, len(labels))
	for i, l := range labels {
		others := make(map[string]struct{})
		for j := range labels {
			if j == i {
				continue
			}
			for tok := range vocab[j] {
				others[tok] = struct{}{}
			}
		}

		kept := make([]rank.Ranked, 0, len(l.Phrases))
		for _, p := range l.Phrases {
			if !sharesToken(p, others) {
				kept = append(kept, p)
			}
		}
		out = append(out, rank.LabelRanking{Label: l.Label, Phrases: kept})
	}
	return out
}

func tokenSet(phrases []rank.Ranked) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range phrases {
		for _, tok := range p.Gram {
			set[tok] = struct{}{}
		}
	}
	return set
}

func sharesToken(p rank.Ranked, set map[string]struct{}) bool {
	for _, tok := range p.Gram {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}
