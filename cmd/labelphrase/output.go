package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/labelphrase/pkg/labelphrase/query"
	"github.com/cognicore/labelphrase/pkg/labelphrase/rank"
	"github.com/cognicore/labelphrase/pkg/labelphrase/store"
)

type outputFormat int

const (
	formatTable outputFormat = iota
	formatPlain
	formatJSON
	formatYAML
)

func resolveFormat(flagVal string, stdout *os.File) (outputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(flagVal)) {
	case "table":
		return formatTable, nil
	case "plain":
		return formatPlain, nil
	case "json":
		return formatJSON, nil
	case "yaml":
		return formatYAML, nil
	case "auto", "":
		if stdout != nil && term.IsTerminal(int(stdout.Fd())) {
			return formatTable, nil
		}
		return formatPlain, nil
	default:
		return 0, fmt.Errorf("unknown format %q (use auto|table|plain|json|yaml)", flagVal)
	}
}

type phraseOut struct {
	Phrase string   `json:"phrase" yaml:"phrase"`
	Count  int      `json:"count" yaml:"count"`
	Score  *float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

type labelOut struct {
	Label   string      `json:"label" yaml:"label"`
	Filter  string      `json:"filter,omitempty" yaml:"filter,omitempty"`
	Phrases []phraseOut `json:"phrases" yaml:"phrases"`
}

type runOut struct {
	ID        string     `json:"id" yaml:"id"`
	CreatedAt string     `json:"created_at" yaml:"created_at"`
	Strategy  string     `json:"strategy" yaml:"strategy"`
	N         int        `json:"n" yaml:"n"`
	TopK      int        `json:"top_k" yaml:"top_k"`
	TopN      int        `json:"top_n" yaml:"top_n"`
	MaxWords  int        `json:"max_words" yaml:"max_words"`
	GlobalN   int        `json:"global_n" yaml:"global_n"`
	Labels    []labelOut `json:"labels" yaml:"labels"`
}

func rankingsOut(rankings []rank.LabelRanking) []labelOut {
	out := make([]labelOut, 0, len(rankings))
	for _, r := range rankings {
		lo := labelOut{Label: r.Label, Phrases: make([]phraseOut, 0, len(r.Phrases))}
		for _, p := range r.Phrases {
			po := phraseOut{Phrase: p.Gram.Key(), Count: p.Count}
			if p.Scored {
				score := p.Score
				po.Score = &score
			}
			lo.Phrases = append(lo.Phrases, po)
		}
		out = append(out, lo)
	}
	return out
}

func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %d is not structured", format)
}

func writeRankings(w io.Writer, format outputFormat, rankings []rank.LabelRanking) error {
	switch format {
	case formatJSON, formatYAML:
		return writeStructured(w, format, rankingsOut(rankings))
	case formatPlain:
		// Stable, line-oriented output for piping.
		for _, r := range rankings {
			for i, p := range r.Phrases {
				if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", r.Label, i+1, p.Gram.Key(), p.Count, scoreString(p)); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LABEL\tRANK\tPHRASE\tCOUNT\tSCORE")
		for _, r := range rankings {
			if len(r.Phrases) == 0 {
				fmt.Fprintf(tw, "%s\t-\t(no distinctive phrases)\t\t\n", r.Label)
				continue
			}
			for i, p := range r.Phrases {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n", r.Label, i+1, p.Gram.Key(), p.Count, scoreString(p))
			}
		}
		return tw.Flush()
	}
}

func writeFilters(w io.Writer, format outputFormat, filters []query.Filter) error {
	switch format {
	case formatJSON, formatYAML:
		out := make([]labelOut, 0, len(filters))
		for _, f := range filters {
			out = append(out, labelOut{Label: f.Label, Filter: f.Query, Phrases: []phraseOut{}})
		}
		return writeStructured(w, format, out)
	case formatPlain:
		for _, f := range filters {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", f.Label, f.Query); err != nil {
				return err
			}
		}
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LABEL\tFILTER")
		for _, f := range filters {
			q := f.Query
			if f.Empty() {
				q = "(no distinctive phrases)"
			}
			fmt.Fprintf(tw, "%s\t%s\n", f.Label, q)
		}
		return tw.Flush()
	}
}

func writeRuns(w io.Writer, format outputFormat, runs []store.Run, detail bool) error {
	switch format {
	case formatJSON, formatYAML:
		out := make([]runOut, 0, len(runs))
		for _, r := range runs {
			out = append(out, toRunOut(r))
		}
		return writeStructured(w, format, out)
	case formatPlain:
		for _, r := range runs {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.Strategy, len(r.Labels)); err != nil {
				return err
			}
			if !detail {
				continue
			}
			for _, l := range r.Labels {
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, l.Label, l.Filter); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tCREATED\tSTRATEGY\tN\tTOP-K\tLABELS")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.Strategy, r.Params.N, r.Params.TopK, len(r.Labels))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if !detail {
			return nil
		}
		for _, r := range runs {
			for _, l := range r.Labels {
				fmt.Fprintf(w, "\n[%s] %s\n", l.Label, l.Filter)
				for i, p := range l.Phrases {
					fmt.Fprintf(w, "  %d. %s (count %d, score %.3f)\n", i+1, p.Text, p.Count, p.Score)
				}
			}
		}
		return nil
	}
}

func toRunOut(r store.Run) runOut {
	out := runOut{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		Strategy:  r.Strategy,
		N:         r.Params.N,
		TopK:      r.Params.TopK,
		TopN:      r.Params.TopN,
		MaxWords:  r.Params.MaxWords,
		GlobalN:   r.Params.GlobalN,
		Labels:    make([]labelOut, 0, len(r.Labels)),
	}
	for _, l := range r.Labels {
		lo := labelOut{Label: l.Label, Filter: l.Filter, Phrases: make([]phraseOut, 0, len(l.Phrases))}
		for _, p := range l.Phrases {
			score := p.Score
			lo.Phrases = append(lo.Phrases, phraseOut{Phrase: p.Text, Count: p.Count, Score: &score})
		}
		out.Labels = append(out.Labels, lo)
	}
	return out
}

func scoreString(p rank.Ranked) string {
	if !p.Scored {
		return "-"
	}
	return fmt.Sprintf("%.3f", p.Score)
}
