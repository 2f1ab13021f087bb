package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/labelphrase/pkg/labelphrase"
	"github.com/cognicore/labelphrase/pkg/labelphrase/query"
	"github.com/cognicore/labelphrase/pkg/labelphrase/rank"
	"github.com/cognicore/labelphrase/pkg/labelphrase/store"
)

func newRankCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Print the ranked distinctive phrases of every label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := rc.buildEngine()
			if err != nil {
				return err
			}
			corpora, err := rc.loadCorpora(cmd)
			if err != nil {
				return err
			}

			rankings := engine.Rank(corpora)
			if err := rc.saveRun(cmd, engine, rankings, nil); err != nil {
				return err
			}
			return writeRankings(cmd.OutOrStdout(), rc.outFormat, rankings)
		},
	}
}

// saveRun records the run when a database is configured.
func (rc *rootConfig) saveRun(cmd *cobra.Command, engine *labelphrase.Engine, rankings []rank.LabelRanking, filters []query.Filter) error {
	st, err := rc.openStore(cmd.Context())
	if err != nil || st == nil {
		return err
	}
	defer st.Close()

	run := newRun(engine.Options(), rankings, filters, time.Now())
	if err := st.SaveRun(cmd.Context(), run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	rc.logger.Printf("- run %s saved to %s", run.ID, rc.cfg.DB)
	return nil
}

// newRun converts engine output into a storable run. filters may be nil.
func newRun(opts labelphrase.Options, rankings []rank.LabelRanking, filters []query.Filter, now time.Time) store.Run {
	run := store.Run{
		ID:        store.NewRunID(now),
		CreatedAt: now,
		Strategy:  opts.Strategy.Name(),
		Params: store.Params{
			N:        opts.N,
			TopK:     opts.TopK,
			TopN:     opts.TopN,
			MaxWords: opts.MaxWords,
			GlobalN:  opts.GlobalN,
		},
	}
	for i, r := range rankings {
		lr := store.LabelResult{Label: r.Label}
		if i < len(filters) {
			lr.Filter = filters[i].Query
		}
		for _, p := range r.Phrases {
			lr.Phrases = append(lr.Phrases, store.Phrase{
				Text:  p.Gram.Key(),
				Count: p.Count,
				Score: p.Score,
			})
		}
		run.Labels = append(run.Labels, lr)
	}
	return run
}
