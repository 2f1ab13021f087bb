package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cognicore/labelphrase/pkg/labelphrase/store"
)

func newHistoryCmd(rc *rootConfig) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, or show one with --run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rc.cfg.DB == "" {
				return usageErr(cmd, errors.New("--db is required"))
			}
			st, err := rc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			var runs []store.Run
			if runID != "" {
				run, err := st.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				runs = []store.Run{run}
			} else {
				runs, err = st.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}
			return writeRuns(cmd.OutOrStdout(), rc.outFormat, runs, runID != "")
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID to show")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 = all)")
	return cmd
}
