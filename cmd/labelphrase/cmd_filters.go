package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/labelphrase/pkg/labelphrase/export"
)

func newFiltersCmd(rc *rootConfig) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Print one disjunctive filter query per label",
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
			filters := engine.FiltersFor(rankings)

			if exportPath != "" {
				exporter := export.GmailExporter{Writer: export.FileWriter{Path: exportPath}}
				if err := exporter.Export(cmd.Context(), filters); err != nil {
					return err
				}
				rc.logger.Printf("- filters exported to %s", exportPath)
			}
			if err := rc.saveRun(cmd, engine, rankings, filters); err != nil {
				return err
			}
			return writeFilters(cmd.OutOrStdout(), rc.outFormat, filters)
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "Write a Gmail mailFilters.xml file")
	return cmd
}
