// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clause-classifier/internal/report"
	"github.com/pdiddy/clause-classifier/internal/store"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show the results of a classification run",
	Long: `Report prints a stored run as a table (or JSON with --json). Without a
run ID the most recent run is shown. Use --file to read a
classification_results.json or .yaml file instead of the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		r   *types.RunReport
		err error
	)
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		r, err = report.LoadReport(path)
	} else {
		r, err = storedRun(ctx, args)
	}
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return report.FormatJSON(r, cmd.OutOrStdout())
	}
	report.FormatTable(r, cmd.OutOrStdout())
	return nil
}

// storedRun loads the run named in args, or the latest run.
func storedRun(ctx context.Context, args []string) (*types.RunReport, error) {
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	runID := ""
	if len(args) > 0 {
		runID = args[0]
	} else if runID, err = s.LatestRunID(ctx); err != nil {
		return nil, err
	}
	return s.LoadRun(ctx, runID)
}

func init() {
	reportCmd.Flags().String("file", "", "read a classification_results file instead of the history database")
	reportCmd.Flags().Bool("json", false, "output the report as JSON")
	reportCmd.Flags().String("data-dir", "data", "directory containing runs.db")

	rootCmd.AddCommand(reportCmd)
}
