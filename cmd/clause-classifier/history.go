// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clause-classifier/internal/store"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the run history database (list, results, export)",
	Long: `History reads the SQLite database of past classification runs. Use
subcommands to list runs, query results across runs, or export them.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := s.ListRuns(commandContext(cmd), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(w, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %9s  %7s  %8s  %12s  %7s\n",
		"Run", "Started", "Contracts", "Clauses", "Standard", "Non-Standard", "Omitted")
	fmt.Fprintln(w, strings.Repeat("-", 112))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %9d  %7d  %8d  %12d  %7d\n",
			r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.TotalContracts,
			r.TotalClauses, r.StandardCount, r.NonStandardCount, r.OmittedCount)
	}
	return nil
}

// --- results subcommand ---

var historyResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Query stored results with filters",
	Long: `Results lists stored classification results filtered by run, contract,
attribute, or label. Without --run every run is searched.`,
	RunE: runHistoryResults,
}

func runHistoryResults(cmd *cobra.Command, args []string) error {
	f, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Results(commandContext(cmd), f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(w, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-28s  %-26s  %-12s  %-5s  %s\n",
		"Run", "Contract", "Attribute", "Label", "Score", "Reason")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range results {
		runID := r.RunID
		if len(runID) > 8 {
			runID = runID[:8]
		}
		fmt.Fprintf(w, "%-8s  %-28s  %-26s  %-12s  %-5.2f  %s\n",
			runID, r.ContractID, r.AttributeKey, r.Label, r.Score, r.Reason)
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results to YAML or JSON",
	Long: `Export writes every stored result (or a filtered subset) to
<data-dir>/export.yaml or export.json.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	f, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(commandContext(cmd), f)
	case "json":
		path, err = s.ExportJSON(commandContext(cmd), f)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func filterFromFlags(cmd *cobra.Command) (store.ResultFilter, error) {
	runID, _ := cmd.Flags().GetString("run")
	contractID, _ := cmd.Flags().GetString("contract")
	attr, _ := cmd.Flags().GetString("attribute")
	label, _ := cmd.Flags().GetString("label")
	limit, _ := cmd.Flags().GetInt("limit")

	f := store.ResultFilter{
		RunID:      runID,
		ContractID: contractID,
		MaxResults: limit,
	}
	if attr != "" {
		key, err := types.ParseAttributeKey(attr)
		if err != nil {
			return store.ResultFilter{}, err
		}
		f.AttributeKey = key
	}
	switch strings.ToLower(label) {
	case "":
	case "standard":
		f.Label = types.LabelStandard
	case "non-standard", "nonstandard":
		f.Label = types.LabelNonStandard
	default:
		return store.ResultFilter{}, fmt.Errorf("unknown label %q: use standard or non-standard", label)
	}
	return f, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("run", "", "filter by run ID")
	cmd.Flags().String("contract", "", "filter by contract ID")
	cmd.Flags().String("attribute", "", "filter by attribute key")
	cmd.Flags().String("label", "", "filter by label: standard or non-standard")
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("data-dir", "data", "directory containing runs.db")
	historyCmd.PersistentFlags().Int("max-results", 100, "default query limit")

	historyListCmd.Flags().Int("limit", 0, "maximum runs (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	addFilterFlags(historyResultsCmd)
	historyResultsCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyResultsCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(historyExportCmd)
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyResultsCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
