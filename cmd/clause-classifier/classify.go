// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clause-classifier/internal/classify"
	"github.com/pdiddy/clause-classifier/internal/extract"
	"github.com/pdiddy/clause-classifier/internal/logging"
	"github.com/pdiddy/clause-classifier/internal/report"
	"github.com/pdiddy/clause-classifier/internal/secrets"
	"github.com/pdiddy/clause-classifier/internal/store"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label every contract clause Standard or Non-Standard",
	Long: `Classify scores each contract clause against the template clause of the
same market and attribute, then applies the rule policy: high similarity is
Standard, low similarity is Non-Standard, and borderline scores are
Non-Standard only when a disqualifying term or a changed day period is
present.

Clauses are read from the extracted directory, or from a single YAML or JSON
file with --clauses. The report is written to <output-dir>/
classification_results.json (and .yaml with --formats json,yaml), printed as a
table, and recorded in the run history database.`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var source classify.ClauseSource = extract.DirSource{Dir: cfg.Extraction.ExtractedDir}
	if path, _ := cmd.Flags().GetString("clauses"); path != "" {
		source = extract.FileSource{Path: path}
	}

	engine, err := classify.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		out = io.Discard
	}

	sinks := []classify.Sink{
		report.FileSink{Dir: cfg.Report.OutputDir, Formats: cfg.Report.Formats},
		report.TableSink{W: out},
	}
	if cfg.Report.MetricsFile != "" {
		sinks = append(sinks, report.MetricsSink{Path: cfg.Report.MetricsFile})
	}
	if noStore, _ := cmd.Flags().GetBool("no-store"); noStore {
		cfg.Store.Enabled = false
	}
	if cfg.Store.Enabled {
		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		sinks = append(sinks, historySink{s})
	}
	if cfg.Report.WebhookURL != "" {
		token, err := secrets.Get(cfg.SecretsDir, secrets.WebhookToken, logger)
		if err != nil {
			return err
		}
		sinks = append(sinks, report.WebhookSink{
			URL:        cfg.Report.WebhookURL,
			Token:      token,
			MaxRetries: cfg.Report.WebhookRetries,
			Log:        logger,
		})
	}

	p := classify.Pipeline{Source: source, Engine: engine, Sinks: sinks}
	r, err := p.Run(ctx)
	if err != nil {
		logger.Error("classification failed", logging.Err(err))
		return err
	}

	fmt.Fprintf(out, "\nRun %s written to %s\n", r.RunID, cfg.Report.OutputDir)
	return nil
}

// historySink records runs in the history database.
type historySink struct {
	s *store.Store
}

func (h historySink) Write(ctx context.Context, r *types.RunReport) error {
	return h.s.SaveRun(ctx, r)
}

func init() {
	classifyCmd.Flags().String("clauses", "", "YAML or JSON clause file (default: read the extracted directory)")
	classifyCmd.Flags().String("extracted-dir", "extracted", "directory of extracted clause files")
	classifyCmd.Flags().String("output-dir", "output", "directory for classification_results files")
	classifyCmd.Flags().StringSlice("formats", []string{"json"}, "report formats: json, yaml")
	classifyCmd.Flags().Int("workers", 1, "contracts classified concurrently")
	classifyCmd.Flags().String("vocabulary", "pair", "IDF vocabulary scope: pair or corpus")
	classifyCmd.Flags().Bool("stop-words", false, "remove English stop words before scoring")
	classifyCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	classifyCmd.Flags().String("webhook-url", "", "POST the JSON report to this URL")
	classifyCmd.Flags().String("secrets-dir", "secrets", "directory holding the webhook-token file")
	classifyCmd.Flags().Bool("no-store", false, "do not record the run in the history database")
	classifyCmd.Flags().Bool("quiet", false, "suppress the results table")

	rootCmd.AddCommand(classifyCmd)
}
