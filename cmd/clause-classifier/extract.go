// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clause-classifier/internal/container"
	"github.com/pdiddy/clause-classifier/internal/convert"
	"github.com/pdiddy/clause-classifier/internal/extract"
	"github.com/pdiddy/clause-classifier/internal/logging"
)

// textDir is the subdirectory of the extracted dir that caches PDF text.
const textDir = "text"

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Find the clause for each attribute in contract and template documents",
	Long: `Extract reads every document in the contracts and templates directories
(.txt, .md, .html, .pdf) and, for each attribute, takes the first sentence
containing one of the attribute's keywords as its clause. Results are written
to <extracted-dir>/<document>-clauses.yaml. Documents are named
<MARKET>_<name>; names containing "Template" are market templates.

PDFs are converted to text with a pdftotext container image run by docker or
podman. Unchanged documents are skipped on subsequent runs.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	noPDF, _ := cmd.Flags().GetBool("no-pdf")
	var conv convert.Converter
	if !noPDF {
		c, err := pdfConverter(ctx)
		if err != nil {
			logger.Warn("PDF conversion unavailable, PDF documents will fail", logging.Err(err))
		} else {
			conv = c
		}
	}

	x := extract.NewExtractor(conv, logger)
	summary, err := x.ExtractAll(ctx, cfg.Extraction, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}

// pdfConverter returns a cached pdftotext converter backed by the local
// container runtime.
func pdfConverter(ctx context.Context) (convert.Converter, error) {
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return nil, err
	}
	pdf, err := convert.NewPDFTextConverter(ctx, rt, cfg.Extraction.PDFImage)
	if err != nil {
		return nil, err
	}
	return convert.Cached{Inner: pdf, Dir: filepath.Join(cfg.Extraction.ExtractedDir, textDir)}, nil
}

func init() {
	extractCmd.Flags().String("contracts-dir", "contracts", "directory of contract documents")
	extractCmd.Flags().String("templates-dir", "templates", "directory of template documents")
	extractCmd.Flags().String("extracted-dir", "extracted", "output directory for extracted clauses")
	extractCmd.Flags().String("pdf-image", "pdftotext:latest", "container image used to convert PDFs")
	extractCmd.Flags().Bool("no-pdf", false, "skip container runtime detection; PDF documents fail")

	rootCmd.AddCommand(extractCmd)
}
