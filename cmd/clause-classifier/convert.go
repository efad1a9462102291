// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clause-classifier/internal/container"
	"github.com/pdiddy/clause-classifier/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>...",
	Short: "Convert contract PDFs to plain text",
	Long: `Convert pipes PDF files through the pdftotext container image and writes
the text to <extracted-dir>/text/<name>.txt, the cache extract reads from.
Files whose text is newer than the PDF are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return err
	}
	conv, err := convert.NewPDFTextConverter(ctx, rt, cfg.Extraction.PDFImage)
	if err != nil {
		return err
	}

	outDir := filepath.Join(cfg.Extraction.ExtractedDir, textDir)
	result := convert.ConvertPaths(ctx, conv, args, outDir, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
