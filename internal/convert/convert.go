// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns contract PDFs into plain text so clauses can be
// located by keyword. Converted text is cached next to the extraction
// output and reused while it is newer than its PDF.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Converter turns a document at path into plain text.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Status is the outcome of converting one file.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// TextPath returns the cached text path for a PDF under outDir.
func TextPath(pdfPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(outDir, base+".txt")
}

// ConvertFile converts one PDF into outDir, skipping it when the cached text
// is at least as new as the PDF.
func ConvertFile(ctx context.Context, c Converter, pdfPath, outDir string, w io.Writer) Status {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	txtPath := TextPath(pdfPath, outDir)

	if fresh, err := isFresh(pdfPath, txtPath); err == nil && fresh {
		fmt.Fprintf(w, "skipped:   %s (up to date)\n", base)
		return StatusSkipped
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", base, err)
		return StatusFailed
	}

	text, err := c.Convert(ctx, pdfPath)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", base, err)
		return StatusFailed
	}

	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", base, err)
		return StatusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return StatusConverted
}

// ConvertPaths converts each PDF into outDir, printing per-file status to w
// and returning a summary.
func ConvertPaths(ctx context.Context, c Converter, pdfPaths []string, outDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range pdfPaths {
		switch ConvertFile(ctx, c, p, outDir, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// Cached wraps a Converter with the on-disk text cache used by ConvertFile.
type Cached struct {
	Inner Converter
	Dir   string
}

// Convert returns the cached text for path, converting it first when the
// cache is missing or stale.
func (c Cached) Convert(ctx context.Context, path string) (string, error) {
	txtPath := TextPath(path, c.Dir)
	if fresh, err := isFresh(path, txtPath); err == nil && fresh {
		data, err := os.ReadFile(txtPath)
		if err != nil {
			return "", fmt.Errorf("reading cached text %s: %w", txtPath, err)
		}
		return string(data), nil
	}

	text, err := c.Inner.Convert(ctx, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating text cache: %w", err)
	}
	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing cached text %s: %w", txtPath, err)
	}
	return text, nil
}

// isFresh reports whether outPath exists and is not older than srcPath.
func isFresh(srcPath, outPath string) (bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, err
	}
	outInfo, err := os.Stat(outPath)
	if err != nil {
		return false, err
	}
	return !srcInfo.ModTime().After(outInfo.ModTime()), nil
}
