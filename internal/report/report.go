// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders run reports for people and machines: JSON and
// YAML files, a terminal table, and a Prometheus textfile.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/clause-classifier/internal/classify"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

// ResultsBase is the file name, without extension, of the written report.
const ResultsBase = "classification_results"

// Supported report formats.
const (
	FormatJSONName = "json"
	FormatYAMLName = "yaml"
)

// FileSink writes the report to Dir in each of Formats.
type FileSink struct {
	Dir     string
	Formats []string
}

// Write implements classify.Sink.
func (s FileSink) Write(_ context.Context, r *types.RunReport) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	formats := s.Formats
	if len(formats) == 0 {
		formats = []string{FormatJSONName}
	}
	for _, f := range formats {
		var (
			data []byte
			err  error
		)
		switch strings.ToLower(f) {
		case FormatJSONName:
			data, err = json.MarshalIndent(r, "", "  ")
		case FormatYAMLName, "yml":
			data, err = yaml.Marshal(r)
		default:
			return fmt.Errorf("unsupported report format %q", f)
		}
		if err != nil {
			return fmt.Errorf("marshaling %s report: %w", f, err)
		}
		path := filepath.Join(s.Dir, ResultsBase+"."+strings.ToLower(f))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// TableSink prints the report table to W.
type TableSink struct {
	W io.Writer
}

// Write implements classify.Sink.
func (s TableSink) Write(_ context.Context, r *types.RunReport) error {
	FormatTable(r, s.W)
	return nil
}

// MetricsSink writes the Prometheus textfile to Path.
type MetricsSink struct {
	Path string
}

// Write implements classify.Sink.
func (s MetricsSink) Write(_ context.Context, r *types.RunReport) error {
	return WriteMetrics(s.Path, r)
}

var (
	_ classify.Sink = FileSink{}
	_ classify.Sink = TableSink{}
	_ classify.Sink = MetricsSink{}
)

// LoadReport reads a report written by FileSink. The format follows the
// file extension.
func LoadReport(path string) (*types.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	var r types.RunReport
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &r)
	default:
		err = yaml.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &r, nil
}

// FormatJSON writes the report as indented JSON to w.
func FormatJSON(r *types.RunReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// FormatTable writes one row per classified pair, the omitted pairs, and
// the run summary.
func FormatTable(r *types.RunReport, w io.Writer) {
	if len(r.Results) == 0 && len(r.Errors) == 0 {
		fmt.Fprintln(w, "No clauses classified.")
		return
	}

	fmt.Fprintf(w, "%-28s  %-24s  %-12s  %-5s  %s\n",
		"Contract", "Attribute", "Label", "Score", "Reason")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, res := range r.Results {
		reason := res.Reason
		if len(res.Evidence) > 0 {
			reason += " (" + strings.Join(res.Evidence, ", ") + ")"
		}
		if res.Error != "" {
			reason += " [" + res.Error + "]"
		}
		fmt.Fprintf(w, "%-28s  %-24s  %-12s  %-5.2f  %s\n",
			truncate(res.ContractID, 28), attributeName(res.AttributeKey), res.Label, res.Score, reason)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "\nOmitted pairs:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %-28s  %-24s  %s\n",
				truncate(e.ContractID, 28), attributeName(e.AttributeKey), e.Error)
		}
	}

	s := r.Summary
	fmt.Fprintf(w, "\nSummary\n")
	fmt.Fprintf(w, "  %-30s %d\n", "Contracts analyzed:", s.TotalContracts)
	fmt.Fprintf(w, "  %-30s %d\n", "Clauses classified:", s.TotalClauses)
	fmt.Fprintf(w, "  %-30s %d\n", "Standard:", s.StandardCount)
	fmt.Fprintf(w, "  %-30s %d\n", "Non-Standard:", s.NonStandardCount)
	fmt.Fprintf(w, "  %-30s %d\n", "Contracts with Non-Standard:", s.ContractsWithNonStandard)
	fmt.Fprintf(w, "  %-30s %d\n", "Extraction missing:", s.ExtractionMissingCount)
	fmt.Fprintf(w, "  %-30s %d\n", "Omitted pairs:", s.OmittedCount)

	if len(s.ByAttribute) > 0 {
		fmt.Fprintf(w, "\nBy attribute\n")
		for _, key := range attributeKeys(s.ByAttribute) {
			c := s.ByAttribute[key]
			fmt.Fprintf(w, "  %-24s  %3d standard  %3d non-standard\n", attributeName(key), c.Standard, c.NonStandard)
		}
	}

	if len(s.NonStandardContracts) > 0 {
		fmt.Fprintf(w, "\nNon-standard contracts: %s\n", strings.Join(s.NonStandardContracts, ", "))
	}
}

// attributeKeys returns the keys of m in catalogue order, unknown keys last.
func attributeKeys(m map[types.AttributeKey]types.LabelCounts) []types.AttributeKey {
	rank := make(map[types.AttributeKey]int)
	for i, k := range types.AttributeKeys() {
		rank[k] = i + 1
	}
	keys := make([]types.AttributeKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank[keys[i]], rank[keys[j]]
		if ri == 0 {
			ri = len(rank) + 1
		}
		if rj == 0 {
			rj = len(rank) + 1
		}
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func attributeName(key types.AttributeKey) string {
	if a, ok := types.LookupAttribute(key); ok {
		return a.Name
	}
	return string(key)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
