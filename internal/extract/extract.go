// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract locates the clause for each catalogue attribute in
// contract and template documents. The clause is the first sentence that
// contains any of the attribute's keywords.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/clause-classifier/internal/convert"
	"github.com/pdiddy/clause-classifier/internal/logging"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

// clausesSuffix names the per-document output file.
const clausesSuffix = "-clauses.yaml"

// supportedExts lists the document formats the extractor reads.
var supportedExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Extractor finds attribute clauses in documents. It is safe for
// concurrent use.
type Extractor struct {
	conv     convert.Converter
	attrs    []types.Attribute
	matchers map[types.AttributeKey]*ahocorasick.Matcher
	log      logging.Logger
}

// NewExtractor builds one keyword matcher per catalogue attribute. conv may
// be nil, in which case PDF documents fail to extract.
func NewExtractor(conv convert.Converter, log logging.Logger) *Extractor {
	if log == nil {
		log = logging.NewNop()
	}
	x := &Extractor{
		conv:     conv,
		attrs:    types.Attributes(),
		matchers: make(map[types.AttributeKey]*ahocorasick.Matcher),
		log:      log,
	}
	for _, a := range x.attrs {
		kws := make([]string, len(a.Keywords))
		for i, k := range a.Keywords {
			kws[i] = strings.ToLower(collapseSpace(k))
		}
		x.matchers[a.Key] = ahocorasick.NewStringMatcher(kws)
	}
	return x
}

// FindClauses returns the first matching sentence for every catalogue
// attribute. Attributes with no match map to the empty string.
func (x *Extractor) FindClauses(text string) map[types.AttributeKey]string {
	sentences := Sentences(text)
	lowered := make([][]byte, len(sentences))
	for i, s := range sentences {
		lowered[i] = []byte(strings.ToLower(s))
	}

	out := make(map[types.AttributeKey]string, len(x.attrs))
	for _, a := range x.attrs {
		m := x.matchers[a.Key]
		out[a.Key] = ""
		for i, s := range lowered {
			if len(m.MatchThreadSafe(s)) > 0 {
				out[a.Key] = sentences[i]
				break
			}
		}
	}
	return out
}

// ExtractDocument reads the document at path and finds its clauses.
func (x *Extractor) ExtractDocument(ctx context.Context, path string) (*types.DocumentClauses, error) {
	id, market, isTemplate, err := ParseDocumentName(path)
	if err != nil {
		return nil, err
	}

	text, err := ReadDocument(ctx, path, x.conv)
	if err != nil {
		return nil, err
	}

	dc := &types.DocumentClauses{
		DocumentID: id,
		Market:     market,
		IsTemplate: isTemplate,
		SourcePath: path,
		Clauses:    x.FindClauses(text),
	}
	if strings.TrimSpace(text) == "" {
		dc.Error = "no text extracted"
	}
	return dc, nil
}

// ExtractAll processes every supported document in the contracts and
// templates directories and writes one clauses file per document to
// cfg.ExtractedDir. Documents whose output is newer than the source are
// skipped.
func (x *Extractor) ExtractAll(ctx context.Context, cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	if err := os.MkdirAll(cfg.ExtractedDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	paths, err := documentPaths(cfg.ContractsDir, cfg.TemplatesDir)
	if err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		docID := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		outPath := filepath.Join(cfg.ExtractedDir, docID+clausesSuffix)

		changed, err := hasChanged(p, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}

		dc, err := x.ExtractDocument(ctx, p)
		if err != nil {
			x.log.Warn("extraction failed", logging.String("document", docID), logging.Err(err))
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if err := WriteClauses(outPath, dc); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", docID, err)
			summary.Failed++
			continue
		}

		found := 0
		for _, c := range dc.Clauses {
			if c != "" {
				found++
			}
		}
		x.log.Debug("document extracted",
			logging.String("document", docID),
			logging.String("market", string(dc.Market)),
			logging.Bool("template", dc.IsTemplate),
			logging.Int("clauses", found))
		fmt.Fprintf(w, "extracted %s (%d/%d clauses)\n", docID, found, len(dc.Clauses))
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// ParseDocumentName derives the document ID, market, and template flag
// from a file name such as "TN_Provider_Agreement_03.pdf" or
// "WA_Standard_Template.txt".
func ParseDocumentName(path string) (id string, market types.Market, isTemplate bool, err error) {
	id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix, _, _ := strings.Cut(id, "_")
	market, err = types.ParseMarket(prefix)
	if err != nil {
		return "", "", false, fmt.Errorf("document %s: %w", id, err)
	}
	return id, market, strings.Contains(strings.ToLower(id), "template"), nil
}

// documentPaths lists supported documents in each directory, sorted and
// without duplicates. Missing directories are an error; an empty name is
// ignored.
func documentPaths(dirs ...string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, dir := range dirs {
		if dir == "" || seen[filepath.Clean(dir)] {
			continue
		}
		seen[filepath.Clean(dir)] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading document directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !supportedExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// hasChanged reports whether the source document is newer than the output
// file. Returns true if the output does not exist.
func hasChanged(srcPath, outPath string) (bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, fmt.Errorf("stat document %s: %w", srcPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return srcInfo.ModTime().After(outInfo.ModTime()), nil
}

// WriteClauses marshals the extracted clauses of one document to YAML.
func WriteClauses(path string, dc *types.DocumentClauses) error {
	data, err := yaml.Marshal(dc)
	if err != nil {
		return fmt.Errorf("marshaling clauses: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
