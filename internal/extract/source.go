// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/clause-classifier/internal/classify"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

// LoadExtracted reads every clauses file in dir, ordered by document ID.
func LoadExtracted(dir string) ([]types.DocumentClauses, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading extracted directory %s: %w", dir, err)
	}

	var docs []types.DocumentClauses
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), clausesSuffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var dc types.DocumentClauses
		if err := yaml.Unmarshal(data, &dc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		docs = append(docs, dc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].DocumentID < docs[j].DocumentID })
	return docs, nil
}

// LoadClauseFile reads the mapping form of the classifier input. YAML and
// JSON are both accepted.
func LoadClauseFile(path string) (types.ClauseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ClauseFile{}, fmt.Errorf("reading clause file %s: %w", path, err)
	}
	var cf types.ClauseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return types.ClauseFile{}, fmt.Errorf("parsing clause file %s: %w", path, err)
	}
	return cf, nil
}

// DirSource loads clauses previously written by ExtractAll.
type DirSource struct {
	Dir string
}

// Load implements classify.ClauseSource.
func (s DirSource) Load(context.Context) ([]types.ClauseInstance, []types.TemplateClause, error) {
	docs, err := LoadExtracted(s.Dir)
	if err != nil {
		return nil, nil, err
	}
	return classify.FromDocuments(docs)
}

// FileSource loads clauses from a single clause file.
type FileSource struct {
	Path string
}

// Load implements classify.ClauseSource.
func (s FileSource) Load(context.Context) ([]types.ClauseInstance, []types.TemplateClause, error) {
	cf, err := LoadClauseFile(s.Path)
	if err != nil {
		return nil, nil, err
	}
	return classify.FromClauseFile(cf)
}

var (
	_ classify.ClauseSource = DirSource{}
	_ classify.ClauseSource = FileSource{}
)
