// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the results matching f to dataDir/export.yaml and
// returns the path.
func (s *Store) ExportYAML(ctx context.Context, f ResultFilter) (string, error) {
	entries, err := s.exportEntries(ctx, f)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the results matching f to dataDir/export.json and
// returns the path.
func (s *Store) ExportJSON(ctx context.Context, f ResultFilter) (string, error) {
	entries, err := s.exportEntries(ctx, f)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, f ResultFilter) ([]StoredResult, error) {
	f.MaxResults = exportLimit
	results, err := s.Results(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if results == nil {
		results = []StoredResult{}
	}
	return results, nil
}
