// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"fmt"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

// ClauseSource supplies raw clauses and templates to the engine.
type ClauseSource interface {
	Load(ctx context.Context) ([]types.ClauseInstance, []types.TemplateClause, error)
}

// Sink consumes a finished run report.
type Sink interface {
	Write(ctx context.Context, report *types.RunReport) error
}

// Pipeline wires a ClauseSource through the Engine to one or more Sinks.
type Pipeline struct {
	Source ClauseSource
	Engine *Engine
	Sinks  []Sink
}

// Run loads, classifies, and hands the report to every sink in order. The
// report is returned even when a sink fails.
func (p Pipeline) Run(ctx context.Context) (*types.RunReport, error) {
	clauses, templates, err := p.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading clauses: %w", err)
	}

	report, err := p.Engine.Run(ctx, clauses, templates)
	if err != nil {
		return nil, err
	}

	for _, s := range p.Sinks {
		if err := s.Write(ctx, report); err != nil {
			return report, fmt.Errorf("writing report: %w", err)
		}
	}
	return report, nil
}

// StaticSource serves clauses already held in memory.
type StaticSource struct {
	Clauses   []types.ClauseInstance
	Templates []types.TemplateClause
}

// Load returns the held clauses.
func (s StaticSource) Load(context.Context) ([]types.ClauseInstance, []types.TemplateClause, error) {
	return s.Clauses, s.Templates, nil
}
