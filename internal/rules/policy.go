// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"
	"math"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

// Policy is the immutable decision configuration for one market.
type Policy struct {
	// HighThreshold: scores at or above are Standard.
	HighThreshold float64

	// LowThreshold: scores below are Non-Standard.
	LowThreshold float64

	// DisqualifyingTerms are checked for scores in [Low, High).
	DisqualifyingTerms []string

	// ValueCheckedAttributes get the day-period check in Evaluate.
	ValueCheckedAttributes []types.AttributeKey
}

// DefaultPolicy returns the policy built from the package defaults.
func DefaultPolicy() Policy {
	d := types.DefaultConfig().Classification
	return Policy{
		HighThreshold:          d.HighThreshold,
		LowThreshold:           d.LowThreshold,
		DisqualifyingTerms:     d.DisqualifyingTerms,
		ValueCheckedAttributes: d.ValueCheckedAttributes,
	}
}

// Validate rejects thresholds outside [0, 1] and a low threshold above the
// high one.
func (p Policy) Validate() error {
	if !inUnitRange(p.HighThreshold) {
		return fmt.Errorf("high threshold %v out of range [0,1]", p.HighThreshold)
	}
	if !inUnitRange(p.LowThreshold) {
		return fmt.Errorf("low threshold %v out of range [0,1]", p.LowThreshold)
	}
	if p.LowThreshold > p.HighThreshold {
		return fmt.Errorf("low threshold %v exceeds high threshold %v", p.LowThreshold, p.HighThreshold)
	}
	return nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// ResolvePolicy merges the override for market over the defaults in cfg.
// Overrides are looked up case-insensitively.
func ResolvePolicy(cfg types.ClassificationConfig, market types.Market) Policy {
	p := Policy{
		HighThreshold:          cfg.HighThreshold,
		LowThreshold:           cfg.LowThreshold,
		DisqualifyingTerms:     append([]string(nil), cfg.DisqualifyingTerms...),
		ValueCheckedAttributes: append([]types.AttributeKey(nil), cfg.ValueCheckedAttributes...),
	}
	for key, override := range cfg.Markets {
		m, err := types.ParseMarket(key)
		if err != nil || m != market {
			continue
		}
		if override.HighThreshold != nil {
			p.HighThreshold = *override.HighThreshold
		}
		if override.LowThreshold != nil {
			p.LowThreshold = *override.LowThreshold
		}
		if len(override.DisqualifyingTerms) > 0 {
			p.DisqualifyingTerms = append([]string(nil), override.DisqualifyingTerms...)
		}
	}
	return p
}

// Set holds one Engine per market. It is built once per run and read-only
// afterwards, so it can be shared between workers.
type Set struct {
	engines map[types.Market]*Engine
}

// NewSet builds and validates engines for every supported market. Override
// keys that are not supported markets are rejected.
func NewSet(cfg types.ClassificationConfig) (*Set, error) {
	for key := range cfg.Markets {
		if _, err := types.ParseMarket(key); err != nil {
			return nil, fmt.Errorf("market override: %w", err)
		}
	}
	s := &Set{engines: make(map[types.Market]*Engine)}
	for _, m := range types.Markets() {
		e, err := NewEngine(ResolvePolicy(cfg, m))
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", m, err)
		}
		s.engines[m] = e
	}
	return s, nil
}

// For returns the engine of market.
func (s *Set) For(market types.Market) (*Engine, bool) {
	e, ok := s.engines[market]
	return e, ok
}
