// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

func ptr(v float64) *float64 { return &v }

func TestResolvePolicy(t *testing.T) {
	cfg := types.DefaultConfig().Classification
	cfg.Markets = map[string]types.MarketPolicy{
		// viper lower-cases map keys
		"wa": {HighThreshold: ptr(0.95), DisqualifyingTerms: []string{"provided however"}},
	}

	tn := ResolvePolicy(cfg, types.MarketTN)
	assert.Equal(t, types.DefaultHighThreshold, tn.HighThreshold)
	assert.Equal(t, types.DefaultLowThreshold, tn.LowThreshold)
	assert.Equal(t, types.DefaultDisqualifyingTerms(), tn.DisqualifyingTerms)

	wa := ResolvePolicy(cfg, types.MarketWA)
	assert.Equal(t, 0.95, wa.HighThreshold)
	assert.Equal(t, types.DefaultLowThreshold, wa.LowThreshold)
	assert.Equal(t, []string{"provided however"}, wa.DisqualifyingTerms)
}

func TestNewSet(t *testing.T) {
	cfg := types.DefaultConfig().Classification
	cfg.Markets = map[string]types.MarketPolicy{"TN": {LowThreshold: ptr(0.6)}}

	s, err := NewSet(cfg)
	require.NoError(t, err)

	tn, ok := s.For(types.MarketTN)
	require.True(t, ok)
	assert.Equal(t, 0.6, tn.Policy().LowThreshold)

	wa, ok := s.For(types.MarketWA)
	require.True(t, ok)
	assert.Equal(t, types.DefaultLowThreshold, wa.Policy().LowThreshold)

	_, ok = s.For("CA")
	assert.False(t, ok)
}

func TestNewSet_Rejects(t *testing.T) {
	cfg := types.DefaultConfig().Classification
	cfg.Markets = map[string]types.MarketPolicy{"CA": {}}
	_, err := NewSet(cfg)
	assert.ErrorIs(t, err, types.ErrUnknownMarket)

	cfg = types.DefaultConfig().Classification
	cfg.Markets = map[string]types.MarketPolicy{"WA": {LowThreshold: ptr(0.99)}}
	_, err = NewSet(cfg)
	assert.Error(t, err)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, 0.88, p.HighThreshold)
	assert.Equal(t, 0.70, p.LowThreshold)
	assert.Contains(t, p.DisqualifyingTerms, "notwithstanding")
}
