// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate folds classification results into run-level metrics.
// The fold is order-independent: any permutation of the input yields the
// same RunSummary.
package aggregate

import (
	"sort"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

// Aggregate counts results per label, distinct contracts, and contracts
// with at least one Non-Standard result. Empty input yields a zero summary.
func Aggregate(results []types.ClassificationResult) types.RunSummary {
	contracts := make(map[string]bool)
	nonStandard := make(map[string]bool)
	byAttr := make(map[types.AttributeKey]types.LabelCounts)

	var s types.RunSummary
	for _, r := range results {
		s.TotalClauses++
		contracts[r.ContractID] = true

		counts := byAttr[r.AttributeKey]
		switch r.Label {
		case types.LabelStandard:
			s.StandardCount++
			counts.Standard++
		default:
			s.NonStandardCount++
			counts.NonStandard++
			nonStandard[r.ContractID] = true
		}
		byAttr[r.AttributeKey] = counts

		if r.Error == types.ErrorExtractionMissing {
			s.ExtractionMissingCount++
		}
	}

	s.TotalContracts = len(contracts)
	s.ContractsWithNonStandard = len(nonStandard)
	s.NonStandardContracts = make([]string, 0, len(nonStandard))
	for id := range nonStandard {
		s.NonStandardContracts = append(s.NonStandardContracts, id)
	}
	sort.Strings(s.NonStandardContracts)
	s.ByAttribute = byAttr
	return s
}

// WithOmissions records the number of pairs that could not be classified.
func WithOmissions(s types.RunSummary, errs []types.PairError) types.RunSummary {
	s.OmittedCount = len(errs)
	return s
}
