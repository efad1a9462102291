// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

func result(contract string, attr types.AttributeKey, label types.Label) types.ClassificationResult {
	return types.ClassificationResult{ContractID: contract, AttributeKey: attr, Label: label}
}

func sampleResults() []types.ClassificationResult {
	var out []types.ClassificationResult
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("TN_contract_%02d", i)
		for j, attr := range types.AttributeKeys() {
			label := types.LabelStandard
			if (i+j)%4 == 0 {
				label = types.LabelNonStandard
			}
			out = append(out, result(id, attr, label))
		}
	}
	return out
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.TotalContracts)
	assert.Zero(t, s.TotalClauses)
	assert.Zero(t, s.ContractsWithNonStandard)
	assert.Zero(t, s.StandardCount)
	assert.Zero(t, s.NonStandardCount)
	assert.Zero(t, s.ExtractionMissingCount)
	assert.Empty(t, s.NonStandardContracts)
	assert.Empty(t, s.ByAttribute)
}

func TestAggregate_Counts(t *testing.T) {
	results := []types.ClassificationResult{
		result("A", types.AttrNoSteerage, types.LabelStandard),
		result("A", types.AttrMedicaidFeeSchedule, types.LabelNonStandard),
		result("B", types.AttrNoSteerage, types.LabelStandard),
		result("B", types.AttrMedicaidFeeSchedule, types.LabelStandard),
		{ContractID: "C", AttributeKey: types.AttrNoSteerage, Label: types.LabelNonStandard,
			Reason: types.ReasonExtractionMissing, Error: types.ErrorExtractionMissing},
	}

	s := Aggregate(results)
	assert.Equal(t, 3, s.TotalContracts)
	assert.Equal(t, 5, s.TotalClauses)
	assert.Equal(t, 3, s.StandardCount)
	assert.Equal(t, 2, s.NonStandardCount)
	assert.Equal(t, 2, s.ContractsWithNonStandard)
	assert.Equal(t, 1, s.ExtractionMissingCount)
	assert.Equal(t, []string{"A", "C"}, s.NonStandardContracts)
	assert.Equal(t, types.LabelCounts{Standard: 2, NonStandard: 1}, s.ByAttribute[types.AttrNoSteerage])
	assert.Equal(t, types.LabelCounts{Standard: 1, NonStandard: 1}, s.ByAttribute[types.AttrMedicaidFeeSchedule])
}

func TestAggregate_PermutationInvariant(t *testing.T) {
	results := sampleResults()
	want := Aggregate(results)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]types.ClassificationResult(nil), results...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Aggregate(shuffled))
	}
}

func TestAggregate_Invariants(t *testing.T) {
	s := Aggregate(sampleResults())
	assert.Equal(t, s.TotalClauses, s.StandardCount+s.NonStandardCount)
	assert.LessOrEqual(t, s.ContractsWithNonStandard, s.TotalContracts)
	assert.Len(t, s.NonStandardContracts, s.ContractsWithNonStandard)
}

func TestWithOmissions(t *testing.T) {
	s := WithOmissions(Aggregate(nil), []types.PairError{{ContractID: "A"}, {ContractID: "B"}})
	assert.Equal(t, 2, s.OmittedCount)
	assert.Zero(t, s.TotalClauses)
}
