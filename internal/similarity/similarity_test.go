// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/clause-classifier/internal/normalize"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

var sampleTexts = []string{
	normalize.Normalize("Provider shall submit Claims within one hundred twenty (120) days from the date the Health Services are rendered."),
	normalize.Normalize("Provider shall submit Claims within three hundred sixty-five (365) days from the date the Health Services are rendered."),
	normalize.Normalize("The total reimbursement amount shall be one hundred percent (100%) of the Fee Schedule A."),
	normalize.Normalize("Except for emergencies, payment is the lesser of Eligible Charges or the Medicare Advantage Rate."),
	"x",
	"alpha beta",
}

func scorers() map[string]Scorer {
	return map[string]Scorer{
		"pair":   PairScorer{},
		"corpus": NewCorpusScorer(sampleTexts),
	}
}

func TestScore_Symmetric(t *testing.T) {
	for name, s := range scorers() {
		t.Run(name, func(t *testing.T) {
			for _, a := range sampleTexts {
				for _, b := range sampleTexts {
					assert.Equal(t, s.Score(a, b), s.Score(b, a), "a=%q b=%q", a, b)
				}
			}
		})
	}
}

func TestScore_SelfSimilarity(t *testing.T) {
	for name, s := range scorers() {
		t.Run(name, func(t *testing.T) {
			for _, x := range sampleTexts {
				assert.Equal(t, 1.0, s.Score(x, x), "x=%q", x)
			}
		})
	}
}

func TestScore_EmptyInput(t *testing.T) {
	for name, s := range scorers() {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0.0, s.Score("", ""))
			for _, x := range sampleTexts {
				assert.Equal(t, 0.0, s.Score("", x))
				assert.Equal(t, 0.0, s.Score(x, ""))
			}
		})
	}
}

func TestScore_Range(t *testing.T) {
	for name, s := range scorers() {
		t.Run(name, func(t *testing.T) {
			for _, a := range sampleTexts {
				for _, b := range sampleTexts {
					v := s.Score(a, b)
					assert.GreaterOrEqual(t, v, 0.0)
					assert.LessOrEqual(t, v, 1.0)
				}
			}
		})
	}
}

func TestPairScorer_KnownValue(t *testing.T) {
	// Matches a TF-IDF vectorizer with smooth IDF fitted on the two texts.
	got := PairScorer{}.Score("alpha beta", "alpha gamma")
	assert.InDelta(t, 0.336097, got, 1e-5)
}

func TestPairScorer_Disjoint(t *testing.T) {
	assert.Equal(t, 0.0, PairScorer{}.Score("alpha beta", "gamma delta"))
}

func TestPairScorer_Ordering(t *testing.T) {
	s := PairScorer{}
	template := sampleTexts[0]
	near := s.Score(template, sampleTexts[1])
	far := s.Score(template, sampleTexts[2])
	assert.Greater(t, near, far)
	assert.Less(t, near, 1.0)
}

func TestScore_DoesNotMutateInputs(t *testing.T) {
	a := "provider shall submit claims"
	b := "provider shall submit"
	aCopy, bCopy := a, b
	PairScorer{}.Score(a, b)
	assert.Equal(t, aCopy, a)
	assert.Equal(t, bCopy, b)
}

func TestCorpusScorer(t *testing.T) {
	s := NewCorpusScorer([]string{"alpha beta", "alpha gamma", "", "delta"})
	assert.Equal(t, 3, s.DocumentCount())

	// Terms unseen in the corpus still score.
	v := s.Score("alpha omega", "alpha omega sigma")
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 1.0)

	// Deterministic across calls.
	assert.Equal(t, s.Score("alpha beta", "alpha gamma"), s.Score("alpha beta", "alpha gamma"))
}

func TestNew(t *testing.T) {
	s, err := New(types.SimilarityConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, PairScorer{}, s)

	s, err = New(types.SimilarityConfig{Vocabulary: types.VocabularyCorpus}, sampleTexts)
	require.NoError(t, err)
	assert.IsType(t, &CorpusScorer{}, s)

	_, err = New(types.SimilarityConfig{Vocabulary: "bm25"}, nil)
	assert.Error(t, err)
}

func TestCosine(t *testing.T) {
	unit := func(string) float64 { return 1 }
	weights := map[string]float64{"a": 2, "b": 1}
	idf := func(t string) float64 { return weights[t] }

	assert.InDelta(t, 1.0, cosine(map[string]int{"a": 1, "b": 2}, map[string]int{"a": 2, "b": 4}, unit), 1e-12)
	assert.Zero(t, cosine(map[string]int{"a": 1}, map[string]int{"b": 1}, unit))
	assert.Zero(t, cosine(map[string]int{}, map[string]int{"b": 1}, unit))
	// a=(2,1) b=(2,0): 4 / (sqrt(5) * 2)
	assert.InDelta(t, 0.894427191, cosine(map[string]int{"a": 1, "b": 1}, map[string]int{"a": 1}, idf), 1e-9)
}
