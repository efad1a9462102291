// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity scores a normalized clause against its normalized
// template using TF-IDF vectors and cosine similarity.
//
// Vectors use raw term counts weighted by smoothed IDF,
// idf(t) = ln((1+n)/(1+df(t))) + 1, and are L2-normalized. Terms are summed
// in sorted order so Score(a, b) and Score(b, a) are bit-identical.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/clause-classifier/internal/normalize"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

// Scorer computes a similarity in [0, 1] between two normalized texts.
// Implementations must be symmetric, deterministic and must return 0 when
// either text is empty.
type Scorer interface {
	Score(a, b string) float64
}

// New returns the scorer selected by cfg. Corpus scorers are fitted on docs;
// pair scorers ignore them.
func New(cfg types.SimilarityConfig, docs []string) (Scorer, error) {
	switch cfg.Vocabulary {
	case types.VocabularyPair, "":
		return PairScorer{}, nil
	case types.VocabularyCorpus:
		return NewCorpusScorer(docs), nil
	default:
		return nil, fmt.Errorf("unsupported vocabulary scope %q: use pair or corpus", cfg.Vocabulary)
	}
}

// PairScorer fits the vocabulary on the two compared texts only.
type PairScorer struct{}

// Score returns the cosine similarity of a and b.
func (PairScorer) Score(a, b string) float64 {
	ta, tb := normalize.Tokens(a), normalize.Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if a == b {
		return 1
	}

	ca, cb := counts(ta), counts(tb)
	idf := func(term string) float64 {
		df := 0
		if ca[term] > 0 {
			df++
		}
		if cb[term] > 0 {
			df++
		}
		return smoothIDF(2, df)
	}
	return cosine(ca, cb, idf)
}

// CorpusScorer uses IDF values precomputed over a fixed corpus. Terms that
// never appear in the corpus get the maximum IDF.
type CorpusScorer struct {
	n  int
	df map[string]int
}

// NewCorpusScorer fits IDF over docs, each a normalized text.
func NewCorpusScorer(docs []string) *CorpusScorer {
	s := &CorpusScorer{df: make(map[string]int)}
	for _, d := range docs {
		terms := normalize.Tokens(d)
		if len(terms) == 0 {
			continue
		}
		s.n++
		for t := range counts(terms) {
			s.df[t]++
		}
	}
	return s
}

// Score returns the cosine similarity of a and b under the corpus IDF.
func (s *CorpusScorer) Score(a, b string) float64 {
	ta, tb := normalize.Tokens(a), normalize.Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if a == b {
		return 1
	}
	idf := func(term string) float64 {
		return smoothIDF(s.n, s.df[term])
	}
	return cosine(counts(ta), counts(tb), idf)
}

// DocumentCount returns the number of non-empty documents in the corpus.
func (s *CorpusScorer) DocumentCount() int { return s.n }

func smoothIDF(n, df int) float64 {
	return math.Log(float64(1+n)/float64(1+df)) + 1
}

func counts(terms []string) map[string]int {
	m := make(map[string]int, len(terms))
	for _, t := range terms {
		m[t]++
	}
	return m
}

// cosine computes the cosine of the two TF-IDF vectors. Weights are
// accumulated over the sorted union of terms.
func cosine(ca, cb map[string]int, idf func(string) float64) float64 {
	vocab := make([]string, 0, len(ca)+len(cb))
	for t := range ca {
		vocab = append(vocab, t)
	}
	for t := range cb {
		if _, ok := ca[t]; !ok {
			vocab = append(vocab, t)
		}
	}
	sort.Strings(vocab)

	a := make([]float64, len(vocab))
	b := make([]float64, len(vocab))
	for i, t := range vocab {
		w := idf(t)
		a[i] = float64(ca[t]) * w
		b[i] = float64(cb[t]) * w
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(floats.Dot(a, b) / (na * nb))
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
