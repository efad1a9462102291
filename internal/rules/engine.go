// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules decides Standard vs Non-Standard from a similarity score,
// with a keyword override for borderline scores and a day-period check for
// filing-deadline attributes.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/pdiddy/clause-classifier/internal/normalize"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

// ErrExtractionMissing is returned when the extracted clause text is empty.
// It is a per-pair outcome, distinct from a low-similarity Non-Standard.
var ErrExtractionMissing = errors.New("extraction missing")

// ErrInvalidScore is returned when a score is NaN or outside [0, 1]. It
// signals a broken scorer and should abort the run.
var ErrInvalidScore = errors.New("invalid score")

// Decision is the outcome of applying the policy to one clause.
type Decision struct {
	Label    types.Label
	Reason   string
	Evidence []string
}

// Engine applies one Policy. It holds no mutable state after construction
// and is safe for concurrent use.
type Engine struct {
	policy      Policy
	terms       []string // normalized, in matcher order
	matcher     *ahocorasick.Matcher
	valueChecks map[types.AttributeKey]bool
}

// NewEngine validates p and builds the disqualifying-term matcher.
func NewEngine(p Policy) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		policy:      p,
		valueChecks: make(map[types.AttributeKey]bool, len(p.ValueCheckedAttributes)),
	}

	seen := make(map[string]bool)
	var padded []string
	for _, t := range p.DisqualifyingTerms {
		n := normalize.Normalize(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		e.terms = append(e.terms, n)
		// Padding with spaces restricts hits to whole words.
		padded = append(padded, " "+n+" ")
	}
	if len(padded) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(padded)
	}

	for _, a := range p.ValueCheckedAttributes {
		e.valueChecks[a] = true
	}
	return e, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Classify applies the threshold policy:
//
//	score >= High          -> Standard, "high similarity"
//	score <  Low           -> Non-Standard, "low similarity"
//	Low <= score < High    -> Non-Standard, "disqualifying term present" when a
//	                          term is in extracted but not in template;
//	                          otherwise Standard, "borderline, no override triggered"
//
// Empty extracted text yields ErrExtractionMissing; a score outside [0, 1]
// yields ErrInvalidScore.
func (e *Engine) Classify(score float64, extracted, template string) (Decision, error) {
	if strings.TrimSpace(extracted) == "" {
		return Decision{Label: types.LabelNonStandard, Reason: types.ReasonExtractionMissing}, ErrExtractionMissing
	}
	if !inUnitRange(score) {
		return Decision{}, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}

	switch {
	case score >= e.policy.HighThreshold:
		return Decision{Label: types.LabelStandard, Reason: types.ReasonHighSimilarity}, nil
	case score < e.policy.LowThreshold:
		return Decision{Label: types.LabelNonStandard, Reason: types.ReasonLowSimilarity}, nil
	}

	if added := e.addedTerms(extracted, template); len(added) > 0 {
		return Decision{Label: types.LabelNonStandard, Reason: types.ReasonDisqualifyingTerm, Evidence: added}, nil
	}
	return Decision{Label: types.LabelStandard, Reason: types.ReasonBorderline}, nil
}

// Evaluate runs the day-period check for value-checked attributes before
// deferring to Classify. A contract stating a day period that the template
// does not is Non-Standard regardless of score.
func (e *Engine) Evaluate(attr types.AttributeKey, score float64, extracted, template string) (Decision, error) {
	if strings.TrimSpace(extracted) == "" || !e.valueChecks[attr] {
		return e.Classify(score, extracted, template)
	}
	if !inUnitRange(score) {
		return Decision{}, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	if deviations := dayPeriodDeviations(extracted, template); len(deviations) > 0 {
		return Decision{Label: types.LabelNonStandard, Reason: types.ReasonValueDeviation, Evidence: deviations}, nil
	}
	return e.Classify(score, extracted, template)
}

// Terms returns the normalized disqualifying terms.
func (e *Engine) Terms() []string {
	return append([]string(nil), e.terms...)
}

// addedTerms returns, sorted, the terms present in extracted but absent
// from template.
func (e *Engine) addedTerms(extracted, template string) []string {
	if e.matcher == nil {
		return nil
	}
	inExtracted := e.match(extracted)
	if len(inExtracted) == 0 {
		return nil
	}
	inTemplate := e.match(template)

	var added []string
	for term := range inExtracted {
		if !inTemplate[term] {
			added = append(added, term)
		}
	}
	sort.Strings(added)
	return added
}

func (e *Engine) match(text string) map[string]bool {
	n := normalize.Normalize(text)
	if n == "" {
		return nil
	}
	hits := e.matcher.MatchThreadSafe([]byte(" " + n + " "))
	found := make(map[string]bool, len(hits))
	for _, i := range hits {
		if i >= 0 && i < len(e.terms) {
			found[e.terms[i]] = true
		}
	}
	return found
}

// dayPeriod matches "120 days", "90 day" after normalization, which turns
// "one hundred twenty (120) days" into "one hundred twenty 120 days".
var dayPeriod = regexp.MustCompile(`\b(\d+) (?:calendar |business )?days?\b`)

// dayPeriodDeviations returns the day periods stated in extracted that the
// template never states, formatted as "N days".
func dayPeriodDeviations(extracted, template string) []string {
	want := dayPeriods(template)
	var out []string
	for _, p := range sortedKeys(dayPeriods(extracted)) {
		if !want[p] {
			out = append(out, p+" days")
		}
	}
	return out
}

func dayPeriods(text string) map[string]bool {
	found := make(map[string]bool)
	for _, m := range dayPeriod.FindAllStringSubmatch(normalize.Normalize(text), -1) {
		n := strings.TrimLeft(m[1], "0")
		if n == "" {
			n = "0"
		}
		found[n] = true
	}
	return found
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
