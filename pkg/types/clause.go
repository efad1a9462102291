// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Label is the binary classification of a clause relative to its template.
type Label string

const (
	LabelStandard    Label = "Standard"
	LabelNonStandard Label = "Non-Standard"
)

// Reasons attached to a ClassificationResult.
const (
	ReasonHighSimilarity    = "high similarity"
	ReasonLowSimilarity     = "low similarity"
	ReasonDisqualifyingTerm = "disqualifying term present"
	ReasonBorderline        = "borderline, no override triggered"
	ReasonValueDeviation    = "value deviation"
	ReasonExtractionMissing = "extraction missing"
)

// Error markers recorded against a (contract, attribute) pair.
const (
	ErrorExtractionMissing = "ExtractionMissing"
	ErrorMissingTemplate   = "MissingTemplate"
)

// ClauseInstance is a clause extracted from one contract for one attribute.
// It is immutable once created.
type ClauseInstance struct {
	ContractID     string       `json:"contract_id" yaml:"contract_id"`
	Market         Market       `json:"market" yaml:"market"`
	AttributeKey   AttributeKey `json:"attribute_key" yaml:"attribute_key"`
	RawText        string       `json:"raw_text" yaml:"raw_text"`
	NormalizedText string       `json:"normalized_text" yaml:"normalized_text"`
}

// TemplateClause is the reference wording for one attribute in one market.
// Loaded once per run and shared read-only by every contract of the market.
type TemplateClause struct {
	Market         Market       `json:"market" yaml:"market"`
	AttributeKey   AttributeKey `json:"attribute_key" yaml:"attribute_key"`
	RawText        string       `json:"raw_text" yaml:"raw_text"`
	NormalizedText string       `json:"normalized_text" yaml:"normalized_text"`
}

// SimilarityResult is the score of a clause against its template.
type SimilarityResult struct {
	ContractID   string       `json:"contract_id" yaml:"contract_id"`
	AttributeKey AttributeKey `json:"attribute_key" yaml:"attribute_key"`
	Score        float64      `json:"score" yaml:"score"`
}

// ClassificationResult is produced exactly once per (contract, attribute)
// pair that has a template. It is never mutated after creation.
type ClassificationResult struct {
	ContractID   string       `json:"contract_id" yaml:"contract_id"`
	Market       Market       `json:"market,omitempty" yaml:"market,omitempty"`
	AttributeKey AttributeKey `json:"attribute_key" yaml:"attribute_key"`
	Label        Label        `json:"label" yaml:"label"`
	Score        float64      `json:"score" yaml:"score"`
	Reason       string       `json:"reason" yaml:"reason"`

	// Evidence lists the terms or values that triggered an override.
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	// Error is ErrorExtractionMissing when the clause text was absent.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// PairError marks a (contract, attribute) pair that could not be classified.
type PairError struct {
	ContractID   string       `json:"contract_id" yaml:"contract_id"`
	Market       Market       `json:"market" yaml:"market"`
	AttributeKey AttributeKey `json:"attribute_key" yaml:"attribute_key"`
	Error        string       `json:"error" yaml:"error"`
	Message      string       `json:"message,omitempty" yaml:"message,omitempty"`
}

// LabelCounts holds per-label totals.
type LabelCounts struct {
	Standard    int `json:"standard" yaml:"standard"`
	NonStandard int `json:"nonstandard" yaml:"nonstandard"`
}

// RunSummary is derived by folding over all ClassificationResults of a run.
type RunSummary struct {
	TotalContracts           int `json:"total_contracts" yaml:"total_contracts"`
	TotalClauses             int `json:"total_clauses" yaml:"total_clauses"`
	ContractsWithNonStandard int `json:"contracts_with_nonstandard" yaml:"contracts_with_nonstandard"`
	StandardCount            int `json:"standard_count" yaml:"standard_count"`
	NonStandardCount         int `json:"nonstandard_count" yaml:"nonstandard_count"`

	// ExtractionMissingCount counts Non-Standard results caused by a missing clause.
	ExtractionMissingCount int `json:"extraction_missing_count" yaml:"extraction_missing_count"`

	// OmittedCount counts pairs recorded as PairErrors.
	OmittedCount int `json:"omitted_count" yaml:"omitted_count"`

	// NonStandardContracts lists contract IDs with at least one Non-Standard result, sorted.
	NonStandardContracts []string `json:"nonstandard_contracts" yaml:"nonstandard_contracts"`

	// ByAttribute breaks the label counts down per attribute.
	ByAttribute map[AttributeKey]LabelCounts `json:"by_attribute" yaml:"by_attribute"`
}

// RunReport is the structured output handed to the reporting collaborator.
type RunReport struct {
	RunID      string                 `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time              `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time              `json:"finished_at" yaml:"finished_at"`
	Results    []ClassificationResult `json:"results" yaml:"results"`
	Errors     []PairError            `json:"errors" yaml:"errors"`
	Summary    RunSummary             `json:"summary" yaml:"summary"`
}
