// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocumentClauses holds the clauses extracted from a single document.
// Missing clauses are present with empty text.
type DocumentClauses struct {
	// DocumentID is the file name without extension.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Market is parsed from the file name prefix.
	Market Market `json:"market" yaml:"market"`

	// IsTemplate reports whether the document is a standard template.
	IsTemplate bool `json:"is_template" yaml:"is_template"`

	// SourcePath is the document the clauses were read from.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`

	// Clauses maps attribute keys to the extracted raw text.
	Clauses map[AttributeKey]string `json:"clauses" yaml:"clauses"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ClauseFile is the on-disk mapping form accepted by the classifier: raw
// clause text per (contract, attribute) and per (market, attribute).
type ClauseFile struct {
	Contracts []ContractEntry `json:"contracts" yaml:"contracts"`
	Templates []TemplateEntry `json:"templates" yaml:"templates"`
}

// ContractEntry lists the raw clauses of one contract.
type ContractEntry struct {
	ContractID string                  `json:"contract_id" yaml:"contract_id"`
	Market     string                  `json:"market" yaml:"market"`
	Clauses    map[AttributeKey]string `json:"clauses" yaml:"clauses"`
}

// TemplateEntry lists the raw template clauses of one market.
type TemplateEntry struct {
	Market  string                  `json:"market" yaml:"market"`
	Clauses map[AttributeKey]string `json:"clauses" yaml:"clauses"`
}
