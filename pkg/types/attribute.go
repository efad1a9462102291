// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMarket is returned when a market code is not one of the
// supported jurisdictions.
var ErrUnknownMarket = errors.New("unknown market")

// ErrUnknownAttribute is returned when an attribute key is not part of the
// fixed attribute catalogue.
var ErrUnknownAttribute = errors.New("unknown attribute")

// Market is the jurisdiction that determines which template applies.
type Market string

const (
	MarketTN Market = "TN"
	MarketWA Market = "WA"
)

// Markets lists the supported markets in a stable order.
func Markets() []Market {
	return []Market{MarketTN, MarketWA}
}

// ParseMarket converts a market code to a Market, ignoring case and
// surrounding whitespace.
func ParseMarket(s string) (Market, error) {
	m := Market(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MarketTN, MarketWA:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMarket, s)
}

// AttributeKey is the stable identifier of one of the required contract terms.
type AttributeKey string

const (
	AttrMedicaidTimelyFiling AttributeKey = "medicaid-timely-filing"
	AttrMedicareTimelyFiling AttributeKey = "medicare-timely-filing"
	AttrNoSteerage           AttributeKey = "no-steerage-soc"
	AttrMedicaidFeeSchedule  AttributeKey = "medicaid-fee-schedule"
	AttrMedicareFeeSchedule  AttributeKey = "medicare-fee-schedule"
)

// Attribute describes one of the contract terms subject to classification.
// The set is fixed by business policy.
type Attribute struct {
	// Key is the stable identifier used in every record.
	Key AttributeKey `json:"key" yaml:"key"`

	// Name is the display name used in reports.
	Name string `json:"name" yaml:"name"`

	// SectionContext names the contract section the clause usually lives in.
	SectionContext string `json:"section_context" yaml:"section_context"`

	// Keywords are phrases the extraction collaborator searches for. The first
	// sentence containing any of them is taken as the clause.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

var attributes = []Attribute{
	{
		Key:            AttrMedicaidTimelyFiling,
		Name:           "Medicaid Timely Filing",
		SectionContext: "Submission and Adjudication of Medicaid Claims",
		Keywords:       []string{"shall submit Claims", "Claims to using appropriate", "one hundred twenty (120) days"},
	},
	{
		Key:            AttrMedicareTimelyFiling,
		Name:           "Medicare Timely Filing",
		SectionContext: "Submission and Adjudication of Medicare Advantage Claims",
		Keywords:       []string{"shall submit Claims to", "Coded Service Identifier", "ninety (90) days from the date"},
	},
	{
		Key:            AttrNoSteerage,
		Name:           "No Steerage/SOC",
		SectionContext: "Networks and Provider Panels",
		Keywords:       []string{"eligible to participate only in those Networks", "Participating Provider", "discontinue, or modify new or existing Networks"},
	},
	{
		Key:            AttrMedicaidFeeSchedule,
		Name:           "Medicaid Fee Schedule",
		SectionContext: "Specific Reimbursement Terms",
		Keywords:       []string{"total reimbursement amount", "one hundred percent (100%)", "Fee Schedule A"},
	},
	{
		Key:            AttrMedicareFeeSchedule,
		Name:           "Medicare Fee Schedule",
		SectionContext: "Specific Reimbursement Terms",
		Keywords:       []string{"Covered Services furnished", "Medicare Advantage Network", "lesser of Eligible Charges or the Medicare Advantage Rate"},
	},
}

// Attributes returns a copy of the attribute catalogue in report order.
func Attributes() []Attribute {
	out := make([]Attribute, len(attributes))
	for i, a := range attributes {
		a.Keywords = append([]string(nil), a.Keywords...)
		out[i] = a
	}
	return out
}

// AttributeKeys returns the keys of the catalogue in report order.
func AttributeKeys() []AttributeKey {
	keys := make([]AttributeKey, len(attributes))
	for i, a := range attributes {
		keys[i] = a.Key
	}
	return keys
}

// LookupAttribute returns the catalogue entry for key.
func LookupAttribute(key AttributeKey) (Attribute, bool) {
	for _, a := range Attributes() {
		if a.Key == key {
			return a, true
		}
	}
	return Attribute{}, false
}

// ParseAttributeKey validates an attribute key against the catalogue.
func ParseAttributeKey(s string) (AttributeKey, error) {
	key := AttributeKey(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := LookupAttribute(key); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, s)
	}
	return key, nil
}
