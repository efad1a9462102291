// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

// FromClauseFile converts the mapping form into engine input. Every contract
// gets one clause per catalogue attribute; attributes missing from the
// mapping become empty clauses so the engine reports them as extraction
// misses. Contracts whose market has no template are kept and surface as
// missing-template pair errors.
func FromClauseFile(cf types.ClauseFile) ([]types.ClauseInstance, []types.TemplateClause, error) {
	var templates []types.TemplateClause
	for _, te := range cf.Templates {
		market, err := types.ParseMarket(te.Market)
		if err != nil {
			return nil, nil, fmt.Errorf("template: %w", err)
		}
		if err := checkKeys(te.Clauses); err != nil {
			return nil, nil, fmt.Errorf("template %s: %w", market, err)
		}
		for _, key := range sortedAttrs(te.Clauses) {
			templates = append(templates, types.TemplateClause{
				Market:       market,
				AttributeKey: key,
				RawText:      te.Clauses[key],
			})
		}
	}

	var clauses []types.ClauseInstance
	seen := make(map[string]bool)
	for _, ce := range cf.Contracts {
		if ce.ContractID == "" {
			return nil, nil, fmt.Errorf("contract entry without contract_id")
		}
		if seen[ce.ContractID] {
			return nil, nil, fmt.Errorf("duplicate contract %q", ce.ContractID)
		}
		seen[ce.ContractID] = true
		if err := checkKeys(ce.Clauses); err != nil {
			return nil, nil, fmt.Errorf("contract %s: %w", ce.ContractID, err)
		}
		market := types.Market(strings.ToUpper(strings.TrimSpace(ce.Market)))
		clauses = append(clauses, contractClauses(ce.ContractID, market, ce.Clauses)...)
	}
	return clauses, templates, nil
}

// FromDocuments converts extracted documents into engine input. Template
// documents contribute the attributes they contain; every other document is
// a contract with one clause per catalogue attribute.
func FromDocuments(docs []types.DocumentClauses) ([]types.ClauseInstance, []types.TemplateClause, error) {
	var (
		clauses   []types.ClauseInstance
		templates []types.TemplateClause
	)
	for _, d := range docs {
		if err := checkKeys(d.Clauses); err != nil {
			return nil, nil, fmt.Errorf("document %s: %w", d.DocumentID, err)
		}
		if d.IsTemplate {
			for _, key := range sortedAttrs(d.Clauses) {
				if strings.TrimSpace(d.Clauses[key]) == "" {
					continue
				}
				templates = append(templates, types.TemplateClause{
					Market:       d.Market,
					AttributeKey: key,
					RawText:      d.Clauses[key],
				})
			}
			continue
		}
		clauses = append(clauses, contractClauses(d.DocumentID, d.Market, d.Clauses)...)
	}
	return clauses, templates, nil
}

func contractClauses(id string, market types.Market, raw map[types.AttributeKey]string) []types.ClauseInstance {
	out := make([]types.ClauseInstance, 0, len(types.AttributeKeys()))
	for _, key := range types.AttributeKeys() {
		out = append(out, types.ClauseInstance{
			ContractID:   id,
			Market:       market,
			AttributeKey: key,
			RawText:      raw[key],
		})
	}
	return out
}

func checkKeys(m map[types.AttributeKey]string) error {
	for key := range m {
		if _, ok := types.LookupAttribute(key); !ok {
			return fmt.Errorf("%w: %q", types.ErrUnknownAttribute, key)
		}
	}
	return nil
}

func sortedAttrs(m map[types.AttributeKey]string) []types.AttributeKey {
	keys := make([]types.AttributeKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return attrOrder(keys[i]) < attrOrder(keys[j]) })
	return keys
}
