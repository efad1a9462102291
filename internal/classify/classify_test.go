// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/clause-classifier/internal/rules"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

var templateTexts = map[types.AttributeKey]string{
	types.AttrMedicaidTimelyFiling: "Provider shall submit Claims within one hundred twenty (120) days from the date the Health Services are rendered.",
	types.AttrMedicareTimelyFiling: "Provider shall submit Claims to Health Plan within ninety (90) days from the date of service using the Coded Service Identifier.",
	types.AttrNoSteerage:           "Provider is eligible to participate only in those Networks designated by Health Plan.",
	types.AttrMedicaidFeeSchedule:  "The total reimbursement amount shall be one hundred percent (100%) of Fee Schedule A.",
	types.AttrMedicareFeeSchedule:  "Covered Services furnished to Members of the Medicare Advantage Network are paid at the lesser of Eligible Charges or the Medicare Advantage Rate.",
}

func tnTemplates() []types.TemplateClause {
	var out []types.TemplateClause
	for _, key := range types.AttributeKeys() {
		out = append(out, types.TemplateClause{Market: types.MarketTN, AttributeKey: key, RawText: templateTexts[key]})
	}
	return out
}

// contract copies the template wording, replacing any attributes in override.
func contract(id string, market types.Market, override map[types.AttributeKey]string) []types.ClauseInstance {
	var out []types.ClauseInstance
	for _, key := range types.AttributeKeys() {
		text := templateTexts[key]
		if v, ok := override[key]; ok {
			text = v
		}
		out = append(out, types.ClauseInstance{ContractID: id, Market: market, AttributeKey: key, RawText: text})
	}
	return out
}

func newTestEngine(t *testing.T, cfg types.Config, opts ...Option) *Engine {
	t.Helper()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed }), WithRunID(func() string { return "run-1" })}, opts...)
	e, err := NewEngine(cfg, nil, opts...)
	require.NoError(t, err)
	return e
}

type fixedScorer float64

func (s fixedScorer) Score(string, string) float64 { return float64(s) }

func TestRun_TenContracts(t *testing.T) {
	var clauses []types.ClauseInstance
	for i := 0; i < 10; i++ {
		var override map[types.AttributeKey]string
		if i == 3 {
			override = map[types.AttributeKey]string{types.AttrNoSteerage: "Parking garage hours are posted nightly."}
		}
		clauses = append(clauses, contract(fmt.Sprintf("TN_contract_%02d", i), types.MarketTN, override)...)
	}

	e := newTestEngine(t, types.DefaultConfig())
	report, err := e.Run(context.Background(), clauses, tnTemplates())
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Results, 50)
	assert.Empty(t, report.Errors)

	s := report.Summary
	assert.Equal(t, 10, s.TotalContracts)
	assert.Equal(t, 50, s.TotalClauses)
	assert.Equal(t, s.TotalClauses, s.StandardCount+s.NonStandardCount)
	assert.LessOrEqual(t, s.ContractsWithNonStandard, s.TotalContracts)
	assert.Equal(t, 1, s.ContractsWithNonStandard)
	assert.Equal(t, []string{"TN_contract_03"}, s.NonStandardContracts)

	for _, r := range report.Results {
		if r.ContractID == "TN_contract_03" && r.AttributeKey == types.AttrNoSteerage {
			assert.Equal(t, types.LabelNonStandard, r.Label)
			assert.Equal(t, types.ReasonLowSimilarity, r.Reason)
			continue
		}
		assert.Equal(t, types.LabelStandard, r.Label, "%s %s", r.ContractID, r.AttributeKey)
		assert.Equal(t, types.ReasonHighSimilarity, r.Reason)
		assert.InDelta(t, 1.0, r.Score, 1e-9)
	}

	// Results are ordered by contract, then catalogue attribute order.
	assert.Equal(t, "TN_contract_00", report.Results[0].ContractID)
	assert.Equal(t, types.AttrMedicaidTimelyFiling, report.Results[0].AttributeKey)
	assert.Equal(t, types.AttrMedicareFeeSchedule, report.Results[4].AttributeKey)
}

func TestRun_MissingTemplate(t *testing.T) {
	clauses := append(contract("TN_a", types.MarketTN, nil), contract("WA_b", types.MarketWA, nil)...)

	report, err := newTestEngine(t, types.DefaultConfig()).Run(context.Background(), clauses, tnTemplates())
	require.NoError(t, err)

	assert.Len(t, report.Results, 5)
	require.Len(t, report.Errors, 5)
	for _, pe := range report.Errors {
		assert.Equal(t, "WA_b", pe.ContractID)
		assert.Equal(t, types.ErrorMissingTemplate, pe.Error)
		assert.Contains(t, pe.Message, ErrMissingTemplate.Error())
	}
	assert.Equal(t, 5, report.Summary.OmittedCount)
	assert.Equal(t, 1, report.Summary.TotalContracts)
}

func TestRun_UnknownMarket(t *testing.T) {
	report, err := newTestEngine(t, types.DefaultConfig()).Run(context.Background(), contract("CA_x", "CA", nil), tnTemplates())
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Len(t, report.Errors, 5)
}

func TestRun_ExtractionMissing(t *testing.T) {
	clauses := contract("TN_a", types.MarketTN, map[types.AttributeKey]string{
		types.AttrNoSteerage:          "",
		types.AttrMedicaidFeeSchedule: "[  ] ___",
	})

	report, err := newTestEngine(t, types.DefaultConfig()).Run(context.Background(), clauses, tnTemplates())
	require.NoError(t, err)
	require.Len(t, report.Results, 5)

	var missing int
	for _, r := range report.Results {
		if r.Error == "" {
			continue
		}
		missing++
		assert.Equal(t, types.ErrorExtractionMissing, r.Error)
		assert.Equal(t, types.LabelNonStandard, r.Label)
		assert.Equal(t, types.ReasonExtractionMissing, r.Reason)
		assert.Zero(t, r.Score)
	}
	assert.Equal(t, 2, missing)
	assert.Equal(t, 2, report.Summary.ExtractionMissingCount)
	assert.Equal(t, 2, report.Summary.NonStandardCount)
}

func TestRun_NormalizedTextOnly(t *testing.T) {
	e := newTestEngine(t, types.DefaultConfig())
	norm := e.Normalizer()

	var templates []types.TemplateClause
	var clauses []types.ClauseInstance
	for _, tmpl := range tnTemplates() {
		text := norm.Normalize(tmpl.RawText)
		templates = append(templates, types.TemplateClause{
			Market:         tmpl.Market,
			AttributeKey:   tmpl.AttributeKey,
			NormalizedText: text,
		})
		clauses = append(clauses, types.ClauseInstance{
			ContractID:     "TN_a",
			Market:         types.MarketTN,
			AttributeKey:   tmpl.AttributeKey,
			NormalizedText: text,
		})
	}

	report, err := e.Run(context.Background(), clauses, templates)
	require.NoError(t, err)
	require.Len(t, report.Results, len(templates))
	assert.Empty(t, report.Errors)

	for _, r := range report.Results {
		assert.Empty(t, r.Error, "%s", r.AttributeKey)
		assert.Equal(t, types.LabelStandard, r.Label, "%s", r.AttributeKey)
		assert.Equal(t, types.ReasonHighSimilarity, r.Reason)
		assert.InDelta(t, 1.0, r.Score, 1e-9)
	}
	assert.Zero(t, report.Summary.ExtractionMissingCount)
}

func TestRun_DisqualifyingTerm(t *testing.T) {
	clauses := contract("TN_a", types.MarketTN, map[types.AttributeKey]string{
		types.AttrNoSteerage: templateTexts[types.AttrNoSteerage] + " Notwithstanding the foregoing, Provider may opt out.",
	})

	e := newTestEngine(t, types.DefaultConfig(), WithScorer(fixedScorer(0.8)))
	report, err := e.Run(context.Background(), clauses, tnTemplates())
	require.NoError(t, err)

	for _, r := range report.Results {
		if r.AttributeKey == types.AttrNoSteerage {
			assert.Equal(t, types.LabelNonStandard, r.Label)
			assert.Equal(t, types.ReasonDisqualifyingTerm, r.Reason)
			assert.Equal(t, []string{"notwithstanding"}, r.Evidence)
			continue
		}
		assert.Equal(t, types.LabelStandard, r.Label)
		assert.Equal(t, types.ReasonBorderline, r.Reason)
	}
}

func TestRun_ValueDeviation(t *testing.T) {
	clauses := contract("TN_a", types.MarketTN, map[types.AttributeKey]string{
		types.AttrMedicaidTimelyFiling: "Provider shall submit Claims within three hundred sixty-five (365) days from the date the Health Services are rendered.",
	})

	report, err := newTestEngine(t, types.DefaultConfig()).Run(context.Background(), clauses, tnTemplates())
	require.NoError(t, err)

	r := report.Results[0]
	assert.Equal(t, types.AttrMedicaidTimelyFiling, r.AttributeKey)
	assert.Equal(t, types.LabelNonStandard, r.Label)
	assert.Equal(t, types.ReasonValueDeviation, r.Reason)
	assert.Equal(t, []string{"365 days"}, r.Evidence)
}

func TestRun_InvalidScoreAborts(t *testing.T) {
	e := newTestEngine(t, types.DefaultConfig(), WithScorer(fixedScorer(1.5)))
	report, err := e.Run(context.Background(), contract("TN_a", types.MarketTN, nil), tnTemplates())
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, rules.ErrInvalidScore))
}

func TestRun_DuplicateTemplate(t *testing.T) {
	templates := append(tnTemplates(), types.TemplateClause{Market: types.MarketTN, AttributeKey: types.AttrNoSteerage, RawText: "again"})
	_, err := newTestEngine(t, types.DefaultConfig()).Run(context.Background(), nil, templates)
	assert.ErrorIs(t, err, ErrDuplicateTemplate)
}

func TestRun_Empty(t *testing.T) {
	report, err := newTestEngine(t, types.DefaultConfig()).Run(context.Background(), nil, tnTemplates())
	require.NoError(t, err)
	assert.NotNil(t, report.Results)
	assert.NotNil(t, report.Errors)
	assert.Zero(t, report.Summary.TotalClauses)
	assert.Zero(t, report.Summary.TotalContracts)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestEngine(t, types.DefaultConfig()).Run(ctx, contract("TN_a", types.MarketTN, nil), tnTemplates())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WorkersDeterministic(t *testing.T) {
	var clauses []types.ClauseInstance
	for i := 0; i < 25; i++ {
		override := map[types.AttributeKey]string{}
		if i%3 == 0 {
			override[types.AttrMedicaidFeeSchedule] = "The total reimbursement amount shall be ninety percent (90%) of Fee Schedule B."
		}
		clauses = append(clauses, contract(fmt.Sprintf("TN_%02d", i), types.MarketTN, override)...)
	}

	serial := newTestEngine(t, types.DefaultConfig())
	want, err := serial.Run(context.Background(), clauses, tnTemplates())
	require.NoError(t, err)

	cfg := types.DefaultConfig()
	cfg.Classification.Workers = 4
	parallel := newTestEngine(t, cfg)
	got, err := parallel.Run(context.Background(), clauses, tnTemplates())
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestRun_CorpusVocabulary(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Similarity.Vocabulary = types.VocabularyCorpus

	report, err := newTestEngine(t, cfg).Run(context.Background(), contract("TN_a", types.MarketTN, nil), tnTemplates())
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.InDelta(t, 1.0, r.Score, 1e-9)
	}
}

func TestNewEngine_InvalidPolicy(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Classification.LowThreshold = 0.95
	_, err := NewEngine(cfg, nil)
	assert.Error(t, err)
}

type recordingSink struct {
	reports []*types.RunReport
	err     error
}

func (s *recordingSink) Write(_ context.Context, r *types.RunReport) error {
	s.reports = append(s.reports, r)
	return s.err
}

func TestPipeline_Run(t *testing.T) {
	sink := &recordingSink{}
	p := Pipeline{
		Source: StaticSource{Clauses: contract("TN_a", types.MarketTN, nil), Templates: tnTemplates()},
		Engine: newTestEngine(t, types.DefaultConfig()),
		Sinks:  []Sink{sink},
	}

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.reports, 1)
	assert.Same(t, report, sink.reports[0])

	sink.err = errors.New("disk full")
	report, err = p.Run(context.Background())
	assert.Error(t, err)
	assert.NotNil(t, report)
}
