// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify runs the classification engine over a batch of contracts:
// normalize, score against the market template, apply the rule policy, and
// aggregate. Per-pair failures are recorded against the pair; a broken
// scorer invariant aborts the run.
package classify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/clause-classifier/internal/aggregate"
	"github.com/pdiddy/clause-classifier/internal/logging"
	"github.com/pdiddy/clause-classifier/internal/normalize"
	"github.com/pdiddy/clause-classifier/internal/rules"
	"github.com/pdiddy/clause-classifier/internal/similarity"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

// ErrMissingTemplate marks a clause with no template for its market and attribute.
var ErrMissingTemplate = errors.New("missing template")

// ErrDuplicateTemplate is returned when two templates share a market and attribute.
var ErrDuplicateTemplate = errors.New("duplicate template")

type templateKey struct {
	market types.Market
	attr   types.AttributeKey
}

// Engine classifies batches of clauses. Its configuration is fixed at
// construction; a single Engine can serve several runs.
type Engine struct {
	normalizer *normalize.Normalizer
	rules      *rules.Set
	simCfg     types.SimilarityConfig
	workers    int
	log        logging.Logger

	scorer func(docs []string) (similarity.Scorer, error)
	now    func() time.Time
	newID  func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithScorer replaces the configured similarity scorer.
func WithScorer(s similarity.Scorer) Option {
	return func(e *Engine) {
		e.scorer = func([]string) (similarity.Scorer, error) { return s, nil }
	}
}

// WithClock sets the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID sets the run ID generator.
func WithRunID(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine validates the policy for every market and prepares the engine.
func NewEngine(cfg types.Config, log logging.Logger, opts ...Option) (*Engine, error) {
	set, err := rules.NewSet(cfg.Classification)
	if err != nil {
		return nil, fmt.Errorf("classification policy: %w", err)
	}
	if _, err := similarity.New(cfg.Similarity, nil); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNop()
	}

	workers := cfg.Classification.Workers
	if workers <= 0 {
		workers = 1
	}

	e := &Engine{
		normalizer: normalize.New(cfg.Normalize.RemoveStopWords),
		rules:      set,
		simCfg:     cfg.Similarity,
		workers:    workers,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	e.scorer = func(docs []string) (similarity.Scorer, error) {
		return similarity.New(e.simCfg, docs)
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Normalizer returns the engine's text normalizer.
func (e *Engine) Normalizer() *normalize.Normalizer {
	return e.normalizer
}

// contractJob groups the clauses of one contract.
type contractJob struct {
	id      string
	clauses []types.ClauseInstance
}

type contractOutcome struct {
	results []types.ClassificationResult
	errs    []types.PairError
	err     error
}

// Run classifies every clause against its market template and returns the
// run report. Clauses and templates with empty NormalizedText are
// normalized first; templates that normalize to nothing are dropped, so
// their clauses report a missing template. It returns an error only for
// invalid input (duplicate templates), a broken scorer, or context
// cancellation.
func (e *Engine) Run(ctx context.Context, clauses []types.ClauseInstance, templates []types.TemplateClause) (*types.RunReport, error) {
	report := &types.RunReport{
		RunID:     e.newID(),
		StartedAt: e.now().UTC(),
	}
	log := e.log.With(logging.String("run_id", report.RunID))

	table := make(map[templateKey]types.TemplateClause, len(templates))
	docs := make([]string, 0, len(templates)+len(clauses))
	for _, t := range templates {
		t = e.normalizeTemplate(t)
		if strings.TrimSpace(t.NormalizedText) == "" {
			log.Warn("empty template clause ignored",
				logging.String("market", string(t.Market)),
				logging.String("attribute", string(t.AttributeKey)))
			continue
		}
		k := templateKey{t.Market, t.AttributeKey}
		if _, dup := table[k]; dup {
			return nil, fmt.Errorf("%w: market %s attribute %s", ErrDuplicateTemplate, t.Market, t.AttributeKey)
		}
		table[k] = t
		docs = append(docs, t.NormalizedText)
	}

	jobs := groupByContract(clauses, e.normalizeClause)
	for _, j := range jobs {
		for _, c := range j.clauses {
			docs = append(docs, c.NormalizedText)
		}
	}

	scorer, err := e.scorer(docs)
	if err != nil {
		return nil, err
	}

	log.Info("classification started",
		logging.Int("contracts", len(jobs)),
		logging.Int("clauses", len(clauses)),
		logging.Int("templates", len(table)),
		logging.Int("workers", e.workers))

	outcomes, err := e.runJobs(ctx, jobs, func(j contractJob) contractOutcome {
		return e.classifyContract(j, table, scorer, log)
	})
	if err != nil {
		log.Error("classification aborted", logging.Err(err))
		return nil, err
	}

	for _, o := range outcomes {
		report.Results = append(report.Results, o.results...)
		report.Errors = append(report.Errors, o.errs...)
	}
	sortResults(report.Results)
	sortPairErrors(report.Errors)
	if report.Results == nil {
		report.Results = []types.ClassificationResult{}
	}
	if report.Errors == nil {
		report.Errors = []types.PairError{}
	}

	report.Summary = aggregate.WithOmissions(aggregate.Aggregate(report.Results), report.Errors)
	report.FinishedAt = e.now().UTC()

	log.Info("classification finished",
		logging.Int("total_clauses", report.Summary.TotalClauses),
		logging.Int("standard", report.Summary.StandardCount),
		logging.Int("nonstandard", report.Summary.NonStandardCount),
		logging.Int("omitted", report.Summary.OmittedCount))
	return report, nil
}

// runJobs fans contracts out to e.workers goroutines. The first fatal error
// stops the dispatch of further contracts.
func (e *Engine) runJobs(ctx context.Context, jobs []contractJob, fn func(contractJob) contractOutcome) ([]contractOutcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]contractOutcome, len(jobs))
	idx := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				o := fn(jobs[i])
				outcomes[i] = o
				if o.err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = o.err
					}
					mu.Unlock()
					cancel()
				}
			}
		}()
	}

dispatch:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break dispatch
		case idx <- i:
		}
	}
	close(idx)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (e *Engine) classifyContract(j contractJob, table map[templateKey]types.TemplateClause, scorer similarity.Scorer, log logging.Logger) contractOutcome {
	var out contractOutcome
	for _, c := range j.clauses {
		tmpl, ok := table[templateKey{c.Market, c.AttributeKey}]
		policy, hasPolicy := e.rules.For(c.Market)
		if !ok || !hasPolicy {
			log.Warn("no template for clause, pair skipped",
				logging.String("contract_id", c.ContractID),
				logging.String("market", string(c.Market)),
				logging.String("attribute", string(c.AttributeKey)))
			out.errs = append(out.errs, types.PairError{
				ContractID:   c.ContractID,
				Market:       c.Market,
				AttributeKey: c.AttributeKey,
				Error:        types.ErrorMissingTemplate,
				Message:      fmt.Sprintf("%v for market %s attribute %s", ErrMissingTemplate, c.Market, c.AttributeKey),
			})
			continue
		}

		sim := types.SimilarityResult{
			ContractID:   c.ContractID,
			AttributeKey: c.AttributeKey,
			Score:        scorer.Score(c.NormalizedText, tmpl.NormalizedText),
		}

		d, err := policy.Evaluate(c.AttributeKey, sim.Score, ruleText(c.RawText, c.NormalizedText), ruleText(tmpl.RawText, tmpl.NormalizedText))
		res := types.ClassificationResult{
			ContractID:   c.ContractID,
			Market:       c.Market,
			AttributeKey: c.AttributeKey,
			Score:        sim.Score,
		}
		switch {
		case errors.Is(err, rules.ErrExtractionMissing):
			res.Label = d.Label
			res.Reason = d.Reason
			res.Error = types.ErrorExtractionMissing
		case err != nil:
			out.err = fmt.Errorf("contract %s attribute %s: %w", c.ContractID, c.AttributeKey, err)
			return out
		default:
			res.Label = d.Label
			res.Reason = d.Reason
			res.Evidence = d.Evidence
		}

		log.Debug("clause classified",
			logging.String("contract_id", res.ContractID),
			logging.String("attribute", string(res.AttributeKey)),
			logging.Float64("score", res.Score),
			logging.String("label", string(res.Label)),
			logging.String("reason", res.Reason))
		out.results = append(out.results, res)
	}
	return out
}

// ruleText is the text handed to the rule engine: the raw wording when
// present, else the normalized form. A clause that normalizes to nothing is
// treated as not extracted.
func ruleText(raw, normalized string) string {
	if strings.TrimSpace(normalized) == "" {
		return ""
	}
	if strings.TrimSpace(raw) == "" {
		return normalized
	}
	return raw
}

func (e *Engine) normalizeClause(c types.ClauseInstance) types.ClauseInstance {
	if c.NormalizedText == "" && c.RawText != "" {
		c.NormalizedText = e.normalizer.Normalize(c.RawText)
	}
	return c
}

func (e *Engine) normalizeTemplate(t types.TemplateClause) types.TemplateClause {
	if t.NormalizedText == "" && t.RawText != "" {
		t.NormalizedText = e.normalizer.Normalize(t.RawText)
	}
	return t
}

// groupByContract keeps the first-seen order of contracts.
func groupByContract(clauses []types.ClauseInstance, prep func(types.ClauseInstance) types.ClauseInstance) []contractJob {
	index := make(map[string]int)
	var jobs []contractJob
	for _, c := range clauses {
		i, ok := index[c.ContractID]
		if !ok {
			i = len(jobs)
			index[c.ContractID] = i
			jobs = append(jobs, contractJob{id: c.ContractID})
		}
		jobs[i].clauses = append(jobs[i].clauses, prep(c))
	}
	return jobs
}

// attrOrder ranks attributes in catalogue order for stable reports.
func attrOrder(k types.AttributeKey) int {
	for i, a := range types.AttributeKeys() {
		if a == k {
			return i
		}
	}
	return len(types.AttributeKeys())
}

func sortResults(rs []types.ClassificationResult) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].ContractID != rs[j].ContractID {
			return rs[i].ContractID < rs[j].ContractID
		}
		return attrOrder(rs[i].AttributeKey) < attrOrder(rs[j].AttributeKey)
	})
}

func sortPairErrors(es []types.PairError) {
	sort.SliceStable(es, func(i, j int) bool {
		if es[i].ContractID != es[j].ContractID {
			return es[i].ContractID < es[j].ContractID
		}
		return attrOrder(es[i].AttributeKey) < attrOrder(es[j].AttributeKey)
	})
}
