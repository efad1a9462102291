// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

const metricsNamespace = "clause_classifier"

// NewRegistry returns a private registry holding the metrics of one run.
func NewRegistry(r *types.RunReport) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	clauses := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "clauses",
		Help:      "Clauses classified in the last run, by label.",
	}, []string{"label"})
	byAttr := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "attribute_clauses",
		Help:      "Clauses classified in the last run, by attribute and label.",
	}, []string{"attribute", "label"})
	contracts := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "contracts",
		Help:      "Contracts analyzed in the last run.",
	})
	nonStandard := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "contracts_nonstandard",
		Help:      "Contracts with at least one Non-Standard clause.",
	})
	missing := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "extraction_missing",
		Help:      "Clauses whose text could not be extracted.",
	})
	omitted := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "pairs_omitted",
		Help:      "Contract and attribute pairs without a template.",
	})
	scores := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "similarity_score",
		Help:      "Distribution of clause similarity scores.",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})
	duration := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run.",
	})
	finished := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})

	s := r.Summary
	clauses.WithLabelValues(string(types.LabelStandard)).Set(float64(s.StandardCount))
	clauses.WithLabelValues(string(types.LabelNonStandard)).Set(float64(s.NonStandardCount))
	for key, c := range s.ByAttribute {
		byAttr.WithLabelValues(string(key), string(types.LabelStandard)).Set(float64(c.Standard))
		byAttr.WithLabelValues(string(key), string(types.LabelNonStandard)).Set(float64(c.NonStandard))
	}
	contracts.Set(float64(s.TotalContracts))
	nonStandard.Set(float64(s.ContractsWithNonStandard))
	missing.Set(float64(s.ExtractionMissingCount))
	omitted.Set(float64(s.OmittedCount))
	for _, res := range r.Results {
		if res.Error == "" {
			scores.Observe(res.Score)
		}
	}
	if !r.FinishedAt.IsZero() {
		duration.Set(r.FinishedAt.Sub(r.StartedAt).Seconds())
		finished.Set(float64(r.FinishedAt.Unix()))
	}
	return reg
}

// WriteMetrics writes the run metrics in the Prometheus text format to
// path, for pickup by a node exporter textfile collector.
func WriteMetrics(path string, r *types.RunReport) error {
	if err := prometheus.WriteToTextfile(path, NewRegistry(r)); err != nil {
		return fmt.Errorf("writing metrics %s: %w", path, err)
	}
	return nil
}
