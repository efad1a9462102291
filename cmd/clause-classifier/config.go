// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

// setDefaults registers every scalar key so environment overrides such as
// CLAUSE_CLASSIFIER_CLASSIFICATION_HIGH_THRESHOLD are picked up.
func setDefaults(d types.Config) {
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.development", d.Log.Development)

	viper.SetDefault("normalize.remove_stop_words", d.Normalize.RemoveStopWords)
	viper.SetDefault("similarity.vocabulary", string(d.Similarity.Vocabulary))

	viper.SetDefault("classification.high_threshold", d.Classification.HighThreshold)
	viper.SetDefault("classification.low_threshold", d.Classification.LowThreshold)
	viper.SetDefault("classification.disqualifying_terms", d.Classification.DisqualifyingTerms)
	viper.SetDefault("classification.value_checked_attributes", d.Classification.ValueCheckedAttributes)
	viper.SetDefault("classification.workers", d.Classification.Workers)

	viper.SetDefault("extraction.contracts_dir", d.Extraction.ContractsDir)
	viper.SetDefault("extraction.templates_dir", d.Extraction.TemplatesDir)
	viper.SetDefault("extraction.extracted_dir", d.Extraction.ExtractedDir)
	viper.SetDefault("extraction.pdf_image", d.Extraction.PDFImage)

	viper.SetDefault("report.output_dir", d.Report.OutputDir)
	viper.SetDefault("report.formats", d.Report.Formats)
	viper.SetDefault("report.metrics_file", d.Report.MetricsFile)
	viper.SetDefault("report.webhook_url", d.Report.WebhookURL)
	viper.SetDefault("report.webhook_retries", d.Report.WebhookRetries)

	viper.SetDefault("store.data_dir", d.Store.DataDir)
	viper.SetDefault("store.enabled", d.Store.Enabled)
	viper.SetDefault("store.max_results", d.Store.MaxResults)

	viper.SetDefault("secrets_dir", d.SecretsDir)
}

// loadConfig decodes file, environment, and flag settings over the
// defaults.
func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if c.Classification.Workers <= 0 {
		c.Classification.Workers = 1
	}
	return c, nil
}

// flagKeys maps command-line flags to configuration keys. Flags share a key
// across commands, so each command binds its own flags before the config is
// decoded.
var flagKeys = map[string]string{
	"log-level":     "log.level",
	"log-dev":       "log.development",
	"contracts-dir": "extraction.contracts_dir",
	"templates-dir": "extraction.templates_dir",
	"extracted-dir": "extraction.extracted_dir",
	"pdf-image":     "extraction.pdf_image",
	"output-dir":    "report.output_dir",
	"formats":       "report.formats",
	"metrics-file":  "report.metrics_file",
	"webhook-url":   "report.webhook_url",
	"secrets-dir":   "secrets_dir",
	"workers":       "classification.workers",
	"vocabulary":    "similarity.vocabulary",
	"stop-words":    "normalize.remove_stop_words",
	"data-dir":      "store.data_dir",
	"max-results":   "store.max_results",
}

// bindFlags binds the flags of the running command to their keys.
func bindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}
