// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to the human-readable console encoder.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// NormalizeConfig holds settings for the text normalizer.
type NormalizeConfig struct {
	// RemoveStopWords drops common English function words after normalization.
	RemoveStopWords bool `json:"remove_stop_words" yaml:"remove_stop_words" mapstructure:"remove_stop_words"`
}

// VocabularyScope selects how the similarity scorer builds its IDF table.
type VocabularyScope string

const (
	// VocabularyPair fits the vocabulary on the two compared texts only.
	VocabularyPair VocabularyScope = "pair"
	// VocabularyCorpus precomputes IDF over every clause and template of a run.
	VocabularyCorpus VocabularyScope = "corpus"
)

// SimilarityConfig holds settings for the similarity scorer.
type SimilarityConfig struct {
	// Vocabulary is pair or corpus (default pair). It is fixed for a run.
	Vocabulary VocabularyScope `json:"vocabulary" yaml:"vocabulary" mapstructure:"vocabulary"`
}

// MarketPolicy overrides the default classification policy for one market.
// Nil thresholds and an empty term list inherit the defaults.
type MarketPolicy struct {
	HighThreshold      *float64 `json:"high_threshold,omitempty" yaml:"high_threshold,omitempty" mapstructure:"high_threshold"`
	LowThreshold       *float64 `json:"low_threshold,omitempty" yaml:"low_threshold,omitempty" mapstructure:"low_threshold"`
	DisqualifyingTerms []string `json:"disqualifying_terms,omitempty" yaml:"disqualifying_terms,omitempty" mapstructure:"disqualifying_terms"`
}

// ClassificationConfig holds the rule engine policy and run settings.
type ClassificationConfig struct {
	// HighThreshold is the score at or above which a clause is Standard.
	HighThreshold float64 `json:"high_threshold" yaml:"high_threshold" mapstructure:"high_threshold"`

	// LowThreshold is the score below which a clause is Non-Standard.
	LowThreshold float64 `json:"low_threshold" yaml:"low_threshold" mapstructure:"low_threshold"`

	// DisqualifyingTerms are checked for borderline scores.
	DisqualifyingTerms []string `json:"disqualifying_terms" yaml:"disqualifying_terms" mapstructure:"disqualifying_terms"`

	// ValueCheckedAttributes get the day-period structural check.
	ValueCheckedAttributes []AttributeKey `json:"value_checked_attributes" yaml:"value_checked_attributes" mapstructure:"value_checked_attributes"`

	// Workers is the number of contracts classified concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Markets holds per-market overrides keyed by market code.
	Markets map[string]MarketPolicy `json:"markets,omitempty" yaml:"markets,omitempty" mapstructure:"markets"`
}

// ExtractionConfig holds settings for the extraction collaborator.
type ExtractionConfig struct {
	// ContractsDir holds contract documents named <MARKET>_<name>.<ext>.
	ContractsDir string `json:"contracts_dir" yaml:"contracts_dir" mapstructure:"contracts_dir"`

	// TemplatesDir holds the standard template documents.
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir" mapstructure:"templates_dir"`

	// ExtractedDir receives one <document>-clauses.yaml per document.
	ExtractedDir string `json:"extracted_dir" yaml:"extracted_dir" mapstructure:"extracted_dir"`

	// PDFImage is the container image used to turn PDFs into text.
	PDFImage string `json:"pdf_image" yaml:"pdf_image" mapstructure:"pdf_image"`
}

// ReportConfig holds settings for the reporting collaborator.
type ReportConfig struct {
	// OutputDir receives classification_results.{json,yaml}.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Formats lists the report formats to write: json, yaml.
	Formats []string `json:"formats" yaml:"formats" mapstructure:"formats"`

	// MetricsFile is an optional Prometheus textfile path.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`

	// WebhookURL, when set, receives the JSON report by HTTP POST.
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`

	// WebhookRetries bounds retries on 429 and 5xx gateway responses (default 4).
	WebhookRetries int `json:"webhook_retries,omitempty" yaml:"webhook_retries,omitempty" mapstructure:"webhook_retries"`
}

// StoreConfig holds settings for the run history database.
type StoreConfig struct {
	// DataDir contains runs.db.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// Enabled records each run in the database.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// MaxResults is the default query limit (default 100).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Config groups every setting of the tool.
type Config struct {
	Log            LogConfig            `json:"log" yaml:"log" mapstructure:"log"`
	Normalize      NormalizeConfig      `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
	Similarity     SimilarityConfig     `json:"similarity" yaml:"similarity" mapstructure:"similarity"`
	Classification ClassificationConfig `json:"classification" yaml:"classification" mapstructure:"classification"`
	Extraction     ExtractionConfig     `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Report         ReportConfig         `json:"report" yaml:"report" mapstructure:"report"`
	Store          StoreConfig          `json:"store" yaml:"store" mapstructure:"store"`

	// SecretsDir holds one file per credential, e.g. webhook-token.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// Default policy values.
const (
	DefaultHighThreshold = 0.88
	DefaultLowThreshold  = 0.70
	DefaultPDFImage      = "pdftotext:latest"
)

// DefaultDisqualifyingTerms are conditional phrases that carve exceptions
// out of otherwise standard wording.
func DefaultDisqualifyingTerms() []string {
	return []string{"except for", "notwithstanding"}
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() Config {
	return Config{
		Log:        LogConfig{Level: "info"},
		Similarity: SimilarityConfig{Vocabulary: VocabularyPair},
		Classification: ClassificationConfig{
			HighThreshold:          DefaultHighThreshold,
			LowThreshold:           DefaultLowThreshold,
			DisqualifyingTerms:     DefaultDisqualifyingTerms(),
			ValueCheckedAttributes: []AttributeKey{AttrMedicaidTimelyFiling, AttrMedicareTimelyFiling},
			Workers:                1,
		},
		Extraction: ExtractionConfig{
			ContractsDir: "contracts",
			TemplatesDir: "templates",
			ExtractedDir: "extracted",
			PDFImage:     DefaultPDFImage,
		},
		Report: ReportConfig{
			OutputDir: "output",
			Formats:   []string{"json"},
		},
		Store: StoreConfig{
			DataDir:    "data",
			Enabled:    true,
			MaxResults: 100,
		},
		SecretsDir: "secrets",
	}
}
