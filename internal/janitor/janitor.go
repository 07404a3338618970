package janitor

import (
	"go.uber.org/zap"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
	"github.com/kurihiro0119/jira-effort-metrics/internal/logger"
)

const (
	// StrategySentinel fills missing values with SentinelValue and records
	// absence in a companion column. It is the only implemented strategy.
	StrategySentinel = "sentinel"

	// SentinelValue is the fill for imputed cells
	SentinelValue = -1

	// ObservedSuffix names the companion column recording null-vs-present
	ObservedSuffix = "_observed"
)

// Config selects which columns each stage operates on
type Config struct {
	// DateColumns are decomposed into day/month/year parts
	DateColumns []string
	// TextColumns are reduced to a single tf-idf score per row
	TextColumns []string
	// CategoricalColumns are one-hot encoded
	CategoricalColumns []string
	// MultiValueColumns are comma-delimited and multi-hot encoded
	MultiValueColumns []string
	// ExtraPrune names columns excluded by policy, e.g. original_estimate
	// when the model targets estimate accuracy
	ExtraPrune []string
	// ImputeStrategy must be StrategySentinel; anything else is rejected
	// before any data is touched
	ImputeStrategy string
}

// DefaultConfig returns the cleaning configuration for the canonical issue
// header
func DefaultConfig() Config {
	return Config{
		DateColumns:        []string{"created_datetime", "updated_datetime", "resolved_datetime"},
		TextColumns:        []string{"summary", "description"},
		CategoricalColumns: []string{"issue_type", "reporter", "assignee", "status"},
		MultiValueColumns:  []string{"labels", "components"},
		ImputeStrategy:     StrategySentinel,
	}
}

// Stage is one named, independently runnable transform over the table.
// Ordering matters: later stages depend on earlier outputs, and Clean runs
// them in the required order.
type Stage struct {
	Name  string
	Apply func(t *dataset.Table) error
}

// Janitor turns a raw issue table into a numeric feature matrix
type Janitor struct {
	cfg Config
	log *zap.Logger
}

// New creates a Janitor with the given configuration
func New(cfg Config) *Janitor {
	return &Janitor{
		cfg: cfg,
		log: logger.GetLogger(),
	}
}

// Stages returns the pipeline in its required order
func (j *Janitor) Stages() []Stage {
	return []Stage{
		{Name: "decompose_dates", Apply: j.decomposeDates},
		{Name: "vectorize_text", Apply: j.vectorizeText},
		{Name: "encode_categoricals", Apply: j.encodeCategoricals},
		{Name: "encode_multi_value", Apply: j.encodeMultiValue},
		{Name: "prune_columns", Apply: j.pruneColumns},
		{Name: "impute_missing", Apply: j.imputeMissing},
	}
}

// Clean runs the full pipeline in place. After it returns without error,
// every cell is numeric and no nulls remain.
func (j *Janitor) Clean(t *dataset.Table) error {
	if j.cfg.ImputeStrategy != StrategySentinel {
		return apperrors.NewUnsupportedImputationError(j.cfg.ImputeStrategy)
	}

	for _, stage := range j.Stages() {
		j.log.Info("cleaning stage",
			zap.String("stage", stage.Name),
			zap.Int("rows", t.Len()),
			zap.Int("columns", len(t.Columns())),
		)
		if err := stage.Apply(t); err != nil {
			return err
		}
	}
	return nil
}
