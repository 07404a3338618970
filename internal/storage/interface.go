package storage

import (
	"context"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
)

// Store is the abstract interface for dataset persistence. Load and Save
// move the whole table; there is no streaming append, and concurrent runs
// against the same store are the caller's problem to serialize.
type Store interface {
	// LoadDataset reads the full dataset. A store that has never been
	// written returns a NOT_FOUND error; whether that is fatal is the
	// caller's call.
	LoadDataset(ctx context.Context) (*dataset.Table, error)

	// SaveDataset overwrites the store with the full current dataset,
	// including the row index
	SaveDataset(ctx context.Context, t *dataset.Table) error

	// Close releases the underlying resources
	Close() error
}

// IndexColumn is the name of the leading row-index column in flat storage
const IndexColumn = "issue_num"
