package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage"
)

// Store persists the dataset as a flat CSV file: canonical header first,
// issue number as the leading index column
type Store struct {
	path string
}

// New creates a CSV store at the given path
func New(path string) storage.Store {
	return &Store{path: path}
}

// LoadDataset reads the whole file. A missing file is a NOT_FOUND error,
// not a corrupt one.
func (s *Store) LoadDataset(ctx context.Context) (*dataset.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("dataset file %s", s.path))
		}
		return nil, apperrors.NewInternalError("failed to open dataset file", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read dataset file", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewInternalError("dataset file has no header", nil)
	}

	header := records[0]
	if len(header) < 1 || header[0] != storage.IndexColumn {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("dataset file header must start with %q", storage.IndexColumn), nil)
	}
	columns := header[1:]

	t := dataset.New(columns)
	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, apperrors.NewInternalError("dataset file row width mismatch", nil)
		}
		num, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("bad row index %q", record[0]), err)
		}
		row := make(domain.Row, len(columns))
		for i, column := range columns {
			row[column] = domain.Decode(record[i+1])
		}
		t.Upsert(num, row)
	}
	return t, nil
}

// SaveDataset overwrites the file with the full current dataset
func (s *Store) SaveDataset(ctx context.Context, t *dataset.Table) error {
	f, err := os.Create(s.path)
	if err != nil {
		return apperrors.NewInternalError("failed to create dataset file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	columns := t.Columns()

	header := append([]string{storage.IndexColumn}, columns...)
	if err := w.Write(header); err != nil {
		return apperrors.NewInternalError("failed to write dataset header", err)
	}

	record := make([]string, len(header))
	for _, num := range t.Indexes() {
		record[0] = strconv.Itoa(num)
		for i, column := range columns {
			record[i+1] = t.Value(num, column).Encode()
		}
		if err := w.Write(record); err != nil {
			return apperrors.NewInternalError("failed to write dataset row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewInternalError("failed to flush dataset file", err)
	}
	return nil
}

// Close is a no-op for file storage
func (s *Store) Close() error {
	return nil
}
