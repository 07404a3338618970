package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage"
)

// Store persists the dataset in SQLite. Row cells travel as one JSON text
// column per issue; the column order lives in its own table so an empty
// dataset round-trips too.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path
func New(dbPath string) (storage.Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS issues (
		num INTEGER PRIMARY KEY,
		fields TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS dataset_columns (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// LoadDataset reads the whole dataset. A store that was never saved to is
// NOT_FOUND.
func (s *Store) LoadDataset(ctx context.Context) (*dataset.Table, error) {
	columns, err := s.loadColumns(ctx)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, apperrors.NewNotFoundError("dataset")
	}

	t := dataset.New(columns)

	rows, err := s.db.QueryContext(ctx, `SELECT num, fields FROM issues ORDER BY num`)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query issues", err)
	}
	defer rows.Close()

	for rows.Next() {
		var num int
		var fieldsJSON string
		if err := rows.Scan(&num, &fieldsJSON); err != nil {
			return nil, apperrors.NewInternalError("failed to scan issue row", err)
		}
		var encoded map[string]string
		if err := json.Unmarshal([]byte(fieldsJSON), &encoded); err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("bad fields payload for issue %d", num), err)
		}
		row := make(domain.Row, len(columns))
		for _, column := range columns {
			row[column] = domain.Decode(encoded[column])
		}
		t.Upsert(num, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate issues", err)
	}
	return t, nil
}

// SaveDataset replaces the stored dataset wholesale inside one transaction
func (s *Store) SaveDataset(ctx context.Context, t *dataset.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM issues`); err != nil {
		return apperrors.NewInternalError("failed to clear issues", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_columns`); err != nil {
		return apperrors.NewInternalError("failed to clear columns", err)
	}

	for i, column := range t.Columns() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dataset_columns (position, name) VALUES (?, ?)`, i, column); err != nil {
			return apperrors.NewInternalError("failed to save column", err)
		}
	}

	for _, num := range t.Indexes() {
		encoded := make(map[string]string, len(t.Columns()))
		for _, column := range t.Columns() {
			encoded[column] = t.Value(num, column).Encode()
		}
		fieldsJSON, err := json.Marshal(encoded)
		if err != nil {
			return apperrors.NewInternalError("failed to encode issue fields", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO issues (num, fields) VALUES (?, ?)`, num, string(fieldsJSON)); err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to save issue %d", num), err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) loadColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM dataset_columns ORDER BY position`)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query columns", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan column", err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
