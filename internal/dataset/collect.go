package dataset

import (
	"context"

	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
)

// DefaultExcludedIssueTypes are the issue types left out of the dataset:
// container types whose time tracking aggregates their children's
var DefaultExcludedIssueTypes = []string{"Epic", "Story"}

// Source yields raw issue records one at a time
type Source interface {
	Each(ctx context.Context, fn func(domain.RawIssueRecord) error) error
}

// RowParser flattens a raw record into a canonical row
type RowParser interface {
	Parse(record domain.RawIssueRecord) (domain.Row, error)
}

// Collect streams records from src into the table: parse, filter excluded
// issue types, upsert at the key's numeric suffix. A repeated fetch of the
// same number overwrites the prior row. The table reflects only fully
// parsed rows at the point of any failure.
func (t *Table) Collect(ctx context.Context, src Source, p RowParser, excludeIssueTypes []string) error {
	excluded := make(map[string]bool, len(excludeIssueTypes))
	for _, it := range excludeIssueTypes {
		excluded[it] = true
	}

	return src.Each(ctx, func(record domain.RawIssueRecord) error {
		row, err := p.Parse(record)
		if err != nil {
			return err
		}
		if excluded[row["issue_type"].Str()] {
			return nil
		}
		key := row["key"]
		if key.IsNull() {
			return apperrors.NewMalformedRecordError("issue record has no key")
		}
		num, err := domain.IssueNum(key.Str())
		if err != nil {
			return apperrors.NewMalformedRecordError(err.Error())
		}
		t.Upsert(num, row)
		return nil
	})
}
