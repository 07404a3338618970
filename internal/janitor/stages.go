package janitor

import (
	"strings"
	"time"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
)

// Jira timestamps carry millisecond precision and a zone offset without a
// colon; accept the common close variants too
var dateLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// durationColumns hold second counts; they are never treated as free text
// even when misconfigured into TextColumns
var durationColumns = map[string]bool{
	"original_estimate":  true,
	"remaining_estimate": true,
	"time_spent":         true,
}

// decomposeDates adds {prefix}_day/_month/_year numeric columns for each
// configured datetime column. Unparseable or absent timestamps decompose to
// nulls so imputation can flag and fill them later.
func (j *Janitor) decomposeDates(t *dataset.Table) error {
	for _, column := range j.cfg.DateColumns {
		if !t.HasColumn(column) {
			continue
		}
		prefix := strings.SplitN(column, "_", 2)[0]

		for _, part := range []string{"day", "month", "year"} {
			t.AddColumn(prefix + "_" + part)
		}
		for _, num := range t.Indexes() {
			day, month, year := domain.Null(), domain.Null(), domain.Null()
			cell := t.Value(num, column)
			if cell.Kind() == domain.KindString {
				if ts, ok := parseTimestamp(cell.Str()); ok {
					day = domain.Number(float64(ts.Day()))
					month = domain.Number(float64(ts.Month()))
					year = domain.Number(float64(ts.Year()))
				}
			}
			t.Set(num, prefix+"_day", day)
			t.Set(num, prefix+"_month", month)
			t.Set(num, prefix+"_year", year)
		}
	}
	return nil
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// vectorizeText replaces each configured free-text column with one numeric
// column: the row's tf-idf score over a vocabulary built from the whole
// column. One column in, one column out.
func (j *Janitor) vectorizeText(t *dataset.Table) error {
	for _, column := range j.cfg.TextColumns {
		if !t.HasColumn(column) || durationColumns[column] {
			continue
		}

		indexes := t.Indexes()
		docs := make([]string, 0, len(indexes))
		for _, num := range indexes {
			cell := t.Value(num, column)
			if cell.Kind() == domain.KindString {
				docs = append(docs, cell.Str())
			}
		}
		v := fitVectorizer(docs)

		for _, num := range indexes {
			cell := t.Value(num, column)
			// Nulls stay null and get flagged by imputation
			if cell.IsNull() {
				continue
			}
			t.Set(num, column, domain.Number(v.score(cell.Str())))
		}
	}
	return nil
}

// encodeCategoricals one-hot encodes each configured single-value column
// into one boolean column per distinct observed value, then drops the
// source column
func (j *Janitor) encodeCategoricals(t *dataset.Table) error {
	for _, column := range j.cfg.CategoricalColumns {
		if !t.HasColumn(column) {
			continue
		}

		indexes := t.Indexes()
		var values []string
		seen := make(map[string]bool)
		for _, num := range indexes {
			cell := t.Value(num, column)
			if cell.IsNull() {
				continue
			}
			if v := cell.Str(); !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}

		for _, value := range values {
			name := column + "_" + value
			t.AddColumn(name)
			for _, num := range indexes {
				cell := t.Value(num, column)
				t.Set(num, name, domain.Bool(!cell.IsNull() && cell.Str() == value))
			}
		}
		t.DropColumn(column)
	}
	return nil
}

// encodeMultiValue multi-hot encodes each configured comma-delimited
// column: one boolean column per distinct token, a row may set several.
// The source column is dropped after encoding.
func (j *Janitor) encodeMultiValue(t *dataset.Table) error {
	for _, column := range j.cfg.MultiValueColumns {
		if !t.HasColumn(column) {
			continue
		}

		indexes := t.Indexes()
		var tokens []string
		seen := make(map[string]bool)
		for _, num := range indexes {
			for _, token := range splitTokens(t.Value(num, column)) {
				if !seen[token] {
					seen[token] = true
					tokens = append(tokens, token)
				}
			}
		}

		for _, token := range tokens {
			name := column + "_" + token
			t.AddColumn(name)
			for _, num := range indexes {
				member := false
				for _, rowToken := range splitTokens(t.Value(num, column)) {
					if rowToken == token {
						member = true
						break
					}
				}
				t.Set(num, name, domain.Bool(member))
			}
		}
		t.DropColumn(column)
	}
	return nil
}

func splitTokens(v domain.Value) []string {
	if v.IsNull() || v.Str() == "" {
		return nil
	}
	return strings.Split(v.Str(), ",")
}

// pruneColumns drops identifier, leaky and already-decomposed columns
func (j *Janitor) pruneColumns(t *dataset.Table) error {
	drop := []string{"key", "fix_versions", "sprints"}
	drop = append(drop, j.cfg.DateColumns...)
	drop = append(drop, j.cfg.ExtraPrune...)
	for _, column := range drop {
		t.DropColumn(column)
	}
	return nil
}

// imputeMissing fills remaining nulls with the sentinel and records
// null-vs-present per row in a companion column. Configured multi-value
// columns still present at this point are dropped, not imputed: their
// signal lives in the multi-hot columns.
func (j *Janitor) imputeMissing(t *dataset.Table) error {
	if j.cfg.ImputeStrategy != StrategySentinel {
		return apperrors.NewUnsupportedImputationError(j.cfg.ImputeStrategy)
	}

	for _, column := range j.cfg.MultiValueColumns {
		t.DropColumn(column)
	}

	columns := make([]string, len(t.Columns()))
	copy(columns, t.Columns())
	indexes := t.Indexes()

	for _, column := range columns {
		hasNull := false
		for _, num := range indexes {
			if t.Value(num, column).IsNull() {
				hasNull = true
				break
			}
		}
		if !hasNull {
			continue
		}

		observed := column + ObservedSuffix
		t.AddColumn(observed)
		for _, num := range indexes {
			null := t.Value(num, column).IsNull()
			t.Set(num, observed, domain.Bool(!null))
			if null {
				t.Set(num, column, domain.Number(SentinelValue))
			}
		}
	}
	return nil
}
