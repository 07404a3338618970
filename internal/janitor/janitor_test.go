package janitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
)

func TestDecomposeDates(t *testing.T) {
	table := dataset.New([]string{"created_datetime"})
	table.Upsert(1, domain.Row{"created_datetime": domain.String("2017-03-30T11:51:04.130-0500")})
	table.Upsert(2, domain.Row{"created_datetime": domain.Null()})
	table.Upsert(3, domain.Row{"created_datetime": domain.String("not a date")})

	j := New(Config{DateColumns: []string{"created_datetime"}, ImputeStrategy: StrategySentinel})
	require.NoError(t, j.decomposeDates(table))

	assert.Equal(t, float64(30), table.Value(1, "created_day").Num())
	assert.Equal(t, float64(3), table.Value(1, "created_month").Num())
	assert.Equal(t, float64(2017), table.Value(1, "created_year").Num())

	// Absent and unparseable timestamps decompose to nulls
	assert.True(t, table.Value(2, "created_day").IsNull())
	assert.True(t, table.Value(3, "created_year").IsNull())
}

func TestVectorizeText(t *testing.T) {
	table := dataset.New([]string{"summary"})
	table.Upsert(1, domain.Row{"summary": domain.String("database timeout on login")})
	table.Upsert(2, domain.Row{"summary": domain.String("")})
	table.Upsert(3, domain.Row{"summary": domain.Null()})

	j := New(Config{TextColumns: []string{"summary"}, ImputeStrategy: StrategySentinel})
	require.NoError(t, j.vectorizeText(table))

	assert.Equal(t, domain.KindNumber, table.Value(1, "summary").Kind())
	assert.Greater(t, table.Value(1, "summary").Num(), 0.0)

	// Empty strings score zero; nulls stay null for imputation to flag
	assert.Equal(t, 0.0, table.Value(2, "summary").Num())
	assert.True(t, table.Value(3, "summary").IsNull())
}

func TestVectorizeText_SkipsDurationColumns(t *testing.T) {
	table := dataset.New([]string{"time_spent"})
	table.Upsert(1, domain.Row{"time_spent": domain.Number(14400)})

	j := New(Config{TextColumns: []string{"time_spent"}, ImputeStrategy: StrategySentinel})
	require.NoError(t, j.vectorizeText(table))

	assert.Equal(t, float64(14400), table.Value(1, "time_spent").Num())
}

func TestEncodeCategoricals(t *testing.T) {
	table := dataset.New([]string{"issue_type"})
	table.Upsert(1, domain.Row{"issue_type": domain.String("Bug")})
	table.Upsert(2, domain.Row{"issue_type": domain.String("Task")})
	table.Upsert(3, domain.Row{"issue_type": domain.String("Bug")})
	table.Upsert(4, domain.Row{"issue_type": domain.Null()})

	j := New(Config{CategoricalColumns: []string{"issue_type"}, ImputeStrategy: StrategySentinel})
	require.NoError(t, j.encodeCategoricals(table))

	assert.False(t, table.HasColumn("issue_type"))
	assert.Equal(t, []string{"issue_type_Bug", "issue_type_Task"}, table.Columns())

	assert.True(t, table.Value(1, "issue_type_Bug").Equal(domain.Bool(true)))
	assert.True(t, table.Value(2, "issue_type_Bug").Equal(domain.Bool(false)))
	assert.True(t, table.Value(2, "issue_type_Task").Equal(domain.Bool(true)))

	// A null category is a member of nothing
	assert.True(t, table.Value(4, "issue_type_Bug").Equal(domain.Bool(false)))
	assert.True(t, table.Value(4, "issue_type_Task").Equal(domain.Bool(false)))
}

func TestEncodeMultiValue(t *testing.T) {
	table := dataset.New([]string{"labels"})
	table.Upsert(1, domain.Row{"labels": domain.String("infra,urgent")})
	table.Upsert(2, domain.Row{"labels": domain.String("urgent")})
	table.Upsert(3, domain.Row{"labels": domain.String("")})
	table.Upsert(4, domain.Row{"labels": domain.Null()})

	j := New(Config{MultiValueColumns: []string{"labels"}, ImputeStrategy: StrategySentinel})
	require.NoError(t, j.encodeMultiValue(table))

	assert.False(t, table.HasColumn("labels"))
	assert.Equal(t, []string{"labels_infra", "labels_urgent"}, table.Columns())

	assert.True(t, table.Value(1, "labels_infra").Equal(domain.Bool(true)))
	assert.True(t, table.Value(1, "labels_urgent").Equal(domain.Bool(true)))
	assert.True(t, table.Value(2, "labels_infra").Equal(domain.Bool(false)))
	assert.True(t, table.Value(3, "labels_urgent").Equal(domain.Bool(false)))
	assert.True(t, table.Value(4, "labels_urgent").Equal(domain.Bool(false)))
}

func TestImputeMissing(t *testing.T) {
	table := dataset.New([]string{"time_spent", "status_Done"})
	table.Upsert(1, domain.Row{"time_spent": domain.Number(3600), "status_Done": domain.Bool(true)})
	table.Upsert(2, domain.Row{"time_spent": domain.Null(), "status_Done": domain.Bool(false)})

	j := New(Config{ImputeStrategy: StrategySentinel})
	require.NoError(t, j.imputeMissing(table))

	// The nullable column gets a companion; the complete one does not
	assert.True(t, table.HasColumn("time_spent_observed"))
	assert.False(t, table.HasColumn("status_Done_observed"))

	assert.True(t, table.Value(1, "time_spent_observed").Equal(domain.Bool(true)))
	assert.True(t, table.Value(2, "time_spent_observed").Equal(domain.Bool(false)))
	assert.Equal(t, float64(SentinelValue), table.Value(2, "time_spent").Num())
	assert.Equal(t, float64(3600), table.Value(1, "time_spent").Num())
}

func TestClean_UnsupportedStrategyFailsBeforeTouchingData(t *testing.T) {
	table := dataset.New([]string{"summary"})
	table.Upsert(1, domain.Row{"summary": domain.String("untouched")})

	cfg := DefaultConfig()
	cfg.ImputeStrategy = "mean"
	err := New(cfg).Clean(table)

	assert.True(t, apperrors.IsUnsupportedImputation(err))
	assert.Equal(t, "untouched", table.Value(1, "summary").Str())
	assert.Equal(t, []string{"summary"}, table.Columns())
}

func TestClean_FullPipeline(t *testing.T) {
	table := dataset.NewCanonical()
	table.Upsert(1, domain.Row{
		"key":                domain.String("TEST-1"),
		"summary":            domain.String("login page crashes"),
		"description":        domain.String("crash on submit"),
		"issue_type":         domain.String("Bug"),
		"components":         domain.String("web"),
		"fix_versions":       domain.String(""),
		"reporter":           domain.String("jsmith"),
		"assignee":           domain.String("adoe"),
		"created_datetime":   domain.String("2017-03-30T11:51:04.130-0500"),
		"updated_datetime":   domain.String("2017-04-02T09:00:00.000-0500"),
		"resolved_datetime":  domain.Null(),
		"status":             domain.String("Open"),
		"labels":             domain.String("urgent"),
		"original_estimate":  domain.Number(7200),
		"remaining_estimate": domain.Null(),
		"time_spent":         domain.Null(),
		"sprints":            domain.String("Sprint 1"),
	})
	table.Upsert(2, domain.Row{
		"key":                domain.String("TEST-2"),
		"summary":            domain.String("slow search queries"),
		"description":        domain.Null(),
		"issue_type":         domain.String("Task"),
		"components":         domain.String("web,db"),
		"fix_versions":       domain.String(""),
		"reporter":           domain.String("jsmith"),
		"assignee":           domain.Null(),
		"created_datetime":   domain.String("2017-04-01T10:00:00.000-0500"),
		"updated_datetime":   domain.String("2017-04-03T10:00:00.000-0500"),
		"resolved_datetime":  domain.String("2017-04-05T16:30:00.000-0500"),
		"status":             domain.String("Done"),
		"labels":             domain.Null(),
		"original_estimate":  domain.Number(3600),
		"remaining_estimate": domain.Number(0),
		"time_spent":         domain.Number(5400),
		"sprints":            domain.String("Sprint 1,Sprint 2"),
	})

	require.NoError(t, New(DefaultConfig()).Clean(table))

	// Identifier, leaky and decomposed columns are gone
	for _, gone := range []string{"key", "sprints", "fix_versions", "created_datetime", "issue_type", "labels", "components"} {
		assert.False(t, table.HasColumn(gone), "column %s should be dropped", gone)
	}

	// Every remaining cell is numeric or boolean
	for _, column := range table.Columns() {
		for _, num := range table.Indexes() {
			kind := table.Value(num, column).Kind()
			assert.Contains(t, []domain.ValueKind{domain.KindNumber, domain.KindBool}, kind,
				"cell %d/%s has kind %v", num, column, kind)
		}
	}

	// Null effort was flagged and filled
	assert.True(t, table.Value(1, "time_spent_observed").Equal(domain.Bool(false)))
	assert.True(t, table.Value(2, "time_spent_observed").Equal(domain.Bool(true)))
	assert.Equal(t, float64(SentinelValue), table.Value(1, "time_spent").Num())

	// Date parts survived decomposition
	assert.Equal(t, float64(2017), table.Value(1, "created_year").Num())
	assert.Equal(t, float64(4), table.Value(2, "resolved_month").Num())
	assert.Equal(t, float64(5), table.Value(2, "resolved_day").Num())
}
