package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
)

func TestTable_UpsertKeepsAscendingOrder(t *testing.T) {
	table := New([]string{"summary"})

	table.Upsert(5, domain.Row{"summary": domain.String("five")})
	table.Upsert(1, domain.Row{"summary": domain.String("one")})
	table.Upsert(3, domain.Row{"summary": domain.String("three")})

	assert.Equal(t, []int{1, 3, 5}, table.Indexes())
	assert.Equal(t, 3, table.Len())
}

func TestTable_UpsertOverwrites(t *testing.T) {
	table := New([]string{"summary"})

	table.Upsert(7, domain.Row{"summary": domain.String("first")})
	table.Upsert(7, domain.Row{"summary": domain.String("second")})

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "second", table.Value(7, "summary").Str())
}

func TestTable_MissingCellsReadNull(t *testing.T) {
	table := New([]string{"summary"})
	table.Upsert(1, domain.Row{})

	assert.True(t, table.Value(1, "summary").IsNull())
	assert.True(t, table.Value(99, "summary").IsNull())
}

func TestTable_AddDropColumn(t *testing.T) {
	table := New([]string{"a", "b"})
	table.Upsert(1, domain.Row{"a": domain.Number(1), "b": domain.Number(2)})

	table.AddColumn("c")
	table.AddColumn("c") // idempotent
	assert.Equal(t, []string{"a", "b", "c"}, table.Columns())
	assert.True(t, table.Value(1, "c").IsNull())

	table.DropColumn("b")
	assert.Equal(t, []string{"a", "c"}, table.Columns())
	row, _ := table.Row(1)
	_, remains := row["b"]
	assert.False(t, remains)
}

func TestTable_Column(t *testing.T) {
	table := New([]string{"n"})
	table.Upsert(2, domain.Row{"n": domain.Number(20)})
	table.Upsert(1, domain.Row{"n": domain.Number(10)})

	values := table.Column("n")
	assert.Equal(t, float64(10), values[0].Num())
	assert.Equal(t, float64(20), values[1].Num())
}
