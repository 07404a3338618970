package dataset

import (
	"sort"

	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
)

// Table is an ordered issue table: rows keyed by issue number, named
// columns, one row per number. Cells a row never received read as null.
type Table struct {
	columns []string
	rows    map[int]domain.Row
	index   []int // ascending issue numbers
}

// New creates an empty table with the given column set
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		columns: cols,
		rows:    make(map[int]domain.Row),
	}
}

// NewCanonical creates an empty table with the canonical issue header
func NewCanonical() *Table {
	return New(domain.Header)
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	return t.columns
}

// HasColumn reports whether the table has a column with the given name
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column if it is not already present. Existing rows
// read null in it until set.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.columns = append(t.columns, name)
	}
}

// DropColumn removes a column and its cells
func (t *Table) DropColumn(name string) {
	for i, c := range t.columns {
		if c == name {
			t.columns = append(t.columns[:i], t.columns[i+1:]...)
			break
		}
	}
	for _, row := range t.rows {
		delete(row, name)
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Indexes returns the issue numbers in ascending order
func (t *Table) Indexes() []int {
	return t.index
}

// Upsert inserts or overwrites the row at the given issue number
func (t *Table) Upsert(num int, row domain.Row) {
	if _, exists := t.rows[num]; !exists {
		pos := sort.SearchInts(t.index, num)
		t.index = append(t.index, 0)
		copy(t.index[pos+1:], t.index[pos:])
		t.index[pos] = num
	}
	t.rows[num] = row
}

// Row returns the row at the given issue number
func (t *Table) Row(num int) (domain.Row, bool) {
	row, ok := t.rows[num]
	return row, ok
}

// Value returns a single cell; missing rows and cells read as null
func (t *Table) Value(num int, column string) domain.Value {
	row, ok := t.rows[num]
	if !ok {
		return domain.Null()
	}
	v, ok := row[column]
	if !ok {
		return domain.Null()
	}
	return v
}

// Set writes a single cell, creating the row if needed
func (t *Table) Set(num int, column string, v domain.Value) {
	row, ok := t.rows[num]
	if !ok {
		row = make(domain.Row)
		t.Upsert(num, row)
	}
	row[column] = v
}

// Column returns a column's cells in row-index order
func (t *Table) Column(name string) []domain.Value {
	values := make([]domain.Value, len(t.index))
	for i, num := range t.index {
		values[i] = t.Value(num, name)
	}
	return values
}
