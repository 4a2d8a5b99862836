// Package table holds the in-memory mission table and persists it as CSV or
// XLSX. Saves replace the target file atomically.
package table

// Table is a header plus string rows. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// New builds a Table, padding or truncating rows to the header width.
func New(columns []string, rows [][]string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.reindex()
	t.Rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, fit(r, len(t.Columns)))
	}
	return t
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// EnsureColumns appends any missing columns, filling them with empty strings.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		if t.HasColumn(name) {
			continue
		}
		t.Columns = append(t.Columns, name)
		t.index[name] = len(t.Columns) - 1
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], "")
		}
	}
}

// Get returns the cell at row i and the named column, or "" when the column
// does not exist.
func (t *Table) Get(i int, column string) string {
	c, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.Rows[i][c]
}

// Set writes a cell, adding the column first if needed.
func (t *Table) Set(i int, column, value string) {
	if !t.HasColumn(column) {
		t.EnsureColumns(column)
	}
	t.Rows[i][t.index[column]] = value
}

// Row returns an accessor bound to row i.
func (t *Table) Row(i int) func(column string) string {
	return func(column string) string {
		return t.Get(i, column)
	}
}
