package model

import "strings"

// Table is one sheet of a flattened dataset.
type Table struct {
	Name    string
	Columns []string
	Rows    []*Record
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// Append adds a row and extends Columns with any field not seen before.
func (t *Table) Append(row *Record) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, k := range row.Keys() {
		if _, ok := seen[k]; !ok {
			t.Columns = append(t.Columns, k)
			seen[k] = struct{}{}
		}
	}
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Dataset is an ordered set of tables keyed by lower-cased name.
type Dataset struct {
	tables []*Table
	index  map[string]int
}

func NewDataset() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// Add inserts t, replacing any table whose name matches case-insensitively.
func (d *Dataset) Add(t *Table) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	key := strings.ToLower(strings.TrimSpace(t.Name))
	if i, ok := d.index[key]; ok {
		d.tables[i] = t
		return
	}
	d.index[key] = len(d.tables)
	d.tables = append(d.tables, t)
}

// Table looks a table up by name, case-insensitively.
func (d *Dataset) Table(name string) (*Table, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return d.tables[i], true
}

// Tables returns tables in insertion order.
func (d *Dataset) Tables() []*Table {
	if d == nil {
		return nil
	}
	out := make([]*Table, len(d.tables))
	copy(out, d.tables)
	return out
}

// RowCounts returns the number of rows per table name.
func (d *Dataset) RowCounts() map[string]int {
	out := make(map[string]int, len(d.tables))
	for _, t := range d.tables {
		out[t.Name] = len(t.Rows)
	}
	return out
}

// Empty reports whether no table has any row.
func (d *Dataset) Empty() bool {
	for _, t := range d.tables {
		if len(t.Rows) > 0 {
			return false
		}
	}
	return true
}
