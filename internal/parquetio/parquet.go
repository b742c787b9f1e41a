// Package parquetio stores a flattened dataset as long-format Parquet, one
// row per cell, so tables with drifting column sets share a single schema.
package parquetio

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/ripsconv/internal/model"
)

// headerKind marks the row-0 entries that declare a table's columns.
const headerKind = "column"

// CellRow is one cell of one table. Row 0 holds the header: one entry per
// column with a nil Value. Data rows start at 1.
type CellRow struct {
	Sheet  string  `parquet:"sheet"`
	Row    int64   `parquet:"row"`
	Column string  `parquet:"column"`
	Kind   string  `parquet:"kind"`
	Value  *string `parquet:"value,optional"`
}

// Write encodes every table of ds, including empty ones, with Snappy compression.
func Write(w io.Writer, ds *model.Dataset) (int, error) {
	writer := parquet.NewGenericWriter[CellRow](w,
		parquet.Compression(&parquet.Snappy),
	)

	count := 0
	write := func(rows []CellRow) error {
		if len(rows) == 0 {
			return nil
		}
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("write cell rows: %w", err)
		}
		count += len(rows)
		return nil
	}

	for _, t := range ds.Tables() {
		header := make([]CellRow, 0, len(t.Columns))
		for _, c := range t.Columns {
			header = append(header, CellRow{Sheet: t.Name, Row: 0, Column: c, Kind: headerKind})
		}
		if err := write(header); err != nil {
			writer.Close()
			return count, err
		}
		for i, rec := range t.Rows {
			cells := make([]CellRow, 0, rec.Len())
			for _, c := range t.Columns {
				v, ok := rec.Get(c)
				if !ok || v.IsNull() {
					continue
				}
				text := cellText(v)
				cells = append(cells, CellRow{
					Sheet:  t.Name,
					Row:    int64(i + 1),
					Column: c,
					Kind:   v.Kind().String(),
					Value:  &text,
				})
			}
			if len(cells) == 0 {
				// Keep all-null rows addressable.
				cells = append(cells, CellRow{Sheet: t.Name, Row: int64(i + 1), Kind: model.KindNull.String()})
			}
			if err := write(cells); err != nil {
				writer.Close()
				return count, err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return count, fmt.Errorf("close parquet writer: %w", err)
	}
	return count, nil
}

// Read decodes a file produced by Write. name labels errors.
func Read(r io.ReaderAt, size int64, name string) (*model.Dataset, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, &model.MalformedInputError{Path: name, Err: fmt.Errorf("open parquet: %w", err)}
	}
	reader := parquet.NewGenericReader[CellRow](pf)
	defer reader.Close()

	b := newBuilder()
	buf := make([]CellRow, 512)
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			if err := b.add(buf[i]); err != nil {
				return nil, &model.MalformedInputError{Path: name, Err: err}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, &model.MalformedInputError{Path: name, Err: fmt.Errorf("read parquet rows: %w", readErr)}
		}
	}
	return b.dataset(), nil
}

type tableBuilder struct {
	table *model.Table
	rows  map[int64]*model.Record
	order []int64
}

type builder struct {
	tables []*tableBuilder
	byName map[string]*tableBuilder
}

func newBuilder() *builder {
	return &builder{byName: map[string]*tableBuilder{}}
}

func (b *builder) add(c CellRow) error {
	tb, ok := b.byName[c.Sheet]
	if !ok {
		tb = &tableBuilder{table: model.NewTable(c.Sheet), rows: map[int64]*model.Record{}}
		b.byName[c.Sheet] = tb
		b.tables = append(b.tables, tb)
	}

	if c.Row == 0 {
		if c.Kind != headerKind {
			return fmt.Errorf("sheet %s: row 0 entry of kind %q", c.Sheet, c.Kind)
		}
		if !tb.table.HasColumn(c.Column) {
			tb.table.Columns = append(tb.table.Columns, c.Column)
		}
		return nil
	}

	rec, ok := tb.rows[c.Row]
	if !ok {
		rec = model.NewRecord()
		tb.rows[c.Row] = rec
		tb.order = append(tb.order, c.Row)
	}
	kind, ok := model.ParseKind(c.Kind)
	if !ok {
		return fmt.Errorf("sheet %s row %d: unknown kind %q", c.Sheet, c.Row, c.Kind)
	}
	if kind == model.KindNull || c.Column == "" {
		return nil
	}
	v, err := decodeCell(kind, c.Value)
	if err != nil {
		return fmt.Errorf("sheet %s row %d column %s: %w", c.Sheet, c.Row, c.Column, err)
	}
	rec.Set(c.Column, v)
	return nil
}

// dataset fills every row with all table columns, nulls where no cell was stored.
func (b *builder) dataset() *model.Dataset {
	ds := model.NewDataset()
	for _, tb := range b.tables {
		t := tb.table
		for _, n := range tb.order {
			src := tb.rows[n]
			rec := model.NewRecord()
			for _, c := range t.Columns {
				rec.Set(c, src.Value(c))
			}
			for _, k := range src.Keys() {
				if !rec.Has(k) {
					rec.Set(k, src.Value(k))
				}
			}
			t.Append(rec)
		}
		ds.Add(t)
	}
	return ds
}
