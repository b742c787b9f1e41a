// Package workbook reads and writes flattened RIPS datasets as xlsx files.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/ripsconv/internal/model"
)

// MaxSheetNameLen is the xlsx limit on sheet names.
const MaxSheetNameLen = 31

// ErrEmptyDataset is returned when there is no row to write.
var ErrEmptyDataset = errors.New("dataset has no rows")

// SheetName caps name at MaxSheetNameLen characters.
func SheetName(name string) string {
	if utf8.RuneCountInString(name) <= MaxSheetNameLen {
		return name
	}
	return string([]rune(name)[:MaxSheetNameLen])
}

// Write stores every non-empty table of ds as one sheet: a header row with
// the table columns, then one row per record.
func Write(w io.Writer, ds *model.Dataset) error {
	if ds.Empty() {
		return ErrEmptyDataset
	}

	f := excelize.NewFile()
	defer f.Close()
	defaultSheet := f.GetSheetName(0)

	first := true
	for _, t := range ds.Tables() {
		if len(t.Rows) == 0 {
			continue
		}
		sheet := SheetName(t.Name)
		if first {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("name sheet %s: %w", sheet, err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		header := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header of %s: %w", sheet, err)
		}

		for i, row := range t.Rows {
			cells := make([]any, len(t.Columns))
			for j, c := range t.Columns {
				cells[j] = cellValue(row.Value(c))
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// cellValue maps a Value onto the excelize cell types. Booleans and times
// are written as text so they read back unchanged.
func cellValue(v model.Value) any {
	switch v.Kind() {
	case model.KindNull:
		return nil
	case model.KindInt:
		return v.Int()
	case model.KindFloat:
		if v.IsMissing() {
			return nil
		}
		return v.Float()
	case model.KindString:
		return v.Str()
	default:
		return v.Text()
	}
}

// Read loads every sheet of an xlsx file. The first non-empty row of a sheet
// is its header; fully empty rows are skipped; empty cells become null and
// all other cells strings holding the raw cell value. name labels errors.
func Read(r io.Reader, name string) (*model.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &model.MalformedInputError{Path: name, Err: err}
	}
	defer f.Close()

	ds := model.NewDataset()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &model.MalformedInputError{Path: name, Err: fmt.Errorf("sheet %s: %w", sheet, err)}
		}
		ds.Add(tableFromRows(sheet, rows))
	}
	return ds, nil
}

type column struct {
	name  string
	index int
}

func tableFromRows(sheet string, rows [][]string) *model.Table {
	t := model.NewTable(sheet)
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return t
	}

	cols := headerColumns(rows[start])
	for _, c := range cols {
		t.Columns = append(t.Columns, c.name)
	}
	for _, cells := range rows[start+1:] {
		if blankRow(cells) {
			continue
		}
		rec := model.NewRecord()
		for _, c := range cols {
			v := model.Null()
			if c.index < len(cells) && cells[c.index] != "" {
				v = model.String(cells[c.index])
			}
			rec.Set(c.name, v)
		}
		t.Append(rec)
	}
	return t
}

// headerColumns skips blank header cells and suffixes repeated names with
// ".1", ".2", ...
func headerColumns(header []string) []column {
	var cols []column
	seen := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		name := h
		if n, ok := seen[h]; ok {
			name = fmt.Sprintf("%s.%d", h, n)
			seen[h] = n + 1
		} else {
			seen[h] = 1
		}
		cols = append(cols, column{name: name, index: i})
	}
	return cols
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
