package workbook

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/ripsconv/internal/model"
)

func mkXLSX(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				t.Fatal(err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				_ = f.SetCellValue(name, cell, v)
			}
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWriteReadRoundTrip(t *testing.T) {
	ds := model.NewDataset()
	patients := model.NewTable(model.PatientsSheet)
	patients.Append(model.RecordOf("numDocumentoIdentificacion", "123", "edad", int64(30), "archivo_origen", "F1", "numFactura", "F1"))
	patients.Append(model.RecordOf("numDocumentoIdentificacion", "456", "sexo", "F", "archivo_origen", "F1", "numFactura", "F1"))
	ds.Add(patients)
	consultas := model.NewTable("Consultas")
	consultas.Append(model.RecordOf("consecutivo", int64(1), "vrServicio", 1500.5, "pagado", true, "numFactura", "F1"))
	ds.Add(consultas)
	ds.Add(model.NewTable("Medicamentos"))

	var buf bytes.Buffer
	if err := Write(&buf, ds); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(bytes.NewReader(buf.Bytes()), "book.xlsx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	tables := got.Tables()
	if len(tables) != 2 {
		t.Fatalf("tables = %d, want 2 (empty table skipped)", len(tables))
	}
	if tables[0].Name != "Usuarios" || tables[1].Name != "Consultas" {
		t.Errorf("sheet order = %s, %s", tables[0].Name, tables[1].Name)
	}

	u, _ := got.Table("usuarios")
	wantCols := "numDocumentoIdentificacion,edad,archivo_origen,numFactura,sexo"
	if strings.Join(u.Columns, ",") != wantCols {
		t.Errorf("columns = %v, want %s", u.Columns, wantCols)
	}
	if len(u.Rows) != 2 {
		t.Fatalf("rows = %d", len(u.Rows))
	}
	if v := u.Rows[0].Value("edad"); v.Str() != "30" {
		t.Errorf("edad = %v", v)
	}
	if v := u.Rows[0].Value("sexo"); !v.IsNull() {
		t.Errorf("missing cell = %v, want null", v)
	}
	if v := u.Rows[1].Value("edad"); !v.IsNull() {
		t.Errorf("missing cell = %v, want null", v)
	}

	c, _ := got.Table("CONSULTAS")
	row := c.Rows[0]
	if v := row.Value("vrServicio"); v.Str() != "1500.5" {
		t.Errorf("vrServicio = %q", v.Str())
	}
	if v := row.Value("pagado"); v.Str() != "true" {
		t.Errorf("pagado = %q", v.Str())
	}
}

func TestWriteEmptyDataset(t *testing.T) {
	ds := model.NewDataset()
	ds.Add(model.NewTable(model.PatientsSheet))
	if err := Write(&bytes.Buffer{}, ds); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("err = %v, want ErrEmptyDataset", err)
	}
}

func TestReadHeaderHandling(t *testing.T) {
	blob := mkXLSX(t, map[string][][]any{
		"usuarios": {
			{},
			{"numFactura", "", "nombre", "nombre"},
			{"F1", "ignored", "Ana", "Maria"},
			{"", "", "", ""},
			{"F1", nil, " Luis "},
		},
	})
	ds, err := Read(bytes.NewReader(blob), "x.xlsx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	u, ok := ds.Table("Usuarios")
	if !ok {
		t.Fatal("usuarios missing")
	}
	if strings.Join(u.Columns, ",") != "numFactura,nombre,nombre.1" {
		t.Errorf("columns = %v", u.Columns)
	}
	if len(u.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(u.Rows))
	}
	if v := u.Rows[0].Value("nombre.1"); v.Str() != "Maria" {
		t.Errorf("nombre.1 = %v", v)
	}
	if v := u.Rows[1].Value("nombre"); v.Str() != " Luis " {
		t.Errorf("nombre = %q, want untrimmed raw value", v.Str())
	}
}

func TestReadNumericCellsRaw(t *testing.T) {
	blob := mkXLSX(t, map[string][][]any{
		"Usuarios": {
			{"codMunicipioResidencia", "vrServicio"},
			{58370.0, 0.1},
		},
	})
	ds, err := Read(bytes.NewReader(blob), "x.xlsx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	u, _ := ds.Table("usuarios")
	if v := u.Rows[0].Value("codMunicipioResidencia"); v.Str() != "58370" {
		t.Errorf("codMunicipioResidencia = %q", v.Str())
	}
	if v := u.Rows[0].Value("vrServicio"); v.Str() != "0.1" {
		t.Errorf("vrServicio = %q", v.Str())
	}
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(strings.NewReader("not a zip"), "bad.xlsx")
	var mie *model.MalformedInputError
	if !errors.As(err, &mie) || mie.Path != "bad.xlsx" {
		t.Fatalf("err = %v, want MalformedInputError", err)
	}
}

func TestSheetName(t *testing.T) {
	long := strings.Repeat("a", 40)
	if got := SheetName(long); len(got) != MaxSheetNameLen {
		t.Errorf("len = %d", len(got))
	}
	if got := SheetName("Consultas"); got != "Consultas" {
		t.Errorf("SheetName = %q", got)
	}
}
