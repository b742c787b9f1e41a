package parquetio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gyeh/ripsconv/internal/model"
)

func sampleDataset() *model.Dataset {
	ds := model.NewDataset()
	u := model.NewTable(model.PatientsSheet)
	u.Append(model.RecordOf("numDocumentoIdentificacion", "123", "edad", int64(30), "numFactura", "F1"))
	u.Append(model.RecordOf("numDocumentoIdentificacion", "456", "sexo", "F", "numFactura", "F1"))
	u.Append(model.NewRecord())
	ds.Add(u)

	c := model.NewTable("Consultas")
	c.Append(model.RecordOf(
		"vrServicio", 1500.25,
		"pagado", true,
		"fechaInicioAtencion", time.Date(2024, 3, 1, 8, 30, 0, 500, time.UTC),
		"extra", model.Object(model.RecordOf("b", int64(1), "a", "x")),
	))
	ds.Add(c)
	ds.Add(model.NewTable("Medicamentos"))
	return ds
}

func roundTrip(t *testing.T, ds *model.Dataset) *model.Dataset {
	t.Helper()
	var buf bytes.Buffer
	if _, err := Write(&buf, ds); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "cells.parquet")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return got
}

func TestRoundTripKeepsTypes(t *testing.T) {
	got := roundTrip(t, sampleDataset())

	u, ok := got.Table("usuarios")
	if !ok {
		t.Fatal("usuarios missing")
	}
	if strings.Join(u.Columns, ",") != "numDocumentoIdentificacion,edad,numFactura,sexo" {
		t.Errorf("columns = %v", u.Columns)
	}
	if len(u.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(u.Rows))
	}
	if v := u.Rows[0].Value("edad"); v.Kind() != model.KindInt || v.Int() != 30 {
		t.Errorf("edad = %v", v)
	}
	if v := u.Rows[1].Value("edad"); !v.IsNull() {
		t.Errorf("edad = %v, want null", v)
	}
	if u.Rows[2].Len() != len(u.Columns) {
		t.Errorf("empty row has %d fields", u.Rows[2].Len())
	}

	c, _ := got.Table("Consultas")
	row := c.Rows[0]
	if v := row.Value("vrServicio"); v.Kind() != model.KindFloat || v.Float() != 1500.25 {
		t.Errorf("vrServicio = %v", v)
	}
	if v := row.Value("pagado"); v.Kind() != model.KindBool || !v.Bool() {
		t.Errorf("pagado = %v", v)
	}
	want := time.Date(2024, 3, 1, 8, 30, 0, 500, time.UTC)
	if v := row.Value("fechaInicioAtencion"); v.Kind() != model.KindTime || !v.Time().Equal(want) {
		t.Errorf("fechaInicioAtencion = %v", v)
	}
	obj := row.Value("extra")
	if obj.Kind() != model.KindObject || strings.Join(obj.Object().Keys(), ",") != "b,a" {
		t.Errorf("extra = %v", obj)
	}
}

func TestRoundTripKeepsEmptyTables(t *testing.T) {
	ds := model.NewDataset()
	m := model.NewTable("Medicamentos")
	m.Columns = []string{"codTecnologiaSalud", "numFactura"}
	ds.Add(m)

	got := roundTrip(t, ds)
	tm, ok := got.Table("medicamentos")
	if !ok {
		t.Fatal("table with header only was dropped")
	}
	if len(tm.Rows) != 0 || len(tm.Columns) != 2 {
		t.Errorf("table = %d rows, %v", len(tm.Rows), tm.Columns)
	}
}

func TestReadMalformed(t *testing.T) {
	data := []byte("definitely not parquet")
	_, err := Read(bytes.NewReader(data), int64(len(data)), "bad.parquet")
	var mie *model.MalformedInputError
	if !errors.As(err, &mie) {
		t.Fatalf("err = %v, want MalformedInputError", err)
	}
}

func TestDecodeCellRejectsBadKinds(t *testing.T) {
	s := "abc"
	if _, err := decodeCell(model.KindInt, &s); err == nil {
		t.Error("int cell accepted abc")
	}
	if _, err := decodeCell(model.KindString, nil); err == nil {
		t.Error("nil value accepted")
	}
	arr := "[1,2]"
	if _, err := decodeCell(model.KindObject, &arr); err == nil {
		t.Error("array accepted as object")
	}
}
