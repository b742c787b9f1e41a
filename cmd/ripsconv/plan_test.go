package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gyeh/ripsconv/internal/model"
)

func TestPrintPlan(t *testing.T) {
	summary := &model.RunSummary{
		Mode:        "EVENT",
		Inputs:      []string{"book.xlsx"},
		InputSHA256: map[string]string{"book.xlsx": "abc123"},
		RowsByTable: map[string]int{"Usuarios": 2, "Consultas": 3},
		Invoices:    []string{"FE1", "FE2"},
		Patients:    2,
		Output:      "RIPS_Evento_JSONs.zip",
		Files:       []string{"FE1_RIPS.json", "FE2_RIPS.json"},
		Diagnostics: []model.Diagnostic{{Table: "Usuarios", Row: 2, Field: "tipoUsuario", Value: "x", Reason: "no digits in code"}},
	}
	classes, err := model.NewClassification([]string{"vrServicio"}, []string{"tipoUsuario"}, "codMunicipioResidencia")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printPlan(&buf, summary, classes)
	out := buf.String()

	for _, want := range []string{
		"SHA-256:  abc123",
		"Consultas",
		"Known categories: " + strings.Join(model.CategoryNames(), ", "),
		"numeric         vrServicio",
		"code            tipoUsuario",
		"residence_code  codMunicipioResidencia",
		"Invoices: 2, patients: 2",
		"FE2_RIPS.json",
		"1 fields coerced",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Consultas") > strings.Index(out, "Usuarios") {
		t.Error("sheets not sorted")
	}
}
