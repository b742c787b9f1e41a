package model

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "null"},
		{"int", Int(42), "42"},
		{"float", Float(1500.5), "1500.5"},
		{"nan", Float(math.NaN()), "null"},
		{"inf", Float(math.Inf(1)), "null"},
		{"string no html escape", String("a<b>&c"), `"a<b>&c"`},
		{"accents", String("Bogotá"), `"Bogotá"`},
		{"bool", Bool(true), "true"},
		{"time", Time(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)), `"2024-05-01T10:00:00Z"`},
		{"array", Array([]Value{Int(1), String("x")}), `[1,"x"]`},
		{"empty array", Array(nil), "[]"},
	}
	for _, tt := range tests {
		got, err := tt.v.MarshalJSON()
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestValueUnmarshalNumbers(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`[1, 1.0, 2.5, 12345678901234567890]`), &v); err != nil {
		t.Fatal(err)
	}
	items := v.Array()
	if items[0].Kind() != KindInt || items[0].Int() != 1 {
		t.Errorf("1 = %v (%s)", items[0], items[0].Kind())
	}
	if items[1].Kind() != KindFloat {
		t.Errorf("1.0 kind = %s, want float", items[1].Kind())
	}
	if items[2].Float() != 2.5 {
		t.Errorf("2.5 = %v", items[2])
	}
	if items[3].Kind() != KindFloat {
		t.Errorf("overflowing literal kind = %s, want float", items[3].Kind())
	}
}

func TestValueKey(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{String(" FE100 "), "FE100"},
		{String("123.0"), "123"},
		{Float(123), "123"},
		{Int(7), "7"},
		{String("12.5"), "12.5"},
		{Null(), ""},
		{Float(math.Inf(-1)), ""},
		{String("007"), "007"},
		{String("1E5"), "1E5"},
		{String("2.5e3"), "2.5e3"},
		{String("-4.00"), "-4"},
		{String("4."), "4."},
		{String("A.0"), "A.0"},
	}
	for _, tt := range tests {
		if got := tt.v.Key(); got != tt.want {
			t.Errorf("Key(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestValueText(t *testing.T) {
	if got := Float(0.1).Text(); got != "0.1" {
		t.Errorf("Float text = %s", got)
	}
	if got := Float(1e21).Text(); strings.ContainsAny(got, "eE") {
		t.Errorf("Float text = %s, want plain decimal", got)
	}
	obj := Object(RecordOf("b", 1, "a", 2))
	if got := obj.Text(); got != `{"b":1,"a":2}` {
		t.Errorf("object text = %s", got)
	}
}

func TestFromAny(t *testing.T) {
	if v := FromAny(json.Number("10")); v.Kind() != KindInt {
		t.Errorf("json.Number kind = %s", v.Kind())
	}
	if v := FromAny(3); v.Kind() != KindInt || v.Int() != 3 {
		t.Errorf("int = %v", v)
	}
	if v := FromAny(nil); !v.IsNull() {
		t.Errorf("nil = %v", v)
	}
	if v := FromAny(struct{}{}); v.Kind() != KindString {
		t.Errorf("struct kind = %s", v.Kind())
	}
}

func TestParseKind(t *testing.T) {
	for k := KindNull; k <= KindObject; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%s) = %v, %v", k, got, ok)
		}
	}
	if _, ok := ParseKind("decimal"); ok {
		t.Error("ParseKind accepted unknown name")
	}
}
