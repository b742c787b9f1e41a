package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// RIPS wire field names.
const (
	FieldObligorID      = "numDocumentoIdObligado"
	FieldInvoiceNumber  = "numFactura"
	FieldNoteType       = "tipoNota"
	FieldNoteNumber     = "numNota"
	FieldPatients       = "usuarios"
	FieldServices       = "servicios"
	FieldDocumentNumber = "numDocumentoIdentificacion"
)

// Synthetic join columns added by flattening. They never appear in JSON output.
const (
	ColInvoiceNumber   = FieldInvoiceNumber
	ColPatientDocument = "documento_usuario"
	ColSourceFile      = "archivo_origen"
)

// NoInvoice is used as the invoice number of documents that carry none.
const NoInvoice = "SIN_FACTURA"

// Invoice is one RIPS JSON document.
type Invoice struct {
	ObligorID     Value
	InvoiceNumber Value
	NoteType      Value
	NoteNumber    Value
	Patients      []*Patient
}

// Patient holds identity and demographic fields plus service records grouped by category.
type Patient struct {
	Fields   *Record
	Services []ServiceGroup
}

// ServiceGroup is the list of records under one "servicios" key. Keys that
// are not a known category are kept as Raw, whatever their shape, and have
// no Records.
type ServiceGroup struct {
	Category string
	Records  []*Record
	Raw      Value
}

// Known reports whether the group is a recognized service category.
func (g ServiceGroup) Known() bool {
	_, ok := CategoryByName(g.Category)
	return ok
}

// Size counts the entries of the group: records for a known category, list
// items or one opaque value otherwise.
func (g ServiceGroup) Size() int {
	switch {
	case g.Records != nil:
		return len(g.Records)
	case g.Raw.Kind() == KindArray:
		return len(g.Raw.Array())
	case g.Raw.IsNull():
		return 0
	}
	return 1
}

// DocumentNumber returns the patient's identity document, the natural join key.
func (p *Patient) DocumentNumber() Value {
	return p.Fields.Value(FieldDocumentNumber)
}

// Service returns the records for a category key, matched exactly.
func (p *Patient) Service(category string) []*Record {
	for _, g := range p.Services {
		if g.Category == category {
			return g.Records
		}
	}
	return nil
}

// DecodeInvoice reads one RIPS JSON document. An absent or null numFactura
// becomes NoInvoice.
func DecodeInvoice(r io.Reader) (*Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	var root Value
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	if root.Kind() != KindObject {
		return nil, fmt.Errorf("decode invoice: expected object, got %s", root.Kind())
	}
	doc := root.Object()

	inv := &Invoice{
		ObligorID:     doc.Value(FieldObligorID),
		InvoiceNumber: doc.Value(FieldInvoiceNumber),
		NoteType:      doc.Value(FieldNoteType),
		NoteNumber:    doc.Value(FieldNoteNumber),
	}
	if inv.InvoiceNumber.IsMissing() {
		inv.InvoiceNumber = String(NoInvoice)
	}

	patients := doc.Value(FieldPatients)
	switch patients.Kind() {
	case KindNull:
	case KindArray:
		for i, item := range patients.Array() {
			if item.Kind() != KindObject {
				return nil, fmt.Errorf("decode invoice: %s[%d] is %s, not object", FieldPatients, i, item.Kind())
			}
			p, err := patientFromRecord(item.Object())
			if err != nil {
				return nil, fmt.Errorf("decode invoice: %s[%d]: %w", FieldPatients, i, err)
			}
			inv.Patients = append(inv.Patients, p)
		}
	default:
		return nil, fmt.Errorf("decode invoice: %s is %s, not array", FieldPatients, patients.Kind())
	}
	return inv, nil
}

func patientFromRecord(rec *Record) (*Patient, error) {
	p := &Patient{Fields: rec.Clone()}
	p.Fields.Delete(FieldServices)

	services := rec.Value(FieldServices)
	switch services.Kind() {
	case KindNull:
		return p, nil
	case KindObject:
	default:
		return nil, fmt.Errorf("%s is %s, not object", FieldServices, services.Kind())
	}
	groups := services.Object()
	for _, cat := range groups.Keys() {
		list := groups.Value(cat)
		if list.Kind() == KindNull {
			continue
		}
		if _, known := CategoryByName(cat); !known {
			p.Services = append(p.Services, ServiceGroup{Category: cat, Raw: list})
			continue
		}
		if list.Kind() != KindArray {
			return nil, fmt.Errorf("%s.%s is %s, not array", FieldServices, cat, list.Kind())
		}
		g := ServiceGroup{Category: cat, Records: []*Record{}}
		for j, item := range list.Array() {
			if item.Kind() != KindObject {
				return nil, fmt.Errorf("%s.%s[%d] is %s, not object", FieldServices, cat, j, item.Kind())
			}
			g.Records = append(g.Records, item.Object())
		}
		p.Services = append(p.Services, g)
	}
	return p, nil
}

// Record renders the patient in wire form: its fields followed by "servicios".
func (p *Patient) Record() *Record {
	out := p.Fields.Clone()
	out.Delete(FieldServices)
	services := NewRecord()
	for _, g := range p.Services {
		if g.Records == nil && !g.Raw.IsNull() {
			services.Set(g.Category, g.Raw)
			continue
		}
		items := make([]Value, len(g.Records))
		for i, r := range g.Records {
			items[i] = Object(r)
		}
		services.Set(g.Category, Array(items))
	}
	out.Set(FieldServices, Object(services))
	return out
}

// Record renders the invoice in wire form.
func (inv *Invoice) Record() *Record {
	patients := make([]Value, len(inv.Patients))
	for i, p := range inv.Patients {
		patients[i] = Object(p.Record())
	}
	out := NewRecord()
	out.Set(FieldObligorID, inv.ObligorID)
	out.Set(FieldInvoiceNumber, inv.InvoiceNumber)
	out.Set(FieldNoteType, inv.NoteType)
	out.Set(FieldNoteNumber, inv.NoteNumber)
	out.Set(FieldPatients, Array(patients))
	return out
}

func (inv *Invoice) MarshalJSON() ([]byte, error) {
	return inv.Record().MarshalJSON()
}

// Encode serializes the invoice as 2-space indented UTF-8 JSON without HTML escaping.
func (inv *Invoice) Encode() ([]byte, error) {
	compact, err := inv.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
