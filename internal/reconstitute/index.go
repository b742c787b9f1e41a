package reconstitute

import "github.com/gyeh/ripsconv/internal/model"

// serviceIndex maps (invoice number, document number) to row positions of
// one service table. Built once per call so patients do not rescan tables.
type serviceIndex struct {
	table     *model.Table
	category  string
	byInvoice bool
	rows      map[string][]int
}

func indexKey(invoice, document string) string {
	return invoice + "\x00" + document
}

func newServiceIndex(t *model.Table, category string) *serviceIndex {
	idx := &serviceIndex{
		table:     t,
		category:  category,
		byInvoice: t.HasColumn(model.ColInvoiceNumber),
		rows:      make(map[string][]int),
	}
	for i, row := range t.Rows {
		doc := serviceDocument(row).Key()
		if doc == "" {
			continue
		}
		inv := ""
		if idx.byInvoice {
			inv = row.Value(model.ColInvoiceNumber).Key()
			if inv == "" {
				continue
			}
		}
		key := indexKey(inv, doc)
		idx.rows[key] = append(idx.rows[key], i)
	}
	return idx
}

// lookup returns the positions of rows for a patient under an invoice.
func (idx *serviceIndex) lookup(invoice, document string) []int {
	if document == "" {
		return nil
	}
	if !idx.byInvoice {
		invoice = ""
	}
	return idx.rows[indexKey(invoice, document)]
}

// serviceDocument reads the patient document of a service row from the
// flattened alias, falling back to the RIPS identity field.
func serviceDocument(row *model.Record) model.Value {
	if v := row.Value(model.ColPatientDocument); v.Key() != "" {
		return v
	}
	return row.Value(model.FieldDocumentNumber)
}

// patientDocument reads the identity of a patient row, falling back to the
// flattened alias.
func patientDocument(row *model.Record) model.Value {
	if v := row.Value(model.FieldDocumentNumber); v.Key() != "" {
		return v
	}
	return row.Value(model.ColPatientDocument)
}
