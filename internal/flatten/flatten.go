// Package flatten turns nested RIPS invoices into one table per entity.
package flatten

import (
	"github.com/rs/zerolog"

	"github.com/gyeh/ripsconv/internal/model"
	"github.com/gyeh/ripsconv/internal/normalize"
)

// Document is one decoded invoice and the path it was read from.
type Document struct {
	Path    string
	Invoice *model.Invoice
}

// Report describes what flattening skipped.
type Report struct {
	// DroppedCategories counts records under unknown "servicios" keys, by key.
	DroppedCategories map[string]int
}

// Flatten copies every patient and service record into its entity table,
// adding the synthetic join columns. Values pass through unchanged. Rows keep
// document order, then patient order, then record order.
//
// The returned dataset always holds the patients table followed by one table
// per known category, in model.AllCategories order; tables may be empty.
func Flatten(log zerolog.Logger, docs []Document) (*model.Dataset, *Report) {
	patients := model.NewTable(model.PatientsSheet)
	services := make(map[string]*model.Table, len(model.AllCategories))
	for _, c := range model.AllCategories {
		services[c.Name] = model.NewTable(c.Sheet)
	}
	report := &Report{DroppedCategories: map[string]int{}}

	for _, doc := range docs {
		invoice := doc.Invoice.InvoiceNumber
		if invoice.IsMissing() {
			invoice = model.String(model.NoInvoice)
		}
		source := model.String(normalize.SourceName(doc.Path))

		for _, p := range doc.Invoice.Patients {
			row := p.Fields.Clone()
			row.Delete(model.FieldServices)
			row.Set(model.ColSourceFile, source)
			row.Set(model.ColInvoiceNumber, invoice)
			patients.Append(row)

			for _, group := range p.Services {
				cat, ok := model.CategoryByName(group.Category)
				if !ok {
					if report.DroppedCategories[group.Category] == 0 {
						log.Warn().
							Str("file", doc.Path).
							Str("category", group.Category).
							Msg("unknown service category, records dropped")
					}
					report.DroppedCategories[group.Category] += group.Size()
					continue
				}
				table := services[cat.Name]
				for _, rec := range group.Records {
					out := rec.Clone()
					out.Set(model.ColInvoiceNumber, invoice)
					out.Set(model.ColPatientDocument, p.DocumentNumber())
					out.Set(model.ColSourceFile, source)
					table.Append(out)
				}
			}
		}
	}

	ds := model.NewDataset()
	ds.Add(patients)
	for _, c := range model.AllCategories {
		ds.Add(services[c.Name])
	}
	return ds, report
}
