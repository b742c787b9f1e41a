// Package reconstitute nests a flattened RIPS dataset back into JSON invoices.
package reconstitute

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/gyeh/ripsconv/internal/model"
	"github.com/gyeh/ripsconv/internal/normalize"
)

// Mode selects the invoice grouping policy.
type Mode string

const (
	// ModePGP is capitation billing: the dataset must hold exactly one invoice.
	ModePGP Mode = "PGP"
	// ModeEvent is fee-for-service billing: one document per invoice number.
	ModeEvent Mode = "EVENT"
)

// PGPFileName is the suggested name of the single PGP document.
const PGPFileName = "Factura_RIPS_PGP.json"

// ParseMode accepts PGP, EVENT and the Spanish EVENTO, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PGP":
		return ModePGP, nil
	case "EVENT", "EVENTO":
		return ModeEvent, nil
	}
	return "", fmt.Errorf("unknown invoice mode %q (want PGP or EVENT)", s)
}

// EventFileName names the document for one invoice in EVENT mode. Path
// separators, ".." and control characters in the invoice number are replaced
// with "_" so the name stays a single archive entry.
func EventFileName(invoice string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(invoice))
	safe = strings.ReplaceAll(safe, "..", "_")
	if safe == "" {
		safe = model.NoInvoice
	}
	return safe + "_RIPS.json"
}

// Options controls one reconstitution.
type Options struct {
	Mode      Mode
	ObligorID string
	// Classes selects field rules; nil means model.DefaultClassification.
	Classes *model.Classification
	// Strict fails the run with a CoercionError when any field was altered or
	// nulled. The default keeps the lenient behaviour and only reports.
	Strict bool
}

// Document is one output invoice and its suggested file name.
type Document struct {
	Name    string
	Invoice *model.Invoice
}

// Result holds the documents of one reconstitution, in order of first
// appearance of their invoice number.
type Result struct {
	Mode        Mode
	Documents   []Document
	Diagnostics []model.Diagnostic
}

// File is a serialized output document.
type File struct {
	Name string
	Data []byte
}

// Files serializes every document.
func (r *Result) Files() ([]File, error) {
	out := make([]File, 0, len(r.Documents))
	for _, d := range r.Documents {
		data, err := d.Invoice.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", d.Name, err)
		}
		out = append(out, File{Name: d.Name, Data: data})
	}
	return out, nil
}

// Invoices lists the invoice numbers of the result documents.
func (r *Result) Invoices() []string {
	out := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = d.Invoice.InvoiceNumber.Text()
	}
	return out
}

// Reconstitute groups patient rows by invoice number, attaches the service
// rows that match each patient's invoice and document number, and normalizes
// every field. No partial result is returned on error.
func Reconstitute(log zerolog.Logger, ds *model.Dataset, opts Options) (*Result, error) {
	patients, services, err := splitTables(ds)
	if err != nil {
		return nil, err
	}

	if opts.Mode != ModePGP && opts.Mode != ModeEvent {
		return nil, fmt.Errorf("unknown invoice mode %q", opts.Mode)
	}
	invoices := DistinctInvoices(patients)
	if opts.Mode == ModePGP && len(invoices) != 1 {
		return nil, &MultipleInvoicesError{Invoices: invoices}
	}

	b := &builder{
		norm:     normalize.New(opts.Classes),
		services: services,
	}
	res := &Result{Mode: opts.Mode}
	for _, inv := range invoices {
		var rows []int
		for i, row := range patients.Rows {
			if opts.Mode == ModePGP || row.Value(model.ColInvoiceNumber).Key() == inv {
				rows = append(rows, i)
			}
		}

		doc := &model.Invoice{
			ObligorID:     model.String(opts.ObligorID),
			InvoiceNumber: model.String(inv),
			NoteType:      model.Null(),
			NoteNumber:    model.Null(),
		}
		for _, i := range rows {
			doc.Patients = append(doc.Patients, b.patient(patients, i, inv))
		}

		name := PGPFileName
		if opts.Mode == ModeEvent {
			name = EventFileName(inv)
		}
		res.Documents = append(res.Documents, Document{Name: name, Invoice: doc})
		log.Debug().
			Str("invoice", inv).
			Int("patients", len(doc.Patients)).
			Str("file", name).
			Msg("invoice assembled")
	}
	res.Diagnostics = b.diags

	if opts.Strict && len(res.Diagnostics) > 0 {
		return nil, &CoercionError{Diagnostics: res.Diagnostics}
	}
	return res, nil
}

// DistinctInvoices returns the non-missing invoice numbers of the patients
// table in order of first appearance.
func DistinctInvoices(patients *model.Table) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, row := range patients.Rows {
		key := row.Value(model.ColInvoiceNumber).Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// PatientsTable returns the patients table of ds.
func PatientsTable(ds *model.Dataset) (*model.Table, error) {
	t, ok := ds.Table(model.PatientsTable)
	if !ok {
		names := []string{}
		for _, t := range ds.Tables() {
			names = append(names, t.Name)
		}
		return nil, &MissingSheetError{Tables: names}
	}
	return t, nil
}

// CategoryKey maps a sheet name to its "servicios" key: the canonical name
// of a known category, else the lower-cased sheet name.
func CategoryKey(sheet string) string {
	if c, ok := model.CategoryByName(sheet); ok {
		return c.Name
	}
	return strings.ToLower(strings.TrimSpace(sheet))
}

func splitTables(ds *model.Dataset) (*model.Table, []*serviceIndex, error) {
	patients, err := PatientsTable(ds)
	if err != nil {
		return nil, nil, err
	}
	var services []*serviceIndex
	for _, t := range ds.Tables() {
		if model.IsPatientsTable(t.Name) {
			continue
		}
		services = append(services, newServiceIndex(t, CategoryKey(t.Name)))
	}
	return patients, services, nil
}

type builder struct {
	norm     *normalize.Normalizer
	services []*serviceIndex
	diags    []model.Diagnostic
}

func (b *builder) patient(patients *model.Table, i int, invoice string) *model.Patient {
	row := patients.Rows[i]
	doc := patientDocument(row).Key()

	fields := b.norm.Record(row, b.sink(patients.Name, i))
	fields.Delete(model.ColSourceFile, model.ColInvoiceNumber)

	p := &model.Patient{Fields: fields}
	for _, idx := range b.services {
		matches := idx.lookup(invoice, doc)
		if len(matches) == 0 {
			continue
		}
		group := model.ServiceGroup{Category: idx.category}
		for _, j := range matches {
			rec := idx.table.Rows[j].Clone()
			rec.Delete(model.ColInvoiceNumber, model.ColPatientDocument, model.ColSourceFile)
			group.Records = append(group.Records, b.norm.Record(rec, b.sink(idx.table.Name, j)))
		}
		p.Services = append(p.Services, group)
	}
	return p
}

func (b *builder) sink(table string, i int) normalize.Sink {
	return &diagSink{diags: &b.diags, table: table, row: i + 2}
}

type diagSink struct {
	diags *[]model.Diagnostic
	table string
	row   int
}

func (s *diagSink) Report(field string, raw model.Value, reason string) {
	*s.diags = append(*s.diags, model.Diagnostic{
		Table:  s.table,
		Row:    s.row,
		Field:  field,
		Value:  raw.Text(),
		Reason: reason,
	})
}
