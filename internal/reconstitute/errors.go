package reconstitute

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gyeh/ripsconv/internal/model"
)

var (
	ErrMissingSheet     = errors.New("workbook has no usuarios sheet")
	ErrMultipleInvoices = errors.New("PGP mode requires exactly one invoice number")
)

// MissingSheetError is returned when the dataset has no patients table.
type MissingSheetError struct {
	Tables []string
}

func (e *MissingSheetError) Error() string {
	return fmt.Sprintf("%s (sheets: %s)", ErrMissingSheet, strings.Join(e.Tables, ", "))
}

func (e *MissingSheetError) Is(target error) bool { return target == ErrMissingSheet }

// MultipleInvoicesError is returned in PGP mode when the patients table does
// not hold exactly one distinct invoice number.
type MultipleInvoicesError struct {
	Invoices []string
}

func (e *MultipleInvoicesError) Error() string {
	return fmt.Sprintf("%s, found %d (%s)", ErrMultipleInvoices, len(e.Invoices), strings.Join(e.Invoices, ", "))
}

func (e *MultipleInvoicesError) Is(target error) bool { return target == ErrMultipleInvoices }

// CoercionError is returned in strict mode when any field had to be nulled
// or altered during normalization.
type CoercionError struct {
	Diagnostics []model.Diagnostic
}

func (e *CoercionError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "field coercion failed"
	}
	d := e.Diagnostics[0]
	return fmt.Sprintf("%d field coercion issue(s), first: %s row %d %s=%q: %s",
		len(e.Diagnostics), d.Table, d.Row, d.Field, d.Value, d.Reason)
}
