package model

import "time"

// Diagnostic records a non-fatal issue found while converting one field or record.
type Diagnostic struct {
	Table  string
	Row    int // sheet row number, header is row 1; 0 when not row-specific
	Field  string
	Value  string
	Reason string
}

// RunSummary captures what a single conversion run read and produced.
type RunSummary struct {
	RunID             string
	Direction         string // "flatten" or "reconstitute"
	Mode              string
	Inputs            []string
	InputSHA256       map[string]string
	Output            string
	RowsByTable       map[string]int
	Invoices          []string
	Patients          int
	Files             []string
	DroppedCategories map[string]int
	Diagnostics       []Diagnostic
	Duration          time.Duration
}
