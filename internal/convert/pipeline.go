// Package convert runs whole conversions: read the inputs, transform them and
// write the output artifact.
package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/ripsconv/internal/archive"
	"github.com/gyeh/ripsconv/internal/config"
	"github.com/gyeh/ripsconv/internal/flatten"
	"github.com/gyeh/ripsconv/internal/model"
	"github.com/gyeh/ripsconv/internal/normalize"
	"github.com/gyeh/ripsconv/internal/parquetio"
	"github.com/gyeh/ripsconv/internal/reconstitute"
	"github.com/gyeh/ripsconv/internal/workbook"
)

// Default flatten output names when no invoice mode is given.
const (
	consolidatedBase = "RIPS_Consolidado"
	WorkbookName     = consolidatedBase + ".xlsx"
	ParquetName      = consolidatedBase + ".parquet"
)

// FlattenFileName is the default flatten output name for a mode and format:
// RIPS_Consolidado_PGP.xlsx, RIPS_Consolidado_EVENTO.xlsx, or
// RIPS_Consolidado.xlsx without a mode.
func FlattenFileName(mode reconstitute.Mode, format string) string {
	base := consolidatedBase
	switch mode {
	case reconstitute.ModePGP:
		base += "_PGP"
	case reconstitute.ModeEvent:
		base += "_EVENTO"
	}
	if format == config.FormatParquet {
		return base + ".parquet"
	}
	return base + ".xlsx"
}

// Pipeline phases.
const (
	PhaseRead         = "read"
	PhaseFlatten      = "flatten"
	PhaseReconstitute = "reconstitute"
	PhaseEncode       = "encode"
	PhaseWrite        = "write"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Flatten executes read → flatten → write for every JSON input in cfg.
// A single unreadable input aborts the batch.
func Flatten(log zerolog.Logger, cfg *config.Config) (*model.RunSummary, error) {
	start := time.Now()
	summary := newSummary("flatten", cfg)
	log = log.With().Str("run_id", summary.RunID).Logger()

	var mode reconstitute.Mode
	if cfg.Mode != "" {
		m, err := reconstitute.ParseMode(cfg.Mode)
		if err != nil {
			return nil, &PipelineError{Phase: PhaseFlatten, Err: err}
		}
		mode = m
		summary.Mode = string(m)
	}

	// Phase 1: Read
	log.Info().Int("inputs", len(cfg.Inputs)).Msg("reading invoices")
	docs := make([]flatten.Document, 0, len(cfg.Inputs))
	for _, path := range cfg.Inputs {
		inv, sha, err := readInvoice(path)
		if err != nil {
			return nil, &PipelineError{Phase: PhaseRead, Err: err}
		}
		summary.InputSHA256[path] = sha
		summary.Invoices = append(summary.Invoices, inv.InvoiceNumber.Text())
		summary.Patients += len(inv.Patients)
		docs = append(docs, flatten.Document{Path: path, Invoice: inv})
		log.Debug().Str("file", path).Int("patients", len(inv.Patients)).Msg("invoice read")
	}

	// Phase 2: Flatten
	ds, report := flatten.Flatten(log, docs)
	summary.RowsByTable = ds.RowCounts()
	summary.DroppedCategories = report.DroppedCategories

	// Phase 3: Write
	format := cfg.Format
	if format == "" && cfg.Output != "" {
		format = cfg.FormatOf(cfg.Output)
	}
	out := cfg.OutputPath(FlattenFileName(mode, format))

	var buf bytes.Buffer
	switch format {
	case config.FormatParquet:
		if _, err := parquetio.Write(&buf, ds); err != nil {
			return nil, &PipelineError{Phase: PhaseWrite, Err: err}
		}
	default:
		if err := workbook.Write(&buf, ds); err != nil {
			return nil, &PipelineError{Phase: PhaseWrite, Err: err}
		}
	}
	if err := writeFile(out, buf.Bytes()); err != nil {
		return nil, &PipelineError{Phase: PhaseWrite, Err: err}
	}
	summary.Output = out
	summary.Files = []string{filepath.Base(out)}
	summary.Duration = time.Since(start)

	log.Info().
		Str("output", out).
		Int("patients", summary.Patients).
		Interface("rows", summary.RowsByTable).
		Str("total_duration", summary.Duration.String()).
		Msg("flatten complete")
	return summary, nil
}

// Reconstitute executes read → reconstitute → encode → write for the single
// tabular input in cfg. PGP writes one JSON document, EVENT a ZIP of them.
// Nothing is written unless every earlier phase succeeded.
func Reconstitute(log zerolog.Logger, cfg *config.Config) (*model.RunSummary, error) {
	start := time.Now()
	summary := newSummary("reconstitute", cfg)
	log = log.With().Str("run_id", summary.RunID).Logger()

	res, err := reconstituteInput(log, cfg, summary)
	if err != nil {
		return nil, err
	}

	// Phase 3: Encode
	files, err := res.Files()
	if err != nil {
		return nil, &PipelineError{Phase: PhaseEncode, Err: err}
	}
	var data []byte
	var out string
	switch res.Mode {
	case reconstitute.ModePGP:
		out = cfg.OutputPath(reconstitute.PGPFileName)
		data = files[0].Data
	default:
		out = cfg.OutputPath(archive.DefaultName)
		entries := make([]archive.Entry, len(files))
		for i, f := range files {
			entries[i] = archive.Entry{Name: f.Name, Data: f.Data}
		}
		var buf bytes.Buffer
		if err := archive.Write(&buf, entries, start); err != nil {
			return nil, &PipelineError{Phase: PhaseEncode, Err: err}
		}
		data = buf.Bytes()
	}

	// Phase 4: Write
	if err := writeFile(out, data); err != nil {
		return nil, &PipelineError{Phase: PhaseWrite, Err: err}
	}
	summary.Output = out
	summary.Duration = time.Since(start)

	log.Info().
		Str("output", out).
		Str("mode", summary.Mode).
		Int("invoices", len(summary.Invoices)).
		Int("patients", summary.Patients).
		Int("diagnostics", len(summary.Diagnostics)).
		Str("total_duration", summary.Duration.String()).
		Msg("reconstitute complete")
	return summary, nil
}

// Plan is a dry run of Reconstitute: it reads and reconstitutes the input and
// reports what would be written, without writing anything.
func Plan(log zerolog.Logger, cfg *config.Config) (*model.RunSummary, error) {
	start := time.Now()
	summary := newSummary("plan", cfg)
	log = log.With().Str("run_id", summary.RunID).Logger()

	res, err := reconstituteInput(log, cfg, summary)
	if err != nil {
		return nil, err
	}
	if res.Mode == reconstitute.ModePGP {
		summary.Output = cfg.OutputPath(reconstitute.PGPFileName)
	} else {
		summary.Output = cfg.OutputPath(archive.DefaultName)
	}
	summary.Duration = time.Since(start)
	return summary, nil
}

// reconstituteInput runs the read and reconstitute phases shared by
// Reconstitute and Plan, filling summary as it goes.
func reconstituteInput(log zerolog.Logger, cfg *config.Config, summary *model.RunSummary) (*reconstitute.Result, error) {
	mode, err := reconstitute.ParseMode(cfg.Mode)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseReconstitute, Err: err}
	}
	summary.Mode = string(mode)
	if len(cfg.Inputs) != 1 {
		return nil, &PipelineError{Phase: PhaseRead, Err: fmt.Errorf("expected one tabular input, got %d", len(cfg.Inputs))}
	}
	path := cfg.Inputs[0]

	// Phase 1: Read
	log.Info().Str("file", path).Str("mode", string(mode)).Msg("reading dataset")
	ds, err := readDataset(path, cfg.FormatOf(path))
	if err != nil {
		return nil, &PipelineError{Phase: PhaseRead, Err: err}
	}
	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseRead, Err: err}
	}
	summary.InputSHA256[path] = sha
	summary.RowsByTable = ds.RowCounts()

	// Phase 2: Reconstitute
	res, err := reconstitute.Reconstitute(log, ds, reconstitute.Options{
		Mode:      mode,
		ObligorID: cfg.ObligorID,
		Classes:   cfg.Classification,
		Strict:    cfg.Strict,
	})
	if err != nil {
		return nil, &PipelineError{Phase: PhaseReconstitute, Err: err}
	}
	summary.Invoices = res.Invoices()
	summary.Diagnostics = res.Diagnostics
	for _, d := range res.Documents {
		summary.Patients += len(d.Invoice.Patients)
		summary.Files = append(summary.Files, d.Name)
	}
	if len(res.Diagnostics) > 0 {
		log.Warn().Int("count", len(res.Diagnostics)).Msg("fields coerced during normalization")
	}
	return res, nil
}

func newSummary(direction string, cfg *config.Config) *model.RunSummary {
	return &model.RunSummary{
		RunID:       uuid.New().String(),
		Direction:   direction,
		Inputs:      append([]string(nil), cfg.Inputs...),
		InputSHA256: map[string]string{},
	}
}
