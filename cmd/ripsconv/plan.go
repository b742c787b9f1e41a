package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gyeh/ripsconv/internal/convert"
	"github.com/gyeh/ripsconv/internal/exitcode"
	"github.com/gyeh/ripsconv/internal/model"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run reconstitution and report what would be written",
	RunE:  runPlan,
}

func init() {
	addTabularFlags(planCmd.Flags())
	_ = planCmd.MarkFlagRequired("in")
	_ = planCmd.MarkFlagRequired("mode")
	rootCmd.AddCommand(planCmd)
}

func addTabularFlags(f *pflag.FlagSet) {
	f.StringArrayVar(&cfg.Inputs, "in", nil, "Workbook (.xlsx) or cell file (.parquet) (required)")
	f.StringVar(&cfg.Mode, "mode", "", "Invoice mode: PGP or EVENT (required)")
	f.StringVar(&cfg.Format, "format", "", "Input format: xlsx or parquet (default from --in extension)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := setup()

	if err := cfg.ValidateMode(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	summary, err := convert.Plan(log, &cfg)
	if err != nil {
		fail(log, "plan failed", err)
	}

	classes := cfg.Classification
	if classes == nil {
		classes = model.DefaultClassification()
	}
	printPlan(os.Stdout, summary, classes)
	return nil
}

func printPlan(w io.Writer, summary *model.RunSummary, classes *model.Classification) {
	in := summary.Inputs[0]
	fmt.Fprintln(w, "=== ripsconv plan ===")
	fmt.Fprintf(w, "File:     %s\n", in)
	fmt.Fprintf(w, "SHA-256:  %s\n", summary.InputSHA256[in])
	fmt.Fprintf(w, "Mode:     %s\n", summary.Mode)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sheets:")
	names := make([]string, 0, len(summary.RowsByTable))
	for name := range summary.RowsByTable {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %6d rows\n", name, summary.RowsByTable[name])
	}
	fmt.Fprintf(w, "\nKnown categories: %s\n", strings.Join(model.CategoryNames(), ", "))
	fmt.Fprintln(w, "Field rules:")
	for _, class := range []model.FieldClass{model.ClassNumeric, model.ClassCode, model.ClassResidenceCode} {
		fmt.Fprintf(w, "  %-15s %s\n", class, strings.Join(classes.Fields(class), ", "))
	}
	fmt.Fprintf(w, "\nInvoices: %d, patients: %d\n", len(summary.Invoices), summary.Patients)
	fmt.Fprintf(w, "Output:   %s\n", summary.Output)
	for _, f := range summary.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	printDiagnostics(w, summary.Diagnostics)
}

func printDiagnostics(w io.Writer, diags []model.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d fields coerced:\n", len(diags))
	for _, d := range diags {
		fmt.Fprintf(w, "  %s row %d %s=%q: %s\n", d.Table, d.Row, d.Field, d.Value, d.Reason)
	}
}
