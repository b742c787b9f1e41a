package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/ripsconv/internal/convert"
	"github.com/gyeh/ripsconv/internal/exitcode"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Consolidate RIPS JSON invoices into one workbook",
	RunE:  runFlatten,
}

func init() {
	f := flattenCmd.Flags()
	f.StringArrayVar(&cfg.Inputs, "in", nil, "RIPS JSON file (repeatable, required)")
	f.StringVar(&cfg.Output, "out", "", "Output file or directory (default RIPS_Consolidado[_PGP|_EVENTO].xlsx)")
	f.StringVar(&cfg.Mode, "mode", "", "Invoice mode PGP or EVENT, used in the default output name")
	f.StringVar(&cfg.Format, "format", "", "Output format: xlsx or parquet (default from --out extension)")
	_ = flattenCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(flattenCmd)
}

func runFlatten(cmd *cobra.Command, args []string) error {
	log := setup()

	if err := cfg.ValidateFlatten(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	summary, err := convert.Flatten(log, &cfg)
	if err != nil {
		fail(log, "flatten failed", err)
	}

	for name, n := range summary.DroppedCategories {
		fmt.Printf("Dropped %d records of unknown category %q\n", n, name)
	}
	fmt.Printf("Flatten complete: %d invoices, %d patients → %s (%.1fs)\n",
		len(summary.Invoices), summary.Patients, summary.Output, summary.Duration.Seconds())
	return nil
}
