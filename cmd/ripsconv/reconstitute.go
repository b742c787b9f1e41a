package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/ripsconv/internal/convert"
	"github.com/gyeh/ripsconv/internal/exitcode"
)

var reconstituteCmd = &cobra.Command{
	Use:   "reconstitute",
	Short: "Rebuild RIPS JSON invoices from a workbook",
	RunE:  runReconstitute,
}

func init() {
	f := reconstituteCmd.Flags()
	addTabularFlags(f)
	f.StringVar(&cfg.ObligorID, "obligor", "", "Obligor NIT for numDocumentoIdObligado (or set RIPS_OBLIGOR_ID)")
	f.StringVar(&cfg.Output, "out", "", "Output file or directory (default Factura_RIPS_PGP.json or RIPS_Evento_JSONs.zip)")
	_ = reconstituteCmd.MarkFlagRequired("in")
	_ = reconstituteCmd.MarkFlagRequired("mode")
	rootCmd.AddCommand(reconstituteCmd)
}

func runReconstitute(cmd *cobra.Command, args []string) error {
	log := setup()

	if err := cfg.ValidateMode(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	summary, err := convert.Reconstitute(log, &cfg)
	if err != nil {
		fail(log, "reconstitute failed", err)
	}

	printDiagnostics(os.Stdout, summary.Diagnostics)
	fmt.Printf("Reconstitute complete (%s): %d invoices, %d patients → %s (%.1fs)\n",
		summary.Mode, len(summary.Invoices), summary.Patients, summary.Output, summary.Duration.Seconds())
	return nil
}
