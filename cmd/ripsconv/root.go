package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/ripsconv/internal/config"
	"github.com/gyeh/ripsconv/internal/exitcode"
	"github.com/gyeh/ripsconv/internal/logging"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "ripsconv",
	Short: "RIPS JSON ⇄ workbook converter",
	Long: "Flattens Colombian RIPS billing JSON documents into one consolidated workbook " +
		"and rebuilds PGP or EVENT JSON invoices from an edited workbook.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&cfg.ConfigPath, "config", "", "YAML file overriding the field classification")
	pf.BoolVar(&cfg.Strict, "strict", false, "Fail when any field had to be coerced or nulled")
}

// setup builds the logger and merges the config file and environment into cfg.
// It exits with a usage error on failure.
func setup() zerolog.Logger {
	log, err := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log, _ = logging.Setup("text", "")
		log.Error().Err(err).Msg("invalid logging flags")
		os.Exit(exitcode.UsageError)
	}
	if cfg.ConfigPath != "" {
		if err := cfg.LoadFromFile(cfg.ConfigPath); err != nil {
			log.Error().Err(err).Msg("config file invalid")
			os.Exit(exitcode.UsageError)
		}
	}
	cfg.ApplyEnv()
	return log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
