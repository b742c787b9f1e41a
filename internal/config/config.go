package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/ripsconv/internal/model"
	"github.com/gyeh/ripsconv/internal/reconstitute"
)

// DefaultObligorID is the obligor NIT used when neither --obligor nor
// RIPS_OBLIGOR_ID is set.
const DefaultObligorID = "900364721"

// ObligorEnv names the environment variable holding the default obligor id.
const ObligorEnv = "RIPS_OBLIGOR_ID"

// Tabular formats.
const (
	FormatXLSX    = "xlsx"
	FormatParquet = "parquet"
)

// Config holds all runtime configuration for a ripsconv run.
type Config struct {
	Inputs     []string
	Output     string
	Format     string // "xlsx" or "parquet"; empty infers from the file extension
	Mode       string // "PGP" or "EVENT"; optional for flatten
	ObligorID  string
	LogFormat  string // "text" or "json"
	LogLevel   string
	ConfigPath string
	Strict     bool

	// Classification selects the field rules. Nil means the RIPS defaults.
	Classification *model.Classification
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	NumericFields      []string `yaml:"numeric_fields"`
	CodeFields         []string `yaml:"code_fields"`
	ResidenceCodeField string   `yaml:"residence_code_field"`
}

// LoadFromFile reads a YAML config file and builds the field classification
// from it. Empty lists fall back to the defaults.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	numeric := yc.NumericFields
	if len(numeric) == 0 {
		numeric = model.DefaultNumericFields
	}
	codes := yc.CodeFields
	if len(codes) == 0 {
		codes = model.DefaultCodeFields
	}
	residence := strings.TrimSpace(yc.ResidenceCodeField)
	if residence == "" {
		residence = model.DefaultResidenceCodeField
	}

	classes, err := model.NewClassification(numeric, codes, residence)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	c.Classification = classes
	return nil
}

// ApplyEnv loads .env when present and fills ObligorID from the environment
// unless a flag already set it.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()
	if strings.TrimSpace(c.ObligorID) != "" {
		return
	}
	c.ObligorID = DefaultObligorID
	if v := strings.TrimSpace(os.Getenv(ObligorEnv)); v != "" {
		c.ObligorID = v
	}
}

// Validate checks that at least one input was given and every input is readable.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("--in is required")
	}
	for _, in := range c.Inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("input not accessible: %w", err)
		}
	}
	if c.Format != "" && c.Format != FormatXLSX && c.Format != FormatParquet {
		return fmt.Errorf("unknown format %q (want xlsx or parquet)", c.Format)
	}
	return nil
}

// ValidateFlatten checks inputs and normalizes Mode when one was given.
// Flattening does not depend on the mode; it only names the output.
func (c *Config) ValidateFlatten() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Mode == "" {
		return nil
	}
	mode, err := reconstitute.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.Mode = string(mode)
	return nil
}

// ValidateMode checks inputs, requires a single tabular input and normalizes Mode.
func (c *Config) ValidateMode() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Inputs) != 1 {
		return fmt.Errorf("exactly one --in workbook is required, got %d", len(c.Inputs))
	}
	mode, err := reconstitute.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.Mode = string(mode)
	return nil
}

// FormatOf returns the tabular format of path: Format when set, else
// parquet for a ".parquet" extension and xlsx otherwise.
func (c *Config) FormatOf(path string) string {
	if c.Format != "" {
		return c.Format
	}
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return FormatParquet
	}
	return FormatXLSX
}

// OutputPath resolves Output against a default file name. An empty Output
// yields the default name; an existing directory gets the default name inside it.
func (c *Config) OutputPath(defaultName string) string {
	if c.Output == "" {
		return defaultName
	}
	if st, err := os.Stat(c.Output); err == nil && st.IsDir() {
		return filepath.Join(c.Output, defaultName)
	}
	return c.Output
}
