// =============================================================================
// Sales Aggregator - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration. A single YAML file describes the inputs, the output, and
// the parameters of every cleaning step.
//
// LOADING ORDER:
//   1. Read and parse the YAML file (gopkg.in/yaml.v3)
//   2. Apply defaults for every unset option
//   3. Validate struct tags (go-playground/validator)
//
// Command-line flags are applied by the caller after loading, followed by a
// second call to Validate.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// Default values used when the configuration leaves an option unset.
var (
	DefaultInputFiles      = []string{"branch_a.csv", "branch_b.csv", "branch_c.csv"}
	DefaultOutputFile      = "total_sales_per_branch.csv"
	DefaultCriticalColumns = []string{"transaction_id", "date", "customer_id"}
	DefaultDuplicateKeys   = []string{"transaction_id"}
)

// Default column names.
const (
	DefaultDateColumn     = "date"
	DefaultBranchColumn   = "branch"
	DefaultQuantityColumn = "quantity"
	DefaultPriceColumn    = "price"

	// DefaultCanonicalDateLayout is the layout dates are rewritten into.
	DefaultCanonicalDateLayout = "2006-01-02 15:04:05"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the application configuration.
type MainConfig struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFiles lists the branch export files, in the order they are
	// concatenated. Entries ending in .xlsx are read as workbooks.
	// Default: branch_a.csv, branch_b.csv, branch_c.csv
	InputFiles []string `yaml:"input_files" validate:"required,min=1,dive,required"`

	// OutputFile is where the branch summary is written. The extension picks
	// the format (.csv or .xlsx). Placeholders:
	//   {date}      - Run date (YYYYMMDD)
	//   {timestamp} - Run timestamp (YYYYMMDD_HHMMSS)
	//   {run_id}    - A random UUID for the run
	// Default: "total_sales_per_branch.csv"
	OutputFile string `yaml:"output_file" validate:"required"`

	// =========================================================================
	// SCHEMA SETTINGS
	// =========================================================================

	// CriticalColumns are the fields a row must have to survive null removal.
	// Default: transaction_id, date, customer_id
	CriticalColumns []string `yaml:"critical_columns" validate:"required,min=1,dive,required"`

	// RequiredColumns must be present in the header of the loaded data.
	// Default: the critical columns plus branch, quantity and price.
	RequiredColumns []string `yaml:"required_columns" validate:"dive,required"`

	// BranchColumn, QuantityColumn and PriceColumn name the fields used for
	// aggregation.
	BranchColumn   string `yaml:"branch_column" validate:"required"`
	QuantityColumn string `yaml:"quantity_column" validate:"required"`
	PriceColumn    string `yaml:"price_column" validate:"required"`

	// =========================================================================
	// CLEANING SETTINGS
	// =========================================================================

	// DateColumn is the field parsed by date normalization.
	// Default: "date"
	DateColumn string `yaml:"date_column" validate:"required"`

	// DateLayouts are the Go time layouts tried in order when parsing dates.
	// Empty means the built-in list.
	DateLayouts []string `yaml:"date_layouts" validate:"dive,required"`

	// CanonicalDateLayout is the layout normalized dates are written in.
	// Default: "2006-01-02 15:04:05"
	CanonicalDateLayout string `yaml:"canonical_date_layout" validate:"required"`

	// DuplicateKeys define row identity for duplicate removal.
	// Default: transaction_id
	DuplicateKeys []string `yaml:"duplicate_keys" validate:"required,min=1,dive,required"`

	// DuplicateKeep selects which row of a duplicate group survives after
	// sorting by date descending: "first" (most recent) or "last".
	// Default: "first"
	DuplicateKeep string `yaml:"duplicate_keep" validate:"oneof=first last"`

	// =========================================================================
	// PARSING SETTINGS
	// =========================================================================

	// CSVSettings contains settings for reading the input files.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log encoder: "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing input files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab), ";" (semicolon)
	// Default: ","
	Delimiter string `yaml:"delimiter" validate:"required"`

	// Sheet is the worksheet read from .xlsx inputs. Empty means the first.
	Sheet string `yaml:"sheet,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the configuration from a YAML file, applies defaults
// and validates the result.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadMainConfigOrDefault behaves like LoadMainConfig, except that a missing
// file yields the default configuration. The boolean reports whether the file
// was found.
func LoadMainConfigOrDefault(configPath string) (*MainConfig, bool, error) {
	config, err := LoadMainConfig(configPath)
	if err == nil {
		return config, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	return nil, false, err
}

// Default returns a configuration with every option set to its default.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// ApplyDefaults fills any option left empty, for example after flags have
// cleared a value.
func (c *MainConfig) ApplyDefaults() {
	applyMainConfigDefaults(c)
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if len(config.InputFiles) == 0 {
		config.InputFiles = append([]string(nil), DefaultInputFiles...)
	}
	if config.OutputFile == "" {
		config.OutputFile = DefaultOutputFile
	}
	if len(config.CriticalColumns) == 0 {
		config.CriticalColumns = append([]string(nil), DefaultCriticalColumns...)
	}
	if config.BranchColumn == "" {
		config.BranchColumn = DefaultBranchColumn
	}
	if config.QuantityColumn == "" {
		config.QuantityColumn = DefaultQuantityColumn
	}
	if config.PriceColumn == "" {
		config.PriceColumn = DefaultPriceColumn
	}
	if config.DateColumn == "" {
		config.DateColumn = DefaultDateColumn
	}
	if len(config.RequiredColumns) == 0 {
		config.RequiredColumns = mergeColumns(
			config.CriticalColumns,
			[]string{config.BranchColumn, config.QuantityColumn, config.PriceColumn},
		)
	}
	if config.CanonicalDateLayout == "" {
		config.CanonicalDateLayout = DefaultCanonicalDateLayout
	}
	if len(config.DuplicateKeys) == 0 {
		config.DuplicateKeys = append([]string(nil), DefaultDuplicateKeys...)
	}
	if config.DuplicateKeep == "" {
		config.DuplicateKeep = "first"
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
}

// RequireColumns adds columns to RequiredColumns, skipping those already
// listed.
func (c *MainConfig) RequireColumns(columns ...string) {
	c.RequiredColumns = mergeColumns(c.RequiredColumns, columns)
}

// mergeColumns returns the columns of every list once, in first-seen order.
func mergeColumns(lists ...[]string) []string {
	var merged []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}

// =============================================================================
// VALIDATION
// =============================================================================

// structValidator reports field names using their YAML keys.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration against its struct tags. Every failing
// field is listed in the returned error.
func (c *MainConfig) Validate() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

// describeFieldError renders a validator error using the YAML field path.
func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
