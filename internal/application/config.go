package application

import (
	"path/filepath"

	"github.com/ahrav/go-tally/infrastructure/normalize"
)

// ConfigVersion is the schema version written by DefaultConfig.
const ConfigVersion = "1.0.0"

// Config is the complete configuration of one tally invocation. Every
// field has a default, so an absent config file is equivalent to
// DefaultConfig.
type Config struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`

	// Paths locates the runs input, the summary output and the comparison
	// report.
	Paths PathsConfig `yaml:"paths"`

	// Aliases lists the field names tried, in order, when normalizing
	// run records.
	Aliases normalize.Config `yaml:"aliases"`

	// Logging controls the level and encoding of diagnostic output.
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds the file locations used by the analyze and compare
// commands. Command-line flags override these values.
type PathsConfig struct {
	Runs    string `yaml:"runs" validate:"required"`
	Summary string `yaml:"summary" validate:"required"`
	Report  string `yaml:"report" validate:"required"`
}

// LoggingConfig selects the zap logger built for an invocation.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"required,oneof=console json"`
}

// Default artifact locations, relative to the working directory.
var (
	DefaultRunsPath    = filepath.Join("artifacts", "runs.jsonl")
	DefaultSummaryPath = filepath.Join("artifacts", "summary.json")
	DefaultReportPath  = filepath.Join("artifacts", "report.md")
)

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Version: ConfigVersion,
		Paths: PathsConfig{
			Runs:    DefaultRunsPath,
			Summary: DefaultSummaryPath,
			Report:  DefaultReportPath,
		},
		Aliases: normalize.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
