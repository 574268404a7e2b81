package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
)

// ConfigLoader parses and validates YAML configuration files.
// Fields missing from a file keep their DefaultConfig values.
type ConfigLoader struct {
	validator *validator.Validate
}

// NewConfigLoader creates a ConfigLoader with the custom validators
// registered. It returns an error if validator registration fails.
func NewConfigLoader() (*ConfigLoader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &ConfigLoader{validator: v}, nil
}

// LoadFromFile loads configuration from a YAML file. A missing file is
// reported as a *domain.NotFoundError.
func (cl *ConfigLoader) LoadFromFile(path string) (Config, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, domain.NewNotFoundError("config file", path, err)
		}
		return Config{}, fmt.Errorf("failed to read file: %w", err)
	}
	return cl.load(data)
}

// LoadFromReader loads configuration from r.
func (cl *ConfigLoader) LoadFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read data: %w", err)
	}
	return cl.load(data)
}

func (cl *ConfigLoader) load(data []byte) (Config, error) {
	cfg, err := cl.parseYAML(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cl.Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseYAML decodes data over DefaultConfig using strict decoding, so
// unknown keys fail instead of being silently ignored. An empty document
// yields the defaults.
func (cl *ConfigLoader) parseYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("YAML decode failed: %w", err)
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags. Field failures are
// collected into a *domain.ValidationError, which matches
// domain.ErrInvalidConfiguration.
func (cl *ConfigLoader) Validate(cfg Config) error {
	err := cl.validator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	verr := domain.NewValidationError("config")
	for _, fe := range fieldErrs {
		verr.AddError(fmt.Sprintf("field %s failed on %q", fe.Namespace(), fe.Tag()))
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(value, "%d.%d.%d%s", &major, &minor, &patch, &rest)
	return n == 3 && major >= 0 && minor >= 0 && patch >= 0
}
