package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ahrav/go-tally/internal/domain"
)

// EncodeSummary renders s as indented JSON with a trailing newline. Map
// keys are emitted in sorted order, so equal summaries encode to
// identical bytes.
func EncodeSummary(s domain.Summary) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSummary encodes s and writes it to path, creating missing parent
// directories and replacing any existing file.
func WriteSummary(path string, s domain.Summary) error {
	data, err := EncodeSummary(s)
	if err != nil {
		return err
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}
