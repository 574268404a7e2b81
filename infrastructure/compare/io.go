package compare

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ahrav/go-tally/internal/domain"
)

// LoadSummary reads a summary document previously written by the analyze
// pipeline. A missing file yields a *domain.NotFoundError.
func LoadSummary(path string) (domain.Summary, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Summary{}, domain.NewNotFoundError("summary", path, err)
		}
		return domain.Summary{}, fmt.Errorf("failed to read summary %s: %w", path, err)
	}

	var s domain.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Summary{}, fmt.Errorf("failed to parse summary %s: %w", path, err)
	}
	return s, nil
}

// WriteReport writes content to path, creating parent directories.
func WriteReport(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
