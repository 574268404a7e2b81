package testutils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteLines writes the given lines, newline-terminated, to a fresh
// runs.jsonl under t.TempDir and returns its path.
func WriteLines(t testing.TB, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "runs.jsonl")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// WriteRecords marshals each record onto its own line of a fresh
// runs.jsonl under t.TempDir and returns its path.
func WriteRecords(t testing.TB, records ...map[string]any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "runs.jsonl")
	if err := SaveRuns(records, path); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// SaveRuns writes records as JSONL to path, creating parent directories.
func SaveRuns(records []map[string]any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var b strings.Builder
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", i, err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write runs file: %w", err)
	}
	return nil
}
