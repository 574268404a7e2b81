// Package jsonl reads newline-delimited JSON run records from flat files.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.RunReader = (*Reader)(nil)

// Keys of the synthetic record emitted for a line that does not decode.
const (
	ErrorKey = "error"
	RawKey   = "raw"
)

// InvalidLineMarker returns the error marker recorded for an undecodable
// line. lineNo is the 1-based physical line number.
func InvalidLineMarker(lineNo int) string {
	return fmt.Sprintf("invalid_json_line_%d", lineNo)
}

// Reader loads raw run records, one JSON object per non-blank line.
// A malformed line never aborts the read; it is replaced by a synthetic
// record carrying an error marker so line ordering is preserved.
//
// Reader is stateless and safe for reuse.
type Reader struct {
	logger  *zap.Logger
	metrics ports.MetricsCollector
}

// NewReader creates a Reader. A nil logger or metrics collector disables
// the respective output.
func NewReader(logger *zap.Logger, metrics ports.MetricsCollector) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger, metrics: metrics}
}

// Read opens path and decodes every record in it. A missing path is
// reported as a *domain.NotFoundError.
func (r *Reader) Read(ctx context.Context, path string) ([]domain.RawRun, error) {
	cleanPath := filepath.Clean(path)

	f, err := os.Open(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewNotFoundError("runs file", path, err)
		}
		return nil, fmt.Errorf("failed to open runs file: %w", err)
	}
	defer f.Close()

	return r.ReadFrom(ctx, f)
}

// ReadFrom decodes records from an arbitrary stream. Lines have no length
// limit. Blank lines are skipped and JSON values that are not objects are
// dropped without error.
func (r *Reader) ReadFrom(_ context.Context, src io.Reader) ([]domain.RawRun, error) {
	br := bufio.NewReader(src)

	var (
		runs      []domain.RawRun
		lineNo    int
		malformed int
	)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			run, bad, ok := r.decodeLine(lineNo, line)
			if bad {
				malformed++
			}
			if ok {
				runs = append(runs, run)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", lineNo+1, err)
		}
	}

	r.record(len(runs), malformed)
	return runs, nil
}

// decodeLine turns one physical line into a record. bad reports a line
// that failed to decode; ok is false when the line contributes nothing to
// the output.
func (r *Reader) decodeLine(lineNo int, line []byte) (run domain.RawRun, bad, ok bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, false, false
	}

	value, err := decodeValue(trimmed)
	if err != nil {
		r.logger.Debug("malformed run line",
			zap.Int("line", lineNo),
			zap.Error(err))
		return domain.RawRun{
			ErrorKey: InvalidLineMarker(lineNo),
			RawKey:   string(trimmed),
		}, true, true
	}

	obj, ok := value.(map[string]any)
	if !ok {
		r.logger.Debug("skipping non-object run line", zap.Int("line", lineNo))
		return nil, false, false
	}
	return domain.RawRun(obj), false, true
}

// decodeValue decodes exactly one JSON value. Numbers are kept as
// json.Number so their literal text survives.
func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func (r *Reader) record(runs, malformed int) {
	r.logger.Debug("runs file decoded",
		zap.Int("runs", runs),
		zap.Int("malformed_lines", malformed))

	if r.metrics == nil {
		return
	}
	labels := map[string]string{"stage": "read"}
	r.metrics.RecordCounter(ports.MetricRunsRead, float64(runs), labels)
	r.metrics.RecordCounter(ports.MetricMalformedLines, float64(malformed), labels)
}
