package normalize

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.RunNormalizer = (*Normalizer)(nil)

// Normalizer converts raw run records into canonical runs. Normalize is a
// total function: missing fields, wrong value types and unrecognized
// label spellings all degrade to documented defaults.
//
// The Normalizer holds only immutable configuration and is safe for
// concurrent use.
type Normalizer struct {
	cfg    Config
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer with the given alias configuration.
// It returns an error if the configuration is invalid. A nil logger
// disables diagnostics.
func NewNormalizer(cfg Config, logger *zap.Logger) (*Normalizer, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	statuses := make([]string, len(cfg.ErrorStatuses))
	for i, s := range cfg.ErrorStatuses {
		statuses[i] = lower(s)
	}
	cfg.ErrorStatuses = statuses

	return &Normalizer{cfg: cfg, logger: logger}, nil
}

// Normalize maps raw onto the canonical schema.
func (n *Normalizer) Normalize(raw domain.RawRun) domain.CanonicalRun {
	run := domain.CanonicalRun{
		TaskID:      n.identifier(raw, n.cfg.TaskKeys),
		StrategyID:  n.identifier(raw, n.cfg.StrategyKeys),
		Topic:       Stringify(FirstPresent(raw, n.cfg.TopicKeys, "")),
		Query:       Stringify(FirstPresent(raw, n.cfg.QueryKeys, "")),
		FinalAnswer: Stringify(FirstPresent(raw, n.cfg.FinalAnswerKeys, "")),
		Label:       n.resolveLabel(raw),
		Scores:      n.extractScores(raw),
		HasError:    n.hasError(raw),
	}

	if run.Label == domain.LabelUnknown {
		n.diagnoseLabel(raw, run)
	}
	return run
}

// identifier resolves an id through keys, falling back to UnknownID so the
// result is never empty.
func (n *Normalizer) identifier(raw domain.RawRun, keys []string) string {
	id := Stringify(FirstPresent(raw, keys, nil))
	if id == "" {
		return domain.UnknownID
	}
	return id
}

// extractScores collects numeric values from the nested scores object,
// then merges the configured top-level score keys over them. Every value
// is clamped into [0,1]; non-numeric values are omitted.
func (n *Normalizer) extractScores(raw domain.RawRun) map[string]float64 {
	scores := make(map[string]float64)

	if nested, ok := raw[ScoresKey].(map[string]any); ok {
		for k, v := range nested {
			if f, ok := ToFloat(v); ok {
				scores[k] = Clamp(f)
			}
		}
	}

	for _, k := range n.cfg.ScoreKeys {
		if f, ok := ToFloat(raw[k]); ok {
			scores[k] = Clamp(f)
		}
	}
	return scores
}

// hasError reports a truthy error marker or an error status.
func (n *Normalizer) hasError(raw domain.RawRun) bool {
	if Truthy(raw[ErrorKey]) {
		return true
	}
	status, ok := raw[StatusKey]
	if !ok {
		return false
	}
	return slices.Contains(n.cfg.ErrorStatuses, lower(Stringify(status)))
}

// diagnoseLabel logs a hint when a label was supplied but not recognized.
func (n *Normalizer) diagnoseLabel(raw domain.RawRun, run domain.CanonicalRun) {
	ce := n.logger.Check(zap.DebugLevel, "unrecognized label")
	if ce == nil {
		return
	}
	s, ok := FirstPresent(raw, n.cfg.LabelKeys, nil).(string)
	if !ok || lowerTrim(s) == string(domain.LabelUnknown) {
		return
	}
	closest, dist := closestLabel(s)
	ce.Write(
		zap.String("task_id", run.TaskID),
		zap.String("strategy_id", run.StrategyID),
		zap.String("label", s),
		zap.Stringer("closest", closest),
		zap.Int("distance", dist),
	)
}
