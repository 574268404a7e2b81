// Package normalize maps loosely-structured run records onto the canonical
// run schema through ordered key-alias resolution.
package normalize

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// Fixed field names that are not configurable aliases.
const (
	// LabelsKey holds a nested object of labels keyed by arbitrary names.
	LabelsKey = "labels"

	// ScoresKey holds a nested object of score key to number.
	ScoresKey = "scores"

	// ErrorKey marks a record as errored when its value is truthy.
	ErrorKey = "error"

	// StatusKey marks a record as errored when it equals an error status.
	StatusKey = "status"
)

// Default alias lists. Candidates are tried in order; the first present,
// non-empty value wins.
var (
	DefaultTaskKeys        = []string{"task_id", "task", "id"}
	DefaultStrategyKeys    = []string{"strategy_id", "strategy", "strategy_name"}
	DefaultLabelKeys       = []string{"label", "verdict", "safety_label", "result"}
	DefaultTopicKeys       = []string{"topic", "category"}
	DefaultQueryKeys       = []string{"query", "prompt"}
	DefaultFinalAnswerKeys = []string{"final_answer", "answer", "final"}

	// DefaultNestedLabelFallbackKeys are the sub-keys of a nested labels
	// object checked after the label aliases, e.g. {"brand_safety":"safe"}
	// or {"overall":"unsafe"}.
	DefaultNestedLabelFallbackKeys = []string{
		"overall", "final",
		"brand_safety", "safety", "policy", "policy_risk", "hallucination_risk", "evidence_quality",
	}

	// DefaultScoreKeys are the well-known score fields accepted at the top
	// level of a record.
	DefaultScoreKeys = []string{"brand_safety", "policy_risk", "hallucination_risk", "evidence_quality"}

	// DefaultErrorStatuses are the status values, compared case-insensitively,
	// that flag a run as errored.
	DefaultErrorStatuses = []string{"error", "failed"}
)

// Config declares every alias list the normalizer consults. All fields
// are validated during normalizer creation.
type Config struct {
	TaskKeys        []string `yaml:"task_id" json:"task_id" validate:"required,min=1,dive,required"`
	StrategyKeys    []string `yaml:"strategy_id" json:"strategy_id" validate:"required,min=1,dive,required"`
	LabelKeys       []string `yaml:"label" json:"label" validate:"required,min=1,dive,required"`
	TopicKeys       []string `yaml:"topic" json:"topic" validate:"dive,required"`
	QueryKeys       []string `yaml:"query" json:"query" validate:"dive,required"`
	FinalAnswerKeys []string `yaml:"final_answer" json:"final_answer" validate:"dive,required"`

	// NestedLabelFallbackKeys lists the sub-keys of the nested labels
	// object tried once the label aliases found nothing there. A label
	// stored under any other sub-key resolves to unknown; add that key to
	// aliases.nested_label_fallback to recover it.
	NestedLabelFallbackKeys []string `yaml:"nested_label_fallback" json:"nested_label_fallback" validate:"dive,required"`

	// ScoreKeys lists top-level score fields. They overwrite same-named
	// entries of the nested scores object.
	ScoreKeys []string `yaml:"scores" json:"scores" validate:"dive,required"`

	// ErrorStatuses lists status values that mark a run as errored.
	ErrorStatuses []string `yaml:"error_statuses" json:"error_statuses" validate:"dive,required"`
}

// DefaultConfig returns the alias lists recognized by upstream producers.
func DefaultConfig() Config {
	return Config{
		TaskKeys:                slices.Clone(DefaultTaskKeys),
		StrategyKeys:            slices.Clone(DefaultStrategyKeys),
		LabelKeys:               slices.Clone(DefaultLabelKeys),
		TopicKeys:               slices.Clone(DefaultTopicKeys),
		QueryKeys:               slices.Clone(DefaultQueryKeys),
		FinalAnswerKeys:         slices.Clone(DefaultFinalAnswerKeys),
		NestedLabelFallbackKeys: slices.Clone(DefaultNestedLabelFallbackKeys),
		ScoreKeys:               slices.Clone(DefaultScoreKeys),
		ErrorStatuses:           slices.Clone(DefaultErrorStatuses),
	}
}

// Package-level validator instance for configuration validation.
var validate = validator.New()
