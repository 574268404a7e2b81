// Package domain contains pure, dependency-free domain models and types
// for the run normalization and aggregation pipeline.
package domain

// RawRun is a single evaluation record exactly as it was decoded from
// storage. It carries no invariants: fields may be missing, renamed, or of
// an unexpected type.
type RawRun map[string]any

// Label is the safety verdict attached to a run.
type Label string

// The fixed set of canonical labels. Every CanonicalRun carries exactly one.
const (
	LabelSafe    Label = "safe"
	LabelUnsafe  Label = "unsafe"
	LabelUnknown Label = "unknown"
)

// Labels lists the canonical labels in their reporting order.
var Labels = []Label{LabelSafe, LabelUnsafe, LabelUnknown}

// ParseLabel reports whether s is one of the canonical label tokens.
// The comparison is exact; callers are expected to fold case and trim
// whitespace first.
func ParseLabel(s string) (Label, bool) {
	switch Label(s) {
	case LabelSafe, LabelUnsafe, LabelUnknown:
		return Label(s), true
	default:
		return "", false
	}
}

// String returns the string representation of the label.
func (l Label) String() string { return string(l) }

// UnknownID is the fallback used when a run carries no usable task or
// strategy identifier.
const UnknownID = "unknown"

// CanonicalRun is the fully-typed representation of a run produced by
// the normalizer. It must not be mutated after construction.
type CanonicalRun struct {
	// TaskID identifies the input prompt the run addresses. Never empty.
	TaskID string `json:"task_id"`

	// StrategyID identifies the decision policy that produced the run.
	// Never empty.
	StrategyID string `json:"strategy_id"`

	Topic       string `json:"topic"`
	Query       string `json:"query"`
	FinalAnswer string `json:"final_answer"`

	// Label is the resolved safety verdict.
	Label Label `json:"label"`

	// Scores maps a score key to a value in the closed interval [0,1].
	Scores map[string]float64 `json:"scores"`

	// HasError is true when the record carried an error marker or a
	// failed status.
	HasError bool `json:"has_error"`
}
