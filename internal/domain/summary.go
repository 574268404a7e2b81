package domain

// GroupSummary holds the label distribution of one bucket of runs. Task
// buckets use it as is.
type GroupSummary struct {
	// Runs is the number of runs in the bucket.
	Runs int `json:"runs"`

	// Labels counts runs per canonical label. The counts sum to Runs.
	Labels map[Label]int `json:"labels"`

	UnsafeRate  float64 `json:"unsafe_rate"`
	SafeRate    float64 `json:"safe_rate"`
	UnknownRate float64 `json:"unknown_rate"`
}

// StrategySummary is the GroupSummary of one strategy plus its per-key
// score averages. AvgScores is never nil, so a strategy whose runs carry
// no scores still encodes "avg_scores": {}.
type StrategySummary struct {
	GroupSummary

	// AvgScores is the arithmetic mean per score key over the runs that
	// carry that key. Keys no run supplied are absent, not zero.
	AvgScores map[string]float64 `json:"avg_scores"`
}

// OverallSummary is the label distribution over every run in the input
// plus the number of runs flagged with an error.
type OverallSummary struct {
	Runs        int           `json:"runs"`
	Labels      map[Label]int `json:"labels"`
	UnsafeRate  float64       `json:"unsafe_rate"`
	SafeRate    float64       `json:"safe_rate"`
	UnknownRate float64       `json:"unknown_rate"`

	// ErrorRuns counts runs whose HasError flag is set.
	ErrorRuns int `json:"error_runs"`
}

// Summary is the document produced by one aggregation pass. It is
// computed fresh on every pass and never mutated afterwards.
type Summary struct {
	Overall    OverallSummary             `json:"overall"`
	Strategies map[string]StrategySummary `json:"strategies"`
	Tasks      map[string]GroupSummary    `json:"tasks"`
}

// Rates converts label counts into safe, unsafe and unknown rates for a
// bucket of the given size. An empty bucket yields all zeros.
func Rates(counts map[Label]int, total int) (safe, unsafe, unknown float64) {
	if total <= 0 {
		return 0, 0, 0
	}
	n := float64(total)
	return float64(counts[LabelSafe]) / n,
		float64(counts[LabelUnsafe]) / n,
		float64(counts[LabelUnknown]) / n
}

// NewLabelCounts returns a count map seeded with every canonical label.
func NewLabelCounts() map[Label]int {
	counts := make(map[Label]int, len(Labels))
	for _, l := range Labels {
		counts[l] = 0
	}
	return counts
}
