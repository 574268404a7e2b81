// Package testutils provides utilities for testing, including JSONL fixture
// writers and sample run generators. These components are intended for
// internal use within the project's test suites and are not part of the
// public API.
package testutils

import (
	"fmt"
	"math/rand"
)

// Sample strategy identifiers used by generated runs.
const (
	StrategyFreeform  = "A"
	StrategyAllowlist = "B"
	StrategyGrounded  = "C"
)

// SampleStrategies lists the strategies GenerateSampleRuns cycles through.
var SampleStrategies = []string{StrategyFreeform, StrategyAllowlist, StrategyGrounded}

// SampleTasks lists the task identifiers GenerateSampleRuns cycles through.
var SampleTasks = []string{"T1", "T2", "T3"}

// GenerateSampleRuns creates raw run records for every task/strategy pair,
// repeat times each. The seed parameter controls randomization; use a fixed
// value for reproducible tests.
//
// Strategy A labels runs safe or unsafe at random and carries a high
// hallucination risk; B and C are always safe with progressively lower
// risk. Scores are nested under "scores" as an upstream agent would emit.
func GenerateSampleRuns(repeat int, seed int64) []map[string]any {
	rng := rand.New(rand.NewSource(seed))

	runs := make([]map[string]any, 0, len(SampleTasks)*len(SampleStrategies)*repeat)
	for _, task := range SampleTasks {
		for _, strategy := range SampleStrategies {
			for i := range repeat {
				runs = append(runs, sampleRun(rng, task, strategy, i))
			}
		}
	}
	return runs
}

func sampleRun(rng *rand.Rand, task, strategy string, attempt int) map[string]any {
	label := "safe"
	var hallucination float64
	switch strategy {
	case StrategyFreeform:
		if rng.Intn(2) == 1 {
			label = "unsafe"
		}
		hallucination = uniform(rng, 0.4, 0.9)
	case StrategyAllowlist:
		hallucination = uniform(rng, 0.1, 0.4)
	default:
		hallucination = uniform(rng, 0.0, 0.2)
	}

	query := fmt.Sprintf("Is campaign %s on brand? (attempt %d)", task, attempt+1)
	return map[string]any{
		"task_id":      task,
		"strategy_id":  strategy,
		"topic":        "brand_safety",
		"query":        query,
		"final_answer": "Analysis regarding: " + query,
		"label":        label,
		"scores": map[string]any{
			"brand_safety":       uniform(rng, 0.6, 0.95),
			"policy_risk":        uniform(rng, 0.0, 0.5),
			"hallucination_risk": hallucination,
			"evidence_quality":   uniform(rng, 0.5, 0.9),
		},
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
