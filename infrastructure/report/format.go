package report

import "fmt"

// NotAvailable is printed in place of a missing average score.
const NotAvailable = "n/a"

// ScoreColumn pairs a score key with its short column header.
type ScoreColumn struct {
	Key    string
	Header string
}

// ScoreColumns are the average-score columns shown in every table, in order.
var ScoreColumns = []ScoreColumn{
	{Key: "brand_safety", Header: "brand_safety"},
	{Key: "policy_risk", Header: "policy_risk"},
	{Key: "hallucination_risk", Header: "halluc_risk"},
	{Key: "evidence_quality", Header: "evidence_q"},
}

// Pct formats a rate in [0,1] as a percentage with one decimal.
func Pct(rate float64) string {
	return fmt.Sprintf("%5.1f", rate*100)
}

// Num formats a score with three decimals.
func Num(v float64) string {
	return fmt.Sprintf("%0.3f", v)
}

// Score formats avg[key], or NotAvailable when the key is absent.
func Score(avg map[string]float64, key string) string {
	v, ok := avg[key]
	if !ok {
		return NotAvailable
	}
	return Num(v)
}
