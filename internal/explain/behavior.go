// Package explain produces the per-feature and per-token attribution
// artifacts of §4.8. No SHAP/LIME-equivalent library appears anywhere in
// the reference corpus (no ML/explainability package is imported by any
// example repo's go.mod); both attribution methods below are a hand-rolled
// perturbation-based approximation against the standard library, documented
// as a stdlib exception in DESIGN.md.
package explain

import (
	"math"
	"sort"

	"vigil/internal/behavior"
)

// FeatureAttribution is one entry of a ranked behavioral attribution list.
type FeatureAttribution struct {
	Feature     string
	Contribution float64
}

// featureNames mirrors the fixed order of behavior.FeatureVector (§4.4).
var featureNames = [behavior.FeatureCount]string{
	"total_events_24h", "bytes_transferred_mb", "distinct_documents",
	"is_after_hours", "is_weekend", "hour_of_day",
	"cross_department_count", "cross_department_ratio",
	"download_count", "modify_count", "view_count",
	"confidential_access_count", "internal_access_count",
	"avg_session_seconds", "unique_source_ips", "unique_devices",
}

// DefaultTopK is the default-length ranked attribution list (§4.8).
const DefaultTopK = 10

// BehaviorAttribution is the explainer's output for one anomalous event.
type BehaviorAttribution struct {
	Contributions map[string]float64
	TopK          []FeatureAttribution
	BaselineValue float64
}

// ExplainBehavior computes a SHAP-like signed per-feature contribution via
// single-feature ablation: each feature is replaced by the reference
// baseline (the all-zero vector) and the resulting shift in
// the normalized [0,1] score is attributed to that feature. BaselineValue
// is the model's normalized score at the all-baseline vector — the
// "expected value" a SHAP explainer reports before any feature is known.
func ExplainBehavior(model behavior.Model, features behavior.FeatureVector) BehaviorAttribution {
	var baselineVec behavior.FeatureVector
	baselineScore := normalizedScore(model, baselineVec)
	fullScore := normalizedScore(model, features)

	contributions := make(map[string]float64, behavior.FeatureCount)
	ranked := make([]FeatureAttribution, 0, behavior.FeatureCount)

	for i := 0; i < behavior.FeatureCount; i++ {
		perturbed := features
		perturbed[i] = baselineVec[i]
		withoutScore := normalizedScore(model, perturbed)
		contribution := fullScore - withoutScore
		contributions[featureNames[i]] = contribution
		ranked = append(ranked, FeatureAttribution{Feature: featureNames[i], Contribution: contribution})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Contribution) > math.Abs(ranked[j].Contribution)
	})
	topK := DefaultTopK
	if topK > len(ranked) {
		topK = len(ranked)
	}

	return BehaviorAttribution{
		Contributions: contributions,
		TopK:          ranked[:topK],
		BaselineValue: baselineScore,
	}
}

func normalizedScore(model behavior.Model, f behavior.FeatureVector) float64 {
	raw, trained := model.Score(f)
	if !trained {
		return 0
	}
	return clamp((-raw+0.5)/1.0, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
