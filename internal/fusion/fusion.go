// Package fusion combines the behavior, sensitivity, and integrity component
// scores into a single risk assessment per §4.7.
package fusion

import (
	"fmt"
	"sort"

	"vigil/internal/domain"
	"vigil/internal/policy"
)

// Input is the set of component scores and contextual flags fusion needs.
type Input struct {
	BehaviorScore     float64
	SensitivityScore  float64
	IntegrityScore    float64
	Action            domain.Action
	IsCrossDepartment bool
	IsAfterHours      bool
	IsWeekend         bool
}

// Assessment is the fused output: fused_score, level, and the supporting
// evidence needed to render an alert summary.
type Assessment struct {
	FusedScore    float64
	Level         domain.RiskLevel
	SeverityLabel string

	Components         map[string]float64
	WeightedComponents  map[string]float64
	Flags              map[string]bool

	RiskFactors       []string
	PrimaryRiskFactor string
	RequiresAlert     bool
}

// Engine computes risk assessments using configurable component weights.
type Engine struct {
	weightBehavior       float64
	weightClassification float64
	weightIntegrity      float64
}

// NewEngine constructs a fusion Engine. Weights are normalized to sum to 1.0.
func NewEngine(weightBehavior, weightClassification, weightIntegrity float64) *Engine {
	b, c, i := policy.NormalizeWeights(weightBehavior, weightClassification, weightIntegrity)
	return &Engine{weightBehavior: b, weightClassification: c, weightIntegrity: i}
}

// DefaultEngine constructs an Engine using the package default weights
// (0.4/0.3/0.3).
func DefaultEngine() *Engine {
	return NewEngine(policy.RiskWeights.Behavior, policy.RiskWeights.Classification, policy.RiskWeights.Integrity)
}

// Compute runs the full §4.7 algorithm: weighted base, cross-department
// floor, multiplicative factors, level bucketing, risk-factor assembly, and
// the alert decision.
func (e *Engine) Compute(in Input) Assessment {
	base := in.BehaviorScore*e.weightBehavior + in.SensitivityScore*e.weightClassification + in.IntegrityScore*e.weightIntegrity

	if in.IsCrossDepartment {
		if floor, ok := policy.CrossDeptMinBase[in.Action]; ok && floor > base {
			base = floor
		}
	}

	actionMultiplier := policy.ActionMultiplier[in.Action]
	if actionMultiplier == 0 {
		actionMultiplier = 1.0
	}

	crossDeptMultiplier := 1.0
	if in.IsCrossDepartment {
		if m, ok := policy.CrossDeptMultiplier[in.Action]; ok {
			crossDeptMultiplier = m
		}
	}

	temporalMultiplier := policy.TemporalMultiplierNormal
	switch {
	case in.IsWeekend:
		temporalMultiplier = policy.TemporalMultiplierWeekend
	case in.IsAfterHours:
		temporalMultiplier = policy.TemporalMultiplierAfterHours
	}

	fused := clamp(base*actionMultiplier*crossDeptMultiplier*temporalMultiplier, 0, 1)
	level, severityLabel := levelFor(fused)

	riskFactors, primary := assembleRiskFactors(in)
	requiresAlert := decideAlert(level, riskFactors, in, actionMultiplier, fused)

	return Assessment{
		FusedScore:    fused,
		Level:         level,
		SeverityLabel: severityLabel,
		Components: map[string]float64{
			"behavior":    in.BehaviorScore,
			"sensitivity": in.SensitivityScore,
			"integrity":   in.IntegrityScore,
		},
		WeightedComponents: map[string]float64{
			"behavior":    in.BehaviorScore * e.weightBehavior,
			"sensitivity": in.SensitivityScore * e.weightClassification,
			"integrity":   in.IntegrityScore * e.weightIntegrity,
		},
		Flags: map[string]bool{
			"is_cross_department": in.IsCrossDepartment,
			"is_after_hours":      in.IsAfterHours,
			"is_weekend":          in.IsWeekend,
		},
		RiskFactors:       riskFactors,
		PrimaryRiskFactor: primary,
		RequiresAlert:     requiresAlert,
	}
}

func levelFor(fused float64) (domain.RiskLevel, string) {
	switch {
	case fused >= policy.ThresholdCritical:
		return domain.RiskLevelCritical, "critical"
	case fused >= policy.ThresholdHigh:
		return domain.RiskLevelHigh, "high"
	case fused >= policy.ThresholdMedium:
		return domain.RiskLevelMedium, "medium"
	default:
		return domain.RiskLevelLow, "low"
	}
}

func assembleRiskFactors(in Input) (factors []string, primary string) {
	if in.BehaviorScore > 0.5 {
		factors = append(factors, "anomalous behavior")
	}
	if in.IntegrityScore > 0 {
		factors = append(factors, "tampering detected")
	}
	if in.IsCrossDepartment {
		factors = append(factors, "cross-department access")
	}
	if policy.IsHighRiskAction(in.Action) {
		factors = append(factors, fmt.Sprintf("high-risk action: %s", in.Action))
	}

	primary = "none"
	best := 0.5
	type candidate struct {
		name  string
		score float64
	}
	candidates := []candidate{
		{"behavior", in.BehaviorScore},
		{"sensitivity", in.SensitivityScore},
		{"integrity", in.IntegrityScore},
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	for _, c := range candidates {
		if c.score > best {
			primary = c.name
			best = c.score
		}
	}
	return factors, primary
}

func decideAlert(level domain.RiskLevel, riskFactors []string, in Input, actionMultiplier, fused float64) bool {
	if level == domain.RiskLevelCritical {
		return true
	}
	if level == domain.RiskLevelHigh && len(riskFactors) >= 2 {
		return true
	}
	if in.IntegrityScore > 0 {
		return true
	}
	if in.IsCrossDepartment && in.SensitivityScore > 0.7 && actionMultiplier >= 1.5 {
		return true
	}
	return fused >= policy.ThresholdMedium
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
