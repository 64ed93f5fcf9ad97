// Package policy holds the tunable constants behind risk fusion: component
// weights, action/cross-department/temporal multipliers, and the level
// thresholds that turn a fused score into an alert decision. Keeping these
// as named tables (rather than scattering literals through the fusion
// engine) is what makes the 0.4/0.3/0.3 defaults and the cross-department
// floors independently reviewable and overridable from config.
package policy

import "vigil/internal/domain"

// Action is an alias for domain.Action so the tables below can be indexed
// directly by the values fusion already carries, without a conversion at
// every call site.
type Action = domain.Action

const (
	ActionView     = domain.ActionView
	ActionDownload = domain.ActionDownload
	ActionUpload   = domain.ActionUpload
	ActionModify   = domain.ActionModify
	ActionDelete   = domain.ActionDelete
	ActionShare    = domain.ActionShare
)

// RiskWeights are the default behavior/sensitivity/integrity fusion weights.
// They are normalized to sum to 1.0 so overrides from config need not.
var RiskWeights = struct {
	Behavior       float64
	Classification float64
	Integrity      float64
}{
	Behavior:       0.4,
	Classification: 0.3,
	Integrity:      0.3,
}

// NormalizeWeights scales w so its components sum to 1.0. A zero-sum input
// returns the package defaults unchanged.
func NormalizeWeights(behavior, classification, integrity float64) (b, c, i float64) {
	sum := behavior + classification + integrity
	if sum <= 0 {
		return RiskWeights.Behavior, RiskWeights.Classification, RiskWeights.Integrity
	}
	return behavior / sum, classification / sum, integrity / sum
}

// CrossDeptMinBase is the floor applied to the fused base score when an
// event is cross-department, keyed by action. Guarantees inherent risk for
// cross-department modify/delete irrespective of model outputs.
var CrossDeptMinBase = map[Action]float64{
	ActionView:     0.15,
	ActionDownload: 0.25,
	ActionUpload:   0.20,
	ActionModify:   0.45,
	ActionDelete:   0.55,
	ActionShare:    0.30,
}

// ActionMultiplier is M_a: the per-action multiplicative risk factor.
var ActionMultiplier = map[Action]float64{
	ActionView:     1.0,
	ActionDownload: 1.8,
	ActionUpload:   1.4,
	ActionModify:   2.5,
	ActionDelete:   3.0,
	ActionShare:    2.0,
}

// CrossDeptMultiplier is M_x when the event is cross-department; 1.0 applies
// otherwise and is not represented here.
var CrossDeptMultiplier = map[Action]float64{
	ActionView:     1.3,
	ActionDownload: 2.0,
	ActionUpload:   1.5,
	ActionModify:   2.8,
	ActionDelete:   3.5,
	ActionShare:    2.2,
}

// Temporal multipliers M_t.
const (
	TemporalMultiplierWeekend    = 1.5
	TemporalMultiplierAfterHours = 1.3
	TemporalMultiplierNormal     = 1.0
)

// Level thresholds (inclusive lower bound) mapping a fused score to a
// severity level.
const (
	ThresholdCritical = 0.8
	ThresholdHigh     = 0.6
	ThresholdMedium   = 0.4
)

// AnomalyContamination is the default expected-anomaly fraction fed to the
// behavioral anomaly scorer (§4.4).
const AnomalyContamination = 0.1

// IsHighRiskAction reports whether the action belongs to the set called out
// explicitly in risk-factor assembly (§4.7 step 6).
func IsHighRiskAction(a Action) bool {
	return a == ActionDownload || a == ActionModify || a == ActionDelete
}
