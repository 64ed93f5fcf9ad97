package domain

import dErrors "vigil/pkg/domain-errors"

// TokenAttribution is one entry of a document-content attribution list.
type TokenAttribution struct {
	Token     string
	Weight    float64
	Direction string // "supports predicted" | "against predicted"
}

// ComponentScores is the {behavior, sensitivity, integrity} triple an
// explanation is attached to.
type ComponentScores struct {
	Behavior    float64
	Sensitivity float64
	Integrity   float64
}

// Explanation is an optional attribution artifact for an event. At most one
// per (event, type) pair.
type Explanation struct {
	ID      string
	EventID string
	Type    ExplanationType

	BehaviorAttributions map[string]float64
	BaselineExpectedValue float64

	DocumentAttributions []TokenAttribution

	ComponentScores ComponentScores
}

// NewExplanation constructs an Explanation, validating the type enum.
func NewExplanation(id, eventID string, typ ExplanationType) (*Explanation, error) {
	if id == "" || eventID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "explanation id and event id cannot be empty")
	}
	if typ != ExplanationTypeBehaviorSHAP && typ != ExplanationTypeDocumentLIME {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid explanation type")
	}
	return &Explanation{ID: id, EventID: eventID, Type: typ}, nil
}
