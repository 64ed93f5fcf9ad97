package explain

import (
	"vigil/internal/behavior"
	"vigil/internal/domain"
	"vigil/internal/sensitivity"
)

// Engine orchestrates both attribution kinds for the worker's conditional
// explanation step (§4.3 step 4, §4.8). Both methods are optional: if
// preconditions are not met, they return ok=false and the event proceeds
// without that artifact.
type Engine struct {
	model      behavior.Model
	classifier *sensitivity.Classifier
	seed       int64
}

// NewEngine constructs an explanation Engine. seed fixes the document
// explainer's perturbation sampling for reproducible output.
func NewEngine(model behavior.Model, classifier *sensitivity.Classifier, seed int64) *Engine {
	return &Engine{model: model, classifier: classifier, seed: seed}
}

// Behavior produces a behavior_shap Explanation when isAnomalous is true
// (§4.8: "When an event is flagged anomalous ... and an attribution backend
// is available").
func (e *Engine) Behavior(id, eventID string, isAnomalous bool, features behavior.FeatureVector, components domain.ComponentScores) (*domain.Explanation, bool) {
	if !isAnomalous {
		return nil, false
	}
	exp, err := domain.NewExplanation(id, eventID, domain.ExplanationTypeBehaviorSHAP)
	if err != nil {
		return nil, false
	}
	attribution := ExplainBehavior(e.model, features)
	exp.BehaviorAttributions = attribution.Contributions
	exp.BaselineExpectedValue = attribution.BaselineValue
	exp.ComponentScores = components
	return exp, true
}

// Document produces a document_lime Explanation when content is non-empty
// (§4.8: "When event content is available and the action warrants — any
// action with content").
func (e *Engine) Document(id, eventID, content string, components domain.ComponentScores) (*domain.Explanation, bool) {
	if content == "" {
		return nil, false
	}
	exp, err := domain.NewExplanation(id, eventID, domain.ExplanationTypeDocumentLIME)
	if err != nil {
		return nil, false
	}
	attribution := ExplainDocument(e.classifier, content, e.seed)
	exp.DocumentAttributions = attribution.Tokens
	exp.ComponentScores = components
	return exp, true
}
