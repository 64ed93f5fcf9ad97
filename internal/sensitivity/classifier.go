// Package sensitivity classifies document content into {public, internal,
// confidential} with a confidence and matched evidence (§4.5).
package sensitivity

import "vigil/internal/domain"

// Result is the classifier's output for one piece of content.
type Result struct {
	Level      domain.Sensitivity
	Confidence float64
	Evidence   []string
}

// neutralResult is returned when content is absent: "the classifier is
// skipped and a neutral result of {internal, 0.5} is returned" (§4.5).
var neutralResult = Result{Level: domain.SensitivityInternal, Confidence: 0.5}

// SemanticClassifier is the optional zero-shot tier. Implementations may
// call out to an external model; a runtime failure must be swallowed by
// the caller (Classify falls back to the lexicon tier silently).
type SemanticClassifier interface {
	Classify(content string) (Result, error)
}

// baseWeight converts a predicted level + confidence into the [0,1] risk
// signal routed into fusion (§4.5 "Risk score").
var baseWeight = map[domain.Sensitivity]float64{
	domain.SensitivityPublic:       0.1,
	domain.SensitivityInternal:     0.5,
	domain.SensitivityConfidential: 0.9,
}

// Classifier runs the two-tier §4.5 algorithm.
type Classifier struct {
	semantic SemanticClassifier
}

// NewClassifier constructs a Classifier. semantic may be nil, in which
// case only the mandatory lexicon tier runs.
func NewClassifier(semantic SemanticClassifier) *Classifier {
	return &Classifier{semantic: semantic}
}

// Classify implements §4.5. An empty content string returns the neutral
// result without consulting either tier.
func (c *Classifier) Classify(content string) Result {
	if content == "" {
		return neutralResult
	}

	if c.semantic != nil {
		if result, err := c.semantic.Classify(content); err == nil {
			return result
		}
		// Semantic tier failed at runtime: fall back to lexicon silently.
	}

	return c.lexiconClassify(content)
}

func (c *Classifier) lexiconClassify(content string) Result {
	tallies, evidence := lexiconTier(content)
	total := tallies[domain.SensitivityPublic] + tallies[domain.SensitivityInternal] + tallies[domain.SensitivityConfidential]

	if total == 0 {
		return Result{Level: defaultArgmax(), Confidence: 0.6, Evidence: nil}
	}

	probs := map[domain.Sensitivity]float64{
		domain.SensitivityPublic:       float64(tallies[domain.SensitivityPublic]) / float64(total),
		domain.SensitivityInternal:     float64(tallies[domain.SensitivityInternal]) / float64(total),
		domain.SensitivityConfidential: float64(tallies[domain.SensitivityConfidential]) / float64(total),
	}

	level, confidence := argmax(probs)
	if level == domain.SensitivityConfidential && confidence < 0.6 {
		confidence = minFloat(confidence*1.5, 0.95)
	}

	return Result{Level: level, Confidence: confidence, Evidence: evidence}
}

// defaultArgmax mirrors §4.5's "default distribution {public 0.2, internal
// 0.6, confidential 0.2}" when there are no matches at all: internal wins.
func defaultArgmax() domain.Sensitivity {
	return domain.SensitivityInternal
}

func argmax(probs map[domain.Sensitivity]float64) (domain.Sensitivity, float64) {
	levels := []domain.Sensitivity{domain.SensitivityConfidential, domain.SensitivityInternal, domain.SensitivityPublic}
	best := levels[0]
	bestScore := probs[best]
	for _, l := range levels[1:] {
		if probs[l] > bestScore {
			best = l
			bestScore = probs[l]
		}
	}
	return best, bestScore
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// RiskScore converts a Result into the [0,1] signal fusion consumes
// (§4.5 "Risk score"): base_weight[level] * confidence.
func (r Result) RiskScore() float64 {
	return baseWeight[r.Level] * r.Confidence
}

// sensitivityHierarchy orders levels for the upload mismatch comparison
// (§4.5): public=1 < internal=2 < confidential=3.
var sensitivityHierarchy = map[domain.Sensitivity]int{
	domain.SensitivityPublic:       1,
	domain.SensitivityInternal:     2,
	domain.SensitivityConfidential: 3,
}

// MismatchOutcome is the upload sensitivity-mismatch policy's verdict.
type MismatchOutcome struct {
	Mismatch bool
	Modifier float64
}

// EvaluateMismatch implements §4.5's "Upload mismatch policy": compares
// declared against predicted in the hierarchy and derives the risk
// modifier routed into fusion as an independent signal.
func EvaluateMismatch(declared, predicted domain.Sensitivity, confidence float64) MismatchOutcome {
	d, p := sensitivityHierarchy[declared], sensitivityHierarchy[predicted]
	if d < p {
		return MismatchOutcome{Mismatch: true, Modifier: 0.3 * float64(p-d) * confidence}
	}
	if d > p {
		return MismatchOutcome{Mismatch: false, Modifier: 0.05 * confidence}
	}
	return MismatchOutcome{Mismatch: false, Modifier: 0}
}
