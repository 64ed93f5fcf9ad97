package sensitivity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"vigil/internal/domain"
)

func TestClassify_EmptyContentIsNeutral(t *testing.T) {
	c := NewClassifier(nil)
	result := c.Classify("")
	assert.Equal(t, domain.SensitivityInternal, result.Level)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestClassify_NoMatchesUsesDefaultDistribution(t *testing.T) {
	c := NewClassifier(nil)
	result := c.Classify("the quick brown fox jumps over the lazy dog")
	assert.Equal(t, domain.SensitivityInternal, result.Level)
	assert.Equal(t, 0.6, result.Confidence)
}

func TestClassify_ConfidentialLexiconMatch(t *testing.T) {
	c := NewClassifier(nil)
	result := c.Classify("Please review the NDA before the merger discussion.")
	assert.Equal(t, domain.SensitivityConfidential, result.Level)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestClassify_ConfidentialBelowThresholdGetsConfidenceBoost(t *testing.T) {
	c := NewClassifier(nil)
	// 3 confidential / 2 internal / 1 public match -> confidential argmax at
	// 0.5 confidence, below the 0.6 boost threshold.
	content := "This memo covers roadmap items and marketing plans, plus nda merger salary details."
	result := c.Classify(content)
	assert.Equal(t, domain.SensitivityConfidential, result.Level)
	assert.InDelta(t, 0.75, result.Confidence, 1e-9)
}

func TestClassify_SSNPatternAddsConfidentialBonus(t *testing.T) {
	c := NewClassifier(nil)
	result := c.Classify("Employee record: SSN 123-45-6789, internal use only memo.")
	assert.Equal(t, domain.SensitivityConfidential, result.Level)
}

func TestClassify_IsDeterministic(t *testing.T) {
	c := NewClassifier(nil)
	content := "quarterly roadmap and project plan for the internal team"
	first := c.Classify(content)
	second := c.Classify(content)
	assert.Equal(t, first, second)
}

type failingSemanticClassifier struct{}

func (failingSemanticClassifier) Classify(content string) (Result, error) {
	return Result{}, errors.New("backend unavailable")
}

func TestClassify_SemanticFailureFallsBackToLexicon(t *testing.T) {
	c := NewClassifier(failingSemanticClassifier{})
	result := c.Classify("Please review the NDA before the merger discussion.")
	assert.Equal(t, domain.SensitivityConfidential, result.Level)
}

type stubSemanticClassifier struct{ result Result }

func (s stubSemanticClassifier) Classify(content string) (Result, error) {
	return s.result, nil
}

func TestClassify_SemanticTierOverridesLexicon(t *testing.T) {
	want := Result{Level: domain.SensitivityPublic, Confidence: 0.9}
	c := NewClassifier(stubSemanticClassifier{result: want})
	got := c.Classify("NDA merger salary")
	assert.Equal(t, want, got)
}

func TestRiskScore(t *testing.T) {
	r := Result{Level: domain.SensitivityConfidential, Confidence: 0.8}
	assert.InDelta(t, 0.72, r.RiskScore(), 1e-9)
}

func TestEvaluateMismatch_DeclaredLowerThanPredicted(t *testing.T) {
	outcome := EvaluateMismatch(domain.SensitivityPublic, domain.SensitivityConfidential, 0.9)
	assert.True(t, outcome.Mismatch)
	assert.InDelta(t, 0.54, outcome.Modifier, 1e-9)
}

func TestEvaluateMismatch_DeclaredHigherThanPredicted(t *testing.T) {
	outcome := EvaluateMismatch(domain.SensitivityConfidential, domain.SensitivityPublic, 0.8)
	assert.False(t, outcome.Mismatch)
	assert.InDelta(t, 0.04, outcome.Modifier, 1e-9)
}

func TestEvaluateMismatch_Equal(t *testing.T) {
	outcome := EvaluateMismatch(domain.SensitivityInternal, domain.SensitivityInternal, 0.7)
	assert.False(t, outcome.Mismatch)
	assert.Equal(t, 0.0, outcome.Modifier)
}
