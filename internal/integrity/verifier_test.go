package integrity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/domain"
)

func TestVerify_HashMatchIsNotTampered(t *testing.T) {
	v := NewVerifier(nil)
	baseline := "the quarterly report contents"
	result := v.Verify(Hash(baseline), baseline, baseline)
	assert.True(t, result.HashMatch)
	assert.False(t, result.IsTampered)
	assert.Equal(t, domain.TamperSeverityNone, result.Severity)
}

func TestVerify_RegistrationRoundTrip(t *testing.T) {
	content := "baseline content for document registration"
	baselineHash := Hash(content)
	result := NewVerifier(nil).Verify(baselineHash, content, content)
	assert.Equal(t, baselineHash, result.CurrentHash)
	assert.True(t, result.HashMatch)
}

func TestVerify_NoBaselineContentYieldsUnknownSeverity(t *testing.T) {
	v := NewVerifier(nil)
	result := v.Verify(Hash("original"), "", "modified content")
	assert.True(t, result.IsTampered)
	assert.Equal(t, domain.TamperSeverityUnknown, result.Severity)
}

func TestVerify_SizeDeltaSeverityBuckets(t *testing.T) {
	v := NewVerifier(nil)
	baseline := make([]byte, 1000)
	for i := range baseline {
		baseline[i] = 'a'
	}

	minorChange := string(baseline[:980]) // 2% smaller
	result := v.Verify(Hash(string(baseline)), string(baseline), minorChange)
	assert.Equal(t, domain.TamperSeverityMinor, result.Severity)

	moderateChange := string(baseline[:850]) // 15% smaller
	result = v.Verify(Hash(string(baseline)), string(baseline), moderateChange)
	assert.Equal(t, domain.TamperSeverityModerate, result.Severity)

	majorChange := string(baseline[:500]) // 50% smaller
	result = v.Verify(Hash(string(baseline)), string(baseline), majorChange)
	assert.Equal(t, domain.TamperSeverityMajor, result.Severity)
}

type stubSemanticSimilarity struct {
	similarity float64
	err        error
}

func (s stubSemanticSimilarity) Similarity(baseline, current string) (float64, error) {
	return s.similarity, s.err
}

func TestVerify_SemanticSimilarityBuckets(t *testing.T) {
	cases := []struct {
		similarity float64
		want       domain.TamperSeverity
	}{
		{0.99, domain.TamperSeverityMinor},
		{0.90, domain.TamperSeverityModerate},
		{0.50, domain.TamperSeverityMajor},
	}
	for _, c := range cases {
		v := NewVerifier(stubSemanticSimilarity{similarity: c.similarity})
		result := v.Verify(Hash("baseline"), "baseline", "current")
		assert.Equal(t, c.want, result.Severity)
		assert.Equal(t, c.similarity, result.SemanticSimilarity)
	}
}

func TestVerify_SemanticFailureFallsBackToSizeDelta(t *testing.T) {
	v := NewVerifier(stubSemanticSimilarity{err: errors.New("model unavailable")})
	baseline := make([]byte, 1000)
	for i := range baseline {
		baseline[i] = 'a'
	}
	result := v.Verify(Hash(string(baseline)), string(baseline), string(baseline[:980]))
	assert.Equal(t, domain.TamperSeverityMinor, result.Severity)
	assert.Equal(t, 0.0, result.SemanticSimilarity)
}

func TestTamperSeverityRiskScore(t *testing.T) {
	require.Equal(t, 0.0, domain.TamperSeverityNone.RiskScore())
	require.Equal(t, 0.3, domain.TamperSeverityMinor.RiskScore())
	require.Equal(t, 0.6, domain.TamperSeverityModerate.RiskScore())
	require.Equal(t, 0.9, domain.TamperSeverityMajor.RiskScore())
	require.Equal(t, 0.7, domain.TamperSeverityUnknown.RiskScore())
}
