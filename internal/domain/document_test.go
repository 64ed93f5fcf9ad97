package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_DefaultsMatchBaseline(t *testing.T) {
	d, err := NewDocument("doc-1", "plan.txt", DepartmentFinance, SensitivityConfidential, "hash-a", "content", 7)
	require.NoError(t, err)
	assert.Equal(t, d.BaselineHash, d.CurrentHash)
	assert.False(t, d.Tampered)
	assert.Equal(t, TamperSeverityNone, d.TamperSeverity)
}

func TestDocument_ApplyClassification_SetsMismatch(t *testing.T) {
	d, err := NewDocument("doc-1", "plan.txt", DepartmentFinance, SensitivityPublic, "hash-a", "content", 7)
	require.NoError(t, err)

	d.ApplyClassification(SensitivityConfidential, 0.92)
	assert.True(t, d.SensitivityMismatch)

	d.ApplyClassification(SensitivityPublic, 0.5)
	assert.False(t, d.SensitivityMismatch)
}

func TestDocument_ApplyIntegrityResult_SetsTamperedFromHash(t *testing.T) {
	d, err := NewDocument("doc-1", "plan.txt", DepartmentFinance, SensitivityInternal, "hash-a", "content", 7)
	require.NoError(t, err)

	d.ApplyIntegrityResult("hash-a", "content", TamperSeverityNone, 7)
	assert.False(t, d.Tampered)

	d.ApplyIntegrityResult("hash-b", "content-changed", TamperSeverityModerate, 15)
	assert.True(t, d.Tampered)
	assert.Equal(t, TamperSeverityModerate, d.TamperSeverity)
}
