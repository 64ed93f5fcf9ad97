package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepartment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Department
		wantErr bool
	}{
		{name: "uppercase", input: "FINANCE", want: DepartmentFinance},
		{name: "lowercase normalizes", input: "hr", want: DepartmentHR},
		{name: "unknown rejected", input: "MARKETING", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDepartment(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDepartment_EqualCaseInsensitive(t *testing.T) {
	assert.True(t, Department("IT").Equal(Department("it")))
	assert.False(t, Department("IT").Equal(Department("HR")))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("modify")
	require.NoError(t, err)
	assert.Equal(t, ActionModify, a)
	assert.True(t, a.RequiresContent())

	_, err = ParseAction("rename")
	assert.Error(t, err)
}

func TestAction_RequiresContent(t *testing.T) {
	assert.True(t, ActionUpload.RequiresContent())
	assert.True(t, ActionModify.RequiresContent())
	assert.False(t, ActionView.RequiresContent())
	assert.False(t, ActionDelete.RequiresContent())
}

func TestTamperSeverity_RiskScore(t *testing.T) {
	tests := []struct {
		severity TamperSeverity
		want     float64
	}{
		{TamperSeverityNone, 0.0},
		{TamperSeverityMinor, 0.3},
		{TamperSeverityModerate, 0.6},
		{TamperSeverityMajor, 0.9},
		{TamperSeverityUnknown, 0.7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.severity.RiskScore())
	}
}

func TestAlertStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, AlertStatusOpen.CanTransitionTo(AlertStatusInvestigating))
	assert.True(t, AlertStatusOpen.CanTransitionTo(AlertStatusResolved))
	assert.True(t, AlertStatusInvestigating.CanTransitionTo(AlertStatusDismissed))
	assert.False(t, AlertStatusResolved.CanTransitionTo(AlertStatusOpen))
	assert.False(t, AlertStatusDismissed.CanTransitionTo(AlertStatusInvestigating))
}

func TestAlertPriorityFromRiskLevel(t *testing.T) {
	assert.Equal(t, AlertPriorityCritical, AlertPriorityFromRiskLevel(RiskLevelCritical))
	assert.Equal(t, AlertPriorityHigh, AlertPriorityFromRiskLevel(RiskLevelHigh))
	assert.Equal(t, AlertPriorityMedium, AlertPriorityFromRiskLevel(RiskLevelMedium))
	assert.Equal(t, AlertPriorityLow, AlertPriorityFromRiskLevel(RiskLevelLow))
	assert.Equal(t, AlertPriorityLow, AlertPriorityFromRiskLevel(RiskLevelPending))
}
