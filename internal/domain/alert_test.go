package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlert_Transition_ValidGraph(t *testing.T) {
	now := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	a, err := NewAlert("alert-1", "evt-1", "actor-1", AlertPriorityHigh, 0.72, "anomalous access", nil, now)
	require.NoError(t, err)
	assert.Equal(t, AlertStatusOpen, a.Status)
	assert.Nil(t, a.ResolvedAt)

	require.NoError(t, a.Transition(AlertStatusInvestigating, now.Add(time.Minute)))
	assert.Equal(t, AlertStatusInvestigating, a.Status)
	assert.Nil(t, a.ResolvedAt)

	resolvedAt := now.Add(time.Hour)
	require.NoError(t, a.Transition(AlertStatusResolved, resolvedAt))
	assert.Equal(t, AlertStatusResolved, a.Status)
	require.NotNil(t, a.ResolvedAt)
	assert.Equal(t, resolvedAt, *a.ResolvedAt)
}

func TestAlert_Transition_RejectsInvalid(t *testing.T) {
	now := time.Now()
	a, err := NewAlert("alert-1", "evt-1", "actor-1", AlertPriorityLow, 0.1, "summary", nil, now)
	require.NoError(t, err)

	require.NoError(t, a.Transition(AlertStatusResolved, now))
	assert.Error(t, a.Transition(AlertStatusOpen, now))
	assert.Error(t, a.Transition(AlertStatusInvestigating, now))
}
