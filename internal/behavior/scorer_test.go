package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/domain"
)

func mustEvent(t *testing.T, action domain.Action, ts time.Time, actorDept, targetDept domain.Department) domain.Event {
	t.Helper()
	e, err := domain.NewEvent("evt-"+ts.String(), "actor-1", actorDept, action, "doc-1", targetDept, ts, 1024)
	require.NoError(t, err)
	return *e
}

func TestScorer_UntrainedModelIsNeutral(t *testing.T) {
	history := NewHistory()
	scorer := NewScorer(history, &Forest{})

	e := mustEvent(t, domain.ActionView, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), domain.DepartmentFinance, domain.DepartmentFinance)
	result := scorer.Score("actor-1", Entry{Event: e})

	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.IsAnomalous)
	assert.Equal(t, LevelLow, result.Level)
}

func TestScorer_AppendsToHistoryAndEvictsOldEntries(t *testing.T) {
	history := NewHistory()
	scorer := NewScorer(history, &Forest{})

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	old := mustEvent(t, domain.ActionView, base, domain.DepartmentFinance, domain.DepartmentFinance)
	scorer.Score("actor-1", Entry{Event: old})

	// Exactly 24h - 1ms later: still kept.
	almostExpired := mustEvent(t, domain.ActionView, base.Add(24*time.Hour-time.Millisecond), domain.DepartmentFinance, domain.DepartmentFinance)
	result := scorer.Score("actor-1", Entry{Event: almostExpired})
	assert.Equal(t, 2.0, result.Features[featEventCount24h])

	// Exactly 24h later: old entry now strictly outside the window.
	expired := mustEvent(t, domain.ActionView, base.Add(24*time.Hour), domain.DepartmentFinance, domain.DepartmentFinance)
	result = scorer.Score("actor-1", Entry{Event: expired})
	assert.Equal(t, 2.0, result.Features[featEventCount24h], "old event at exactly 24h must be evicted")
}

func TestExtractFeatures_CrossDepartmentRatio(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e1 := mustEvent(t, domain.ActionView, base, domain.DepartmentHR, domain.DepartmentFinance)
	e2 := mustEvent(t, domain.ActionView, base.Add(time.Minute), domain.DepartmentHR, domain.DepartmentHR)

	window := []Entry{{Event: e1}}
	current := Entry{Event: e2}

	f := ExtractFeatures(current, window)
	assert.Equal(t, 2.0, f[featEventCount24h])
	assert.Equal(t, 1.0, f[featCrossDeptCount])
	assert.Equal(t, 0.5, f[featCrossDeptRatio])
}

func TestForest_TrainedModelScoresWithinRange(t *testing.T) {
	forest := DefaultForest(0.1)
	require.True(t, forest.trained)

	benign := FeatureVector{2, 1, 2, 0, 0, 10, 0, 0, 1, 0, 1, 0, 0, 300, 1, 1}
	raw, trained := forest.Score(benign)
	require.True(t, trained)
	assert.GreaterOrEqual(t, raw, -0.6)
	assert.LessOrEqual(t, raw, 0.6)

	// A wildly atypical point (huge counts, odd hour, many cross-dept
	// accesses) should normalize to a higher anomaly score than a benign one.
	extreme := FeatureVector{80, 500, 40, 1, 1, 3, 30, 1, 25, 20, 5, 15, 10, 5, 20, 20}
	rawExtreme, _ := forest.Score(extreme)
	assert.Less(t, rawExtreme, raw, "extreme feature vector should score more anomalous (more negative raw)")
}

func TestHistory_Seed(t *testing.T) {
	history := NewHistory()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	seeded := mustEvent(t, domain.ActionView, base, domain.DepartmentFinance, domain.DepartmentFinance)
	history.Seed("actor-2", []Entry{{Event: seeded}})
	assert.Equal(t, 1, history.Len("actor-2"))
}
