package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/behavior"
	"vigil/internal/domain"
	"vigil/internal/explain"
	"vigil/internal/fusion"
	"vigil/internal/integrity"
	"vigil/internal/platform/logger"
	"vigil/internal/queue"
	"vigil/internal/sensitivity"
	"vigil/internal/store/memory"
)

type fakeBroadcaster struct {
	events []domain.Event
	alerts []domain.Alert
}

func (f *fakeBroadcaster) BroadcastEvent(_ context.Context, event domain.Event) {
	f.events = append(f.events, event)
}

func (f *fakeBroadcaster) BroadcastAlert(_ context.Context, alert domain.Alert) {
	f.alerts = append(f.alerts, alert)
}

func newTestWorker(t *testing.T, st *memory.Store, broadcast Broadcaster) *Worker {
	t.Helper()
	history := behavior.NewHistory()
	model := behavior.DefaultForest(0.1)
	scorer := behavior.NewScorer(history, model)
	classifier := sensitivity.NewClassifier(nil)
	verifier := integrity.NewVerifier(nil)
	fusionEngine := fusion.DefaultEngine()
	explainer := explain.NewEngine(model, classifier, 1)
	q := queue.New(100, 0.9)
	return New(q, st, history, scorer, classifier, verifier, fusionEngine, explainer, broadcast, nil, logger.New("error"), nil)
}

func seedActorAndDocument(st *memory.Store) {
	actor, _ := domain.NewActor("actor-1", "Alice", domain.DepartmentFinance, domain.RoleUser, true)
	st.SeedActor(*actor)
	doc, _ := domain.NewDocument("doc-1", "Q3-report.xlsx", domain.DepartmentFinance, domain.SensitivityInternal, integrity.Hash("original content"), "original content", 17)
	_ = st.CreateDocument(context.Background(), doc)
}

func TestWorker_ProcessPersistsEventAndBroadcasts(t *testing.T) {
	st := memory.New()
	seedActorAndDocument(st)
	broadcaster := &fakeBroadcaster{}
	w := newTestWorker(t, st, broadcaster)

	w.process(context.Background(), Payload{
		EventID:          "evt-1",
		ActorID:          "actor-1",
		ActorDepartment:  domain.DepartmentFinance,
		Action:           domain.ActionView,
		DocumentID:       "doc-1",
		TargetDepartment: domain.DepartmentFinance,
		Timestamp:        time.Now(),
		BytesTransferred: 1024,
	})

	events, err := st.RecentByActor(context.Background(), "actor-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.NotEqual(t, domain.RiskLevelPending, events[0].RiskLevel)
	require.Len(t, broadcaster.events, 1)
}

func TestWorker_CrossDepartmentDownloadRaisesAlert(t *testing.T) {
	st := memory.New()
	seedActorAndDocument(st)
	broadcaster := &fakeBroadcaster{}
	w := newTestWorker(t, st, broadcaster)

	w.process(context.Background(), Payload{
		EventID:          "evt-2",
		ActorID:          "actor-1",
		ActorDepartment:  domain.DepartmentFinance,
		Action:           domain.ActionDownload,
		DocumentID:       "doc-1",
		TargetDepartment: domain.DepartmentHR,
		Timestamp:        time.Now(),
		BytesTransferred: 5_000_000,
	})

	alert, err := st.GetAlertByEvent(context.Background(), "evt-2")
	require.NoError(t, err)
	assert.Equal(t, "evt-2", alert.EventID)
	require.Len(t, broadcaster.alerts, 1)
}

func TestWorker_ModifyWithContentPersistsModificationAndIntegrity(t *testing.T) {
	st := memory.New()
	seedActorAndDocument(st)
	w := newTestWorker(t, st, nil)

	w.process(context.Background(), Payload{
		EventID:          "evt-3",
		ActorID:          "actor-1",
		ActorDepartment:  domain.DepartmentFinance,
		Action:           domain.ActionModify,
		DocumentID:       "doc-1",
		TargetDepartment: domain.DepartmentFinance,
		Timestamp:        time.Now(),
		BytesTransferred: 30,
		Content:          "original content with an appended clause",
	})

	mods := st.Modifications()
	require.Len(t, mods, 1)
	assert.Equal(t, "doc-1", mods[0].DocumentID)

	doc, err := st.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.True(t, doc.Tampered)
}

func TestWorker_MissingDocumentDegradesGracefully(t *testing.T) {
	st := memory.New()
	actor, _ := domain.NewActor("actor-2", "Bob", domain.DepartmentIT, domain.RoleUser, true)
	st.SeedActor(*actor)
	w := newTestWorker(t, st, nil)

	w.process(context.Background(), Payload{
		EventID:          "evt-4",
		ActorID:          "actor-2",
		ActorDepartment:  domain.DepartmentIT,
		Action:           domain.ActionView,
		DocumentID:       "doc-missing",
		TargetDepartment: domain.DepartmentIT,
		Timestamp:        time.Now(),
		BytesTransferred: 10,
	})

	events, err := st.RecentByActor(context.Background(), "actor-2", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestWorker_RunIntegritySkippedForActionsThatDoNotCarryContent(t *testing.T) {
	st := memory.New()
	seedActorAndDocument(st)
	w := newTestWorker(t, st, nil)

	doc, err := st.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)

	score, result := w.runIntegrity(context.Background(), Payload{
		Action:  domain.ActionView,
		Content: "this does not match the baseline content at all",
	}, doc)

	assert.Zero(t, score)
	assert.Nil(t, result)
}

func TestWorker_ViewWithContentDoesNotTriggerIntegrityCheck(t *testing.T) {
	st := memory.New()
	seedActorAndDocument(st)
	w := newTestWorker(t, st, nil)

	w.process(context.Background(), Payload{
		EventID:          "evt-5",
		ActorID:          "actor-1",
		ActorDepartment:  domain.DepartmentFinance,
		Action:           domain.ActionView,
		DocumentID:       "doc-1",
		TargetDepartment: domain.DepartmentFinance,
		Timestamp:        time.Now(),
		BytesTransferred: 10,
		Content:          "this is a different payload than the registered baseline",
	})

	doc, err := st.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, doc.Tampered)

	_, err = st.GetAlertByEvent(context.Background(), "evt-5")
	assert.Error(t, err)
}
