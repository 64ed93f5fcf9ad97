// Package worker drains the ingest queue and runs each event through the
// scoring pipeline: behavior, sensitivity, integrity, fusion, conditional
// explanation, then persistence and broadcast (§4.3).
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vigil/internal/audittrail"
	"vigil/internal/behavior"
	"vigil/internal/domain"
	"vigil/internal/explain"
	"vigil/internal/fusion"
	"vigil/internal/integrity"
	"vigil/internal/modification"
	"vigil/internal/queue"
	"vigil/internal/sensitivity"
	"vigil/internal/store"
	"vigil/pkg/platform/sentinel"
)

// Payload is what the ingest handler offers onto the queue: the validated
// event fields plus the optional content an upload/modify action carries.
type Payload struct {
	EventID          string
	ActorID          string
	ActorDepartment  domain.Department
	Action           domain.Action
	DocumentID       string
	DocumentFilename string
	TargetDepartment domain.Department
	Timestamp        time.Time
	BytesTransferred int64
	SourceIP         string
	DeviceID         string
	SessionID        string

	Content             string // upload/modify content, "" otherwise
	DeclaredSensitivity domain.Sensitivity
}

// Broadcaster is the narrow surface the worker needs from the websocket
// broadcast hub (§4.9); a nil Broadcaster disables broadcast silently.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, event domain.Event)
	BroadcastAlert(ctx context.Context, alert domain.Alert)
}

// Metrics is the narrow surface the worker reports to, matching the
// teacher's decision/metrics shape (counters and histograms behind small
// named methods rather than exposing prometheus types to callers).
type Metrics interface {
	ObserveProcessDuration(d time.Duration)
	IncrementProcessed(riskLevel string)
	IncrementFailed(stage string)
	IncrementAlert(priority string)
}

// Worker drains one queue and runs the scoring pipeline per event. Multiple
// Workers may share one queue, one History, and one Store safely: History
// is keyed per-actor internally and Store implementations are expected to
// be safe for concurrent use (both the memory and postgres implementations
// here are).
type Worker struct {
	queue      *queue.Queue
	store      store.Store
	history    *behavior.History
	scorer     *behavior.Scorer
	classifier *sensitivity.Classifier
	verifier   *integrity.Verifier
	fusion     *fusion.Engine
	explainer  *explain.Engine
	broadcast  Broadcaster
	auditor    *audittrail.Publisher
	logger     *slog.Logger
	metrics    Metrics
	tracer     trace.Tracer
	regulated  bool
}

// New constructs a Worker. broadcast, auditor, and metrics may be nil.
func New(
	q *queue.Queue,
	st store.Store,
	history *behavior.History,
	scorer *behavior.Scorer,
	classifier *sensitivity.Classifier,
	verifier *integrity.Verifier,
	fusionEngine *fusion.Engine,
	explainer *explain.Engine,
	broadcast Broadcaster,
	auditor *audittrail.Publisher,
	logger *slog.Logger,
	metrics Metrics,
) *Worker {
	return &Worker{
		queue:      q,
		store:      st,
		history:    history,
		scorer:     scorer,
		classifier: classifier,
		verifier:   verifier,
		fusion:     fusionEngine,
		explainer:  explainer,
		broadcast:  broadcast,
		auditor:    auditor,
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer("vigil.worker"),
	}
}

// WithRegulatedMode toggles evidence minimization for persisted modification
// records: content bodies are dropped, keeping only the diff statistics and
// risk scoring fields, matching the teacher's REGULATED_MODE evidence
// minimization flag repurposed here for document content at rest.
func (w *Worker) WithRegulatedMode(regulated bool) *Worker {
	w.regulated = regulated
	return w
}

// Run drains the queue until ctx is canceled, processing one payload at a
// time. Callers typically run several Workers in separate goroutines to
// parallelize draining.
func (w *Worker) Run(ctx context.Context) {
	for {
		p, err := w.queue.Take(ctx)
		if err != nil {
			return
		}
		payload, ok := p.(Payload)
		if !ok {
			w.logger.Error("worker received malformed queue payload")
			continue
		}
		w.process(ctx, payload)
	}
}

// process runs the full §4.3 pipeline for one payload. It never panics or
// blocks indefinitely: a failure in any conditional stage (sensitivity,
// integrity, explanation, alert/explanation/modification persistence)
// neutralizes that stage's contribution and continues; only the Event
// persistence failure aborts processing of this event.
func (w *Worker) process(ctx context.Context, p Payload) {
	ctx, span := w.tracer.Start(ctx, "worker.process")
	defer span.End()

	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.ObserveProcessDuration(time.Since(start))
		}
	}()

	actor, err := w.store.GetActor(ctx, p.ActorID)
	actorDept := p.ActorDepartment
	if err == nil {
		actorDept = actor.Department
	} else {
		w.logger.WarnContext(ctx, "actor lookup failed, using payload department", "actor_id", p.ActorID, "error", err)
	}

	event, err := domain.NewEvent(p.EventID, p.ActorID, actorDept, p.Action, p.DocumentID, p.TargetDepartment, p.Timestamp, p.BytesTransferred)
	if err != nil {
		w.logger.ErrorContext(ctx, "event construction failed", "event_id", p.EventID, "error", err)
		w.incFailed("construct")
		return
	}
	event.SourceIP = p.SourceIP
	event.DeviceID = p.DeviceID
	event.SessionID = p.SessionID

	doc, docErr := w.store.GetDocument(ctx, p.DocumentID)
	if docErr != nil {
		w.logger.WarnContext(ctx, "document lookup failed, proceeding with neutral sensitivity", "document_id", p.DocumentID, "error", docErr)
	}

	sensitivityScore, docSensitivity := w.runSensitivity(ctx, p, doc)
	integrityScore, integrityResult := w.runIntegrity(ctx, p, doc)

	entry := behavior.EntryFromEvent(*event, docSensitivity)
	behaviorResult := w.scorer.Score(p.ActorID, entry)
	event.BehaviorScore = behaviorResult.Score

	assessment := w.fusion.Compute(fusion.Input{
		BehaviorScore:     behaviorResult.Score,
		SensitivityScore:  sensitivityScore,
		IntegrityScore:    integrityScore,
		Action:            p.Action,
		IsCrossDepartment: event.CrossDepartment,
		IsAfterHours:      event.IsAfterHours(),
		IsWeekend:         event.IsWeekend(),
	})
	event.FusedRiskScore = assessment.FusedScore
	event.RiskLevel = assessment.Level

	if err := w.store.CreateEvent(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "event persistence failed, aborting event", "event_id", event.ID, "error", err)
		w.incFailed("persist_event")
		return
	}

	// Step 7 (§4.3): alert, explanation, modification, and the document's
	// classification/integrity update are this event's side effects and
	// commit as one transaction, distinct from and after the event row's
	// own commit in step 6 above (§1, §5 "Database sessions: one session
	// per logical operation").
	var createdAlert *domain.Alert
	txErr := w.store.WithinTx(ctx, func(ctx context.Context) error {
		var firstErr error
		record := func(err error) {
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}

		if assessment.RequiresAlert {
			alert, err := w.persistAlert(ctx, event, assessment)
			record(err)
			createdAlert = alert
		}
		if w.explainer != nil {
			record(w.persistExplanations(ctx, event, behaviorResult, docSensitivity, assessment, p.Content))
		}
		if p.Action == domain.ActionModify && p.Content != "" && doc != nil {
			record(w.persistModification(ctx, event, doc, p.Content, assessment))
		}
		if doc != nil {
			record(w.updateDocument(ctx, doc, p, sensitivityScore, integrityResult))
		}
		return firstErr
	})
	if txErr != nil {
		w.logger.WarnContext(ctx, "one or more pipeline side effects failed", "event_id", event.ID, "error", txErr)
		createdAlert = nil
	}

	if createdAlert != nil {
		if w.metrics != nil {
			w.metrics.IncrementAlert(string(createdAlert.Priority))
		}
		if w.broadcast != nil {
			w.broadcast.BroadcastAlert(ctx, *createdAlert)
		}
		if w.auditor != nil {
			w.auditor.PublishAlert(ctx, createdAlert.ActorID, createdAlert.EventID, createdAlert.Summary)
		}
	}

	if w.metrics != nil {
		w.metrics.IncrementProcessed(string(event.RiskLevel))
	}
	if w.broadcast != nil {
		w.broadcast.BroadcastEvent(ctx, *event)
	}
}

func (w *Worker) runSensitivity(ctx context.Context, p Payload, doc *domain.Document) (float64, domain.Sensitivity) {
	if !p.Action.RequiresContent() || p.Content == "" {
		if doc != nil {
			return sensitivity.Result{Level: doc.PredictedSensitivity, Confidence: doc.PredictedConfidence}.RiskScore(), doc.PredictedSensitivity
		}
		return 0.5 * 0.5, domain.SensitivityInternal
	}

	result := w.classifier.Classify(p.Content)
	score := result.RiskScore()

	if p.DeclaredSensitivity != "" {
		mismatch := sensitivity.EvaluateMismatch(p.DeclaredSensitivity, result.Level, result.Confidence)
		score += mismatch.Modifier
		if score > 1 {
			score = 1
		}
	}

	return score, result.Level
}

func (w *Worker) runIntegrity(ctx context.Context, p Payload, doc *domain.Document) (float64, *integrity.Result) {
	if !p.Action.RequiresContent() || doc == nil || p.Content == "" {
		return 0, nil
	}
	result := w.verifier.Verify(doc.BaselineHash, doc.BaselineContent, p.Content)
	if !result.IsTampered {
		return 0, &result
	}
	return result.Severity.RiskScore(), &result
}

// persistAlert writes the alert row and returns it so the caller can
// broadcast and audit-log only after the enclosing transaction commits;
// doing either before commit would announce an alert that a later rollback
// then erases.
func (w *Worker) persistAlert(ctx context.Context, event *domain.Event, assessment fusion.Assessment) (*domain.Alert, error) {
	priority := domain.AlertPriorityFromRiskLevel(assessment.Level)
	details := map[string]string{
		"primary_risk_factor": assessment.PrimaryRiskFactor,
	}
	alert, err := domain.NewAlert(uuid.NewString(), event.ID, event.ActorID, priority, assessment.FusedScore, summarize(assessment), details, event.Timestamp)
	if err != nil {
		return nil, err
	}
	if err := w.store.CreateAlert(ctx, alert); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, nil
		}
		w.incFailed("persist_alert")
		return nil, err
	}
	return alert, nil
}

func summarize(a fusion.Assessment) string {
	if len(a.RiskFactors) == 0 {
		return "elevated risk assessment, no single dominant factor"
	}
	summary := a.RiskFactors[0]
	for _, f := range a.RiskFactors[1:] {
		summary += "; " + f
	}
	return summary
}

func (w *Worker) persistExplanations(ctx context.Context, event *domain.Event, behaviorResult behavior.Result, docSensitivity domain.Sensitivity, assessment fusion.Assessment, content string) error {
	components := domain.ComponentScores{
		Behavior:    behaviorResult.Score,
		Sensitivity: assessment.Components["sensitivity"],
		Integrity:   assessment.Components["integrity"],
	}

	var firstErr error
	if exp, ok := w.explainer.Behavior(uuid.NewString(), event.ID, behaviorResult.IsAnomalous, behaviorResult.Features, components); ok {
		if err := w.store.CreateExplanation(ctx, exp); err != nil {
			w.incFailed("persist_explanation")
			firstErr = err
		}
	}
	if exp, ok := w.explainer.Document(uuid.NewString(), event.ID, content, components); ok {
		if err := w.store.CreateExplanation(ctx, exp); err != nil {
			w.incFailed("persist_explanation")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (w *Worker) persistModification(ctx context.Context, event *domain.Event, doc *domain.Document, content string, assessment fusion.Assessment) error {
	diff := modification.Diff(doc.CurrentContent, content)
	mod, err := domain.NewModificationRecord(uuid.NewString(), event.ID, doc.ID, doc.CurrentContent, content, diff.CharsAdded, diff.CharsRemoved)
	if err != nil {
		return err
	}
	mod.CrossDepartment = event.CrossDepartment
	mod.RiskScore = assessment.FusedScore
	mod.RiskLevel = assessment.Level
	if w.regulated {
		mod.OriginalContent = ""
		mod.ModifiedContent = ""
	}
	if err := w.store.CreateModification(ctx, mod); err != nil {
		w.incFailed("persist_modification")
		return err
	}
	return nil
}

func (w *Worker) updateDocument(ctx context.Context, doc *domain.Document, p Payload, sensitivityScore float64, integrityResult *integrity.Result) error {
	updated := *doc
	if p.Action.RequiresContent() && p.Content != "" {
		result := w.classifier.Classify(p.Content)
		updated.ApplyClassification(result.Level, result.Confidence)
	}
	if integrityResult != nil {
		updated.ApplyIntegrityResult(integrityResult.CurrentHash, p.Content, integrityResult.Severity, int64(len(p.Content)))
	}
	if err := w.store.UpdateDocument(ctx, &updated); err != nil {
		w.incFailed("persist_document")
		return err
	}
	*doc = updated
	return nil
}

func (w *Worker) incFailed(stage string) {
	if w.metrics != nil {
		w.metrics.IncrementFailed(stage)
	}
}
