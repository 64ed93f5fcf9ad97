// Package ingest implements POST /events/ingest (§4.1, §6): synchronous
// validation and admission, asynchronous scoring via the worker pipeline.
package ingest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigil/internal/audittrail"
	"vigil/internal/domain"
	"vigil/internal/queue"
	"vigil/internal/worker"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// Metrics is the narrow observability surface the handler reports to.
type Metrics interface {
	IncrementAccepted(action string)
	IncrementRejected(reason string)
}

// Handler serves the ingest endpoint and the queue status read endpoint.
type Handler struct {
	queue   *queue.Queue
	auditor *audittrail.Publisher
	logger  *slog.Logger
	metrics Metrics
}

// New constructs an ingest Handler. auditor and metrics may be nil.
func New(q *queue.Queue, auditor *audittrail.Publisher, logger *slog.Logger, metrics Metrics) *Handler {
	return &Handler{queue: q, auditor: auditor, logger: logger, metrics: metrics}
}

// Register mounts the ingest and queue-status endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/ingest", h.HandleIngest)
	r.Get("/events/queue/status", h.HandleQueueStatus)
}

// HandleIngest implements §4.1: validate, compute cross-department,
// attempt non-blocking enqueue, and return a pending stub response. No
// persistence, alert creation, or broadcast happens here — that is the
// worker's job downstream.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[Request](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actorDept, err := domain.ParseDepartment(requestcontext.Department(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authenticated actor department is invalid"))
		return
	}

	now := requestcontext.Now(ctx)
	eventID := uuid.NewString()
	crossDepartment := !actorDept.Equal(req.parsedTargetDepartment)

	payload := worker.Payload{
		EventID:             eventID,
		ActorID:             actorID,
		ActorDepartment:     actorDept,
		Action:              req.parsedAction,
		DocumentID:          req.DocumentID,
		DocumentFilename:    req.DocumentName,
		TargetDepartment:    req.parsedTargetDepartment,
		Timestamp:           now,
		BytesTransferred:    req.BytesTransferred,
		SourceIP:            req.SourceIP,
		DeviceID:            req.DeviceID,
		SessionID:           req.SessionID,
		Content:             req.Content,
		DeclaredSensitivity: req.parsedDeclaredSensitivity,
	}

	if err := h.queue.Offer(payload); err != nil {
		h.logger.WarnContext(ctx, "event admission rejected", "request_id", requestID, "actor_id", actorID, "error", err)
		h.incrementRejected("queue_full")
		if h.auditor != nil {
			h.auditor.PublishAdmission(ctx, actorID, eventID, "rejected:"+string(req.parsedAction))
		}
		httputil.WriteError(w, err)
		return
	}

	h.incrementAccepted(string(req.parsedAction))
	h.logger.InfoContext(ctx, "event admitted", "request_id", requestID, "event_id", eventID, "actor_id", actorID, "action", req.parsedAction)
	if h.auditor != nil {
		h.auditor.PublishAdmission(ctx, actorID, eventID, string(req.parsedAction))
	}

	httputil.WriteJSON(w, http.StatusAccepted, Response{
		EventID:           eventID,
		Timestamp:         now,
		RiskScore:         0,
		RiskLevel:         string(domain.RiskLevelPending),
		Severity:          string(domain.RiskLevelPending),
		RequiresAlert:     false,
		BehaviorScore:     0,
		SensitivityScore:  0,
		IntegrityScore:    0,
		IsCrossDepartment: crossDepartment,
		IsAnomalous:       false,
	})
}

// HandleQueueStatus implements GET /events/queue/status (§6).
func (h *Handler) HandleQueueStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.queue.Snapshot())
}

func (h *Handler) incrementAccepted(action string) {
	if h.metrics != nil {
		h.metrics.IncrementAccepted(action)
	}
}

func (h *Handler) incrementRejected(reason string) {
	if h.metrics != nil {
		h.metrics.IncrementRejected(reason)
	}
}
