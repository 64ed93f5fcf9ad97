package domain

import (
	"time"

	dErrors "vigil/pkg/domain-errors"
)

// Alert is generated when an event's risk assessment demands analyst
// attention. Invariant: at most one Alert per Event (enforced by the store's
// unique constraint on event_id).
type Alert struct {
	ID       string
	EventID  string
	ActorID  string
	Priority AlertPriority
	RiskScore float64
	Summary  string
	Details  map[string]string
	Status   AlertStatus

	Assignee        string
	ResolutionNotes string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// NewAlert constructs an Alert in the open state.
func NewAlert(id, eventID, actorID string, priority AlertPriority, riskScore float64, summary string, details map[string]string, createdAt time.Time) (*Alert, error) {
	if id == "" || eventID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "alert id and event id cannot be empty")
	}
	return &Alert{
		ID:        id,
		EventID:   eventID,
		ActorID:   actorID,
		Priority:  priority,
		RiskScore: riskScore,
		Summary:   summary,
		Details:   details,
		Status:    AlertStatusOpen,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// Transition moves the alert to next, enforcing the validAlertTransitions
// graph (open → investigating → {resolved, dismissed}, or open directly to
// resolved/dismissed) and stamping ResolvedAt on terminal states.
func (a *Alert) Transition(next AlertStatus, at time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeValidation, "invalid alert status transition")
	}
	a.Status = next
	a.UpdatedAt = at
	if next == AlertStatusResolved || next == AlertStatusDismissed {
		a.ResolvedAt = &at
	}
	return nil
}
