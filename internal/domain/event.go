package domain

import (
	"time"

	dErrors "vigil/pkg/domain-errors"
)

// Event is an immutable record of one action. Events are append-only once
// persisted.
type Event struct {
	ID                   string
	ActorID              string
	ActorDepartmentAtTime Department
	Action               Action
	DocumentID           string
	TargetDepartment     Department
	Timestamp            time.Time
	BytesTransferred     int64

	SourceIP     string
	DeviceID     string
	SessionID    string

	CrossDepartment bool
	BehaviorScore   float64
	FusedRiskScore  float64
	RiskLevel       RiskLevel
}

// NewEvent constructs an Event, deriving the cross-department flag from the
// actor and target departments (case-insensitive per §3).
func NewEvent(id, actorID string, actorDept Department, action Action, documentID string, targetDept Department, timestamp time.Time, bytesTransferred int64) (*Event, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event id cannot be empty")
	}
	if actorID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event actor id cannot be empty")
	}
	if !action.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid event action")
	}
	return &Event{
		ID:                    id,
		ActorID:               actorID,
		ActorDepartmentAtTime: actorDept,
		Action:                action,
		DocumentID:            documentID,
		TargetDepartment:      targetDept,
		Timestamp:             timestamp,
		BytesTransferred:      bytesTransferred,
		CrossDepartment:       !actorDept.Equal(targetDept),
		RiskLevel:             RiskLevelPending,
	}, nil
}

// IsAfterHours reports whether the event's hour-of-day falls outside 8-18,
// per §4.4 feature #4.
func (e *Event) IsAfterHours() bool {
	h := e.Timestamp.Hour()
	return h < 8 || h > 18
}

// IsWeekend reports whether the event occurred on a Saturday or Sunday.
func (e *Event) IsWeekend() bool {
	wd := e.Timestamp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
