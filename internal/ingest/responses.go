package ingest

import "time"

// Response is the HTTP response for POST /events/ingest (§6). Every scored
// field is a placeholder until the worker processes the event
// asynchronously; canonical values are retrievable via a later read
// endpoint, out of this core's scope.
type Response struct {
	EventID           string    `json:"event_id"`
	Timestamp         time.Time `json:"timestamp"`
	RiskScore         float64   `json:"risk_score"`
	RiskLevel         string    `json:"risk_level"`
	Severity          string    `json:"severity"`
	RequiresAlert     bool      `json:"requires_alert"`
	WarningMessage    string    `json:"warning_message,omitempty"`
	BehaviorScore     float64   `json:"behavior_score"`
	SensitivityScore  float64   `json:"sensitivity_score"`
	IntegrityScore    float64   `json:"integrity_score"`
	IsCrossDepartment bool      `json:"is_cross_department"`
	IsAnomalous       bool      `json:"is_anomalous"`
}
