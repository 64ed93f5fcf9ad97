package ingest

import (
	"strings"

	"vigil/internal/domain"
	dErrors "vigil/pkg/domain-errors"
)

// Request is the HTTP request body for POST /events/ingest (§4.1).
type Request struct {
	DocumentID          string `json:"document_id"`
	DocumentName        string `json:"document_name"`
	TargetDepartment    string `json:"target_department"`
	Action              string `json:"action"`
	BytesTransferred    int64  `json:"bytes_transferred"`
	SourceIP            string `json:"source_ip,omitempty"`
	DeviceID            string `json:"device_id,omitempty"`
	SessionID           string `json:"session_id,omitempty"`
	Content             string `json:"content,omitempty"`
	DeclaredSensitivity string `json:"declared_sensitivity,omitempty"`

	parsedAction              domain.Action
	parsedTargetDepartment    domain.Department
	parsedDeclaredSensitivity domain.Sensitivity
}

// Validate implements httputil.Validatable: parses and validates every
// enum field, and requires content for actions that carry it (§4.1).
func (r *Request) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.DocumentID = strings.TrimSpace(r.DocumentID)
	if r.DocumentID == "" {
		return dErrors.New(dErrors.CodeValidation, "document_id is required")
	}

	if r.BytesTransferred < 0 {
		return dErrors.New(dErrors.CodeValidation, "bytes_transferred cannot be negative")
	}

	action, err := domain.ParseAction(strings.TrimSpace(r.Action))
	if err != nil {
		return err
	}
	r.parsedAction = action

	targetDept, err := domain.ParseDepartment(strings.TrimSpace(r.TargetDepartment))
	if err != nil {
		return err
	}
	r.parsedTargetDepartment = targetDept

	if action.RequiresContent() && strings.TrimSpace(r.Content) == "" {
		return dErrors.New(dErrors.CodeValidation, "content is required for upload/modify actions")
	}

	if r.DeclaredSensitivity != "" {
		sensitivity, err := domain.ParseSensitivity(strings.TrimSpace(r.DeclaredSensitivity))
		if err != nil {
			return err
		}
		r.parsedDeclaredSensitivity = sensitivity
	}

	return nil
}
