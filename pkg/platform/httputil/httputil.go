// Package httputil provides small handler-boundary helpers shared across
// the HTTP transport: JSON encoding, error translation, and request decoding
// with validation baked in.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "vigil/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var codeStatus = map[dErrors.Code]int{
	dErrors.CodeBadRequest:   http.StatusBadRequest,
	dErrors.CodeValidation:   http.StatusBadRequest,
	dErrors.CodeUnauthorized: http.StatusUnauthorized,
	dErrors.CodeForbidden:    http.StatusForbidden,
	dErrors.CodeNotFound:     http.StatusNotFound,
	dErrors.CodeAdmission:    http.StatusServiceUnavailable,
	dErrors.CodeInternal:     http.StatusInternalServerError,
}

// WriteError translates a domain error into an HTTP response. Internal
// errors never leak their message to the caller; all other codes surface
// their message as error_description.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": string(dErrors.CodeInternal),
		})
		return
	}

	status, ok := codeStatus[de.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	if de.Code == dErrors.CodeInternal {
		WriteJSON(w, status, map[string]string{"error": string(de.Code)})
		return
	}

	WriteJSON(w, status, map[string]string{
		"error":             string(de.Code),
		"error_description": de.Message,
	})
}

// Validatable is implemented by request DTOs that can validate and parse
// themselves from the raw decoded JSON shape.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the JSON request body into T, calls Validate,
// and writes an error response on any failure. ok is false if the caller
// should return immediately.
func DecodeAndPrepare[T Validatable](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body", "error", err, "request_id", requestID)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		var zero T
		return zero, false
	}

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed", "error", err, "request_id", requestID)
		WriteError(w, err)
		var zero T
		return zero, false
	}

	return req, true
}
