package domain

import dErrors "vigil/pkg/domain-errors"

// Document is a named content artifact under monitoring.
//
// Invariants: BaselineHash never mutates after creation; Tampered ⇔
// CurrentHash != BaselineHash; SensitivityMismatch ⇔ DeclaredSensitivity !=
// PredictedSensitivity.
type Document struct {
	ID         string
	Filename   string
	Department Department

	DeclaredSensitivity  Sensitivity
	PredictedSensitivity Sensitivity
	PredictedConfidence  float64
	SensitivityMismatch  bool

	BaselineHash    string
	CurrentHash     string
	BaselineContent string
	CurrentContent  string

	Tampered       bool
	TamperSeverity TamperSeverity
	SizeBytes      int64
}

// NewDocument constructs a Document at registration time, computing the
// initial sensitivity-mismatch flag. BaselineHash and CurrentHash start
// identical; CurrentContent mirrors BaselineContent until the next modify.
func NewDocument(id, filename string, department Department, declared Sensitivity, baselineHash, baselineContent string, sizeBytes int64) (*Document, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document id cannot be empty")
	}
	if !declared.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid declared sensitivity")
	}
	return &Document{
		ID:                   id,
		Filename:             filename,
		Department:           department,
		DeclaredSensitivity:  declared,
		PredictedSensitivity: declared,
		PredictedConfidence:  1.0,
		BaselineHash:         baselineHash,
		CurrentHash:          baselineHash,
		BaselineContent:      baselineContent,
		CurrentContent:       baselineContent,
		TamperSeverity:       TamperSeverityNone,
		SizeBytes:            sizeBytes,
	}, nil
}

// ApplyClassification records the classifier's predicted sensitivity and
// recomputes the mismatch flag.
func (d *Document) ApplyClassification(predicted Sensitivity, confidence float64) {
	d.PredictedSensitivity = predicted
	d.PredictedConfidence = confidence
	d.SensitivityMismatch = d.DeclaredSensitivity != predicted
}

// ApplyIntegrityResult records a verification outcome and recomputes the
// tampered flag from the hash comparison, keeping the invariant explicit
// at the single call site rather than scattered across the worker.
func (d *Document) ApplyIntegrityResult(currentHash, currentContent string, severity TamperSeverity, sizeBytes int64) {
	d.CurrentHash = currentHash
	d.CurrentContent = currentContent
	d.Tampered = currentHash != d.BaselineHash
	d.TamperSeverity = severity
	d.SizeBytes = sizeBytes
}
