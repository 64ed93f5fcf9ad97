package domain

import dErrors "vigil/pkg/domain-errors"

// ModificationRecord is the diff between a document's baseline and a
// post-modify submission. Created only when action = modify and content is
// supplied.
type ModificationRecord struct {
	ID         string
	EventID    string
	DocumentID string

	OriginalLength int
	ModifiedLength int
	CharsAdded     int
	CharsRemoved   int
	ChangePercent  float64

	CrossDepartment bool
	RiskScore       float64
	RiskLevel       RiskLevel

	OriginalContent string
	ModifiedContent string
}

// NewModificationRecord constructs a ModificationRecord, computing
// change-percent per §3: (added+removed) / max(original_length, 1) * 100.
func NewModificationRecord(id, eventID, documentID string, original, modified string, charsAdded, charsRemoved int) (*ModificationRecord, error) {
	if id == "" || eventID == "" || documentID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "modification record requires id, event id, and document id")
	}
	originalLen := len([]rune(original))
	denom := originalLen
	if denom < 1 {
		denom = 1
	}
	changePercent := float64(charsAdded+charsRemoved) / float64(denom) * 100

	return &ModificationRecord{
		ID:              id,
		EventID:         eventID,
		DocumentID:      documentID,
		OriginalLength:  originalLen,
		ModifiedLength:  len([]rune(modified)),
		CharsAdded:      charsAdded,
		CharsRemoved:    charsRemoved,
		ChangePercent:   changePercent,
		OriginalContent: original,
		ModifiedContent: modified,
	}, nil
}
