// Package integrity compares current document content against its
// registered baseline and classifies tamper severity (§4.6).
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"math"

	"vigil/internal/domain"
)

// SemanticSimilarity is the optional cosine-similarity-over-embeddings
// backend (§4.6 tier 2). A runtime failure (returned error) must be
// swallowed by the caller, which falls back to the size-delta heuristic.
type SemanticSimilarity interface {
	Similarity(baseline, current string) (float64, error)
}

// Result is the integrity verifier's output for one (document, content)
// pair.
type Result struct {
	HashMatch          bool
	IsTampered         bool
	Severity           domain.TamperSeverity
	SemanticSimilarity float64 // 0 if not computed
	SizeDeltaBytes     int64
	CurrentHash        string
}

// Verifier runs the §4.6 algorithm.
type Verifier struct {
	semantic SemanticSimilarity
}

// NewVerifier constructs a Verifier. semantic may be nil, in which case
// severity always falls back to the size-delta heuristic.
func NewVerifier(semantic SemanticSimilarity) *Verifier {
	return &Verifier{semantic: semantic}
}

// Hash returns the SHA-256 hex digest of content (§4.6, and the baseline
// registration round-trip property in §8).
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Verify compares currentContent against the registered baseline. If
// baselineContent is empty (not available) but the hash still mismatches,
// severity is "unknown" per §4.6.
func (v *Verifier) Verify(baselineHash, baselineContent, currentContent string) Result {
	currentHash := Hash(currentContent)
	hashMatch := currentHash == baselineHash
	sizeDelta := int64(len(currentContent)) - int64(len(baselineContent))

	if hashMatch {
		return Result{
			HashMatch:      true,
			IsTampered:     false,
			Severity:       domain.TamperSeverityNone,
			SizeDeltaBytes: sizeDelta,
			CurrentHash:    currentHash,
		}
	}

	if baselineContent == "" {
		return Result{
			HashMatch:      false,
			IsTampered:     true,
			Severity:       domain.TamperSeverityUnknown,
			SizeDeltaBytes: sizeDelta,
			CurrentHash:    currentHash,
		}
	}

	if v.semantic != nil {
		if similarity, err := v.semantic.Similarity(baselineContent, currentContent); err == nil {
			return Result{
				HashMatch:          false,
				IsTampered:         true,
				Severity:           severityFromSimilarity(similarity),
				SemanticSimilarity: similarity,
				SizeDeltaBytes:     sizeDelta,
				CurrentHash:        currentHash,
			}
		}
		// Semantic backend failed at runtime: fall back to size-delta silently.
	}

	return Result{
		HashMatch:      false,
		IsTampered:     true,
		Severity:       severityFromSizeDelta(sizeDelta, len(baselineContent)),
		SizeDeltaBytes: sizeDelta,
		CurrentHash:    currentHash,
	}
}

func severityFromSimilarity(s float64) domain.TamperSeverity {
	switch {
	case s > 0.95:
		return domain.TamperSeverityMinor
	case s > 0.85:
		return domain.TamperSeverityModerate
	default:
		return domain.TamperSeverityMajor
	}
}

func severityFromSizeDelta(delta int64, baselineSize int) domain.TamperSeverity {
	if baselineSize == 0 {
		return domain.TamperSeverityMajor
	}
	ratio := math.Abs(float64(delta)) / float64(baselineSize)
	switch {
	case ratio < 0.05:
		return domain.TamperSeverityMinor
	case ratio < 0.20:
		return domain.TamperSeverityModerate
	default:
		return domain.TamperSeverityMajor
	}
}
