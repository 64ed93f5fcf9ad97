// Package behavior maintains the per-actor 24-hour event history and scores
// each new event for anomalousness against it (§4.4).
package behavior

import (
	"time"

	"vigil/internal/domain"
)

// FeatureCount is the fixed width of the behavioral feature vector.
const FeatureCount = 16

// FeatureVector is the 16-dimension numeric vector extracted from (new
// event, history), in the fixed order spec'd by §4.4.
type FeatureVector [FeatureCount]float64

const (
	featEventCount24h = iota
	featBytesMB
	featDistinctDocuments
	featIsAfterHours
	featIsWeekend
	featHourOfDay
	featCrossDeptCount
	featCrossDeptRatio
	featDownloadCount
	featModifyCount
	featViewCount
	featConfidentialCount
	featInternalCount
	featAvgSessionSeconds
	featUniqueSourceIPs
	featUniqueDevices
)

// Entry is one event retained in an actor's rolling window, enriched with
// the document sensitivity known at the time it was scored (the persisted
// Event itself carries no sensitivity field — that belongs to the
// Document, not the append-only event log).
type Entry struct {
	Event               domain.Event
	DocumentSensitivity domain.Sensitivity
}

// ExtractFeatures builds the fixed-order feature vector for current from
// the window of entries preceding it (strictly within the last 24h, not
// including current itself — current is folded in explicitly per feature).
func ExtractFeatures(current Entry, window []Entry) FeatureVector {
	var f FeatureVector

	f[featEventCount24h] = float64(len(window) + 1)

	var totalBytes int64
	distinctDocs := map[string]bool{current.Event.DocumentID: true}
	crossDept := 0
	downloads, modifies, views := 0, 0, 0
	confidential, internalCount := 0, 0
	sourceIPs := map[string]bool{}
	devices := map[string]bool{}
	sessionSpans := map[string][2]time.Time // sessionID -> [first, last]

	accumulate := func(e Entry) {
		totalBytes += e.Event.BytesTransferred
		distinctDocs[e.Event.DocumentID] = true
		if e.Event.CrossDepartment {
			crossDept++
		}
		switch e.Event.Action {
		case domain.ActionDownload:
			downloads++
		case domain.ActionModify:
			modifies++
		case domain.ActionView:
			views++
		}
		if e.DocumentSensitivity == domain.SensitivityConfidential {
			confidential++
		} else if e.DocumentSensitivity == domain.SensitivityInternal {
			internalCount++
		}
		if e.Event.SourceIP != "" {
			sourceIPs[e.Event.SourceIP] = true
		}
		if e.Event.DeviceID != "" {
			devices[e.Event.DeviceID] = true
		}
		if e.Event.SessionID != "" {
			span, ok := sessionSpans[e.Event.SessionID]
			if !ok {
				sessionSpans[e.Event.SessionID] = [2]time.Time{e.Event.Timestamp, e.Event.Timestamp}
				return
			}
			if e.Event.Timestamp.Before(span[0]) {
				span[0] = e.Event.Timestamp
			}
			if e.Event.Timestamp.After(span[1]) {
				span[1] = e.Event.Timestamp
			}
			sessionSpans[e.Event.SessionID] = span
		}
	}

	for _, e := range window {
		accumulate(e)
	}
	accumulate(current)

	windowSize := len(window) + 1

	f[featBytesMB] = float64(totalBytes) / (1024 * 1024)
	f[featDistinctDocuments] = float64(len(distinctDocs))
	if current.Event.IsAfterHours() {
		f[featIsAfterHours] = 1
	}
	if current.Event.IsWeekend() {
		f[featIsWeekend] = 1
	}
	f[featHourOfDay] = float64(current.Event.Timestamp.Hour())
	f[featCrossDeptCount] = float64(crossDept)
	f[featCrossDeptRatio] = float64(crossDept) / float64(maxInt(windowSize, 1))
	f[featDownloadCount] = float64(downloads)
	f[featModifyCount] = float64(modifies)
	f[featViewCount] = float64(views)
	f[featConfidentialCount] = float64(confidential)
	f[featInternalCount] = float64(internalCount)
	f[featAvgSessionSeconds] = averageSessionSeconds(sessionSpans)
	f[featUniqueSourceIPs] = float64(len(sourceIPs))
	f[featUniqueDevices] = float64(len(devices))

	return f
}

func averageSessionSeconds(spans map[string][2]time.Time) float64 {
	if len(spans) == 0 {
		return 0
	}
	var total float64
	var counted int
	for _, span := range spans {
		d := span[1].Sub(span[0]).Seconds()
		if d <= 0 {
			continue
		}
		total += d
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
