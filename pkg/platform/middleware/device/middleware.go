package device

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/mssola/useragent"
)

// Fingerprint parses the raw User-Agent header into a short, stable hash of
// platform/OS/browser family, so devices can be told apart without storing
// the full header value. Behavior feature #16 (§4.4) counts the event's
// device_id request field, not this fingerprint.
// An empty header yields an empty fingerprint.
func Fingerprint(rawUserAgent string) string {
	if rawUserAgent == "" {
		return ""
	}
	ua := useragent.New(rawUserAgent)
	browserName, _ := ua.Browser()
	sum := sha256.Sum256([]byte(ua.Platform() + "|" + ua.OS() + "|" + browserName))
	return hex.EncodeToString(sum[:])[:16]
}

// Middleware extracts the device id from a cookie (if present) and derives
// a fingerprint from the User-Agent header, injecting both into the request
// context ahead of the ingest and WebSocket-connect handlers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if cookie, err := r.Cookie("device_id"); err == nil {
			ctx = WithDeviceID(ctx, cookie.Value)
		}
		ctx = WithDeviceFingerprint(ctx, Fingerprint(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
