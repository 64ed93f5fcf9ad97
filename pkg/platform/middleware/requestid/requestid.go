// Package requestid assigns a per-request id using chi's RequestID
// middleware, then republishes it under requestcontext's key so handlers
// depend only on requestcontext rather than chi directly.
package requestid

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"vigil/pkg/requestcontext"
)

// Middleware wraps next with chi's request-id assignment and context
// republishing.
func Middleware(next http.Handler) http.Handler {
	return chimiddleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithRequestID(r.Context(), chimiddleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	}))
}
