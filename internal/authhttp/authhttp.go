// Package authhttp exposes the token refresh endpoint over the Service in
// internal/authn, following the same thin-handler shape as internal/ingest.
package authhttp

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vigil/internal/authn"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// refresher is the narrow surface authhttp depends on, satisfied by
// *authn.Service.
type refresher interface {
	RefreshAccessToken(refreshToken string) (string, error)
}

// Handler serves the unauthenticated token refresh endpoint.
type Handler struct {
	service refresher
	logger  *slog.Logger
}

// New constructs an authhttp Handler.
func New(service refresher, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the refresh endpoint. It is deliberately outside the
// bearer-auth middleware chain: presenting a refresh token is how a caller
// with an expired access token gets back in.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/refresh", h.HandleRefresh)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *refreshRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.RefreshToken) == "" {
		return dErrors.New(dErrors.CodeValidation, "refresh_token is required")
	}
	return nil
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleRefresh implements the token refresh flow described in SPEC_FULL.md:
// a valid refresh token exchanges for a new access token carrying identical
// claims and a fresh expiry, without re-authenticating credentials.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[refreshRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	accessToken, err := h.service.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "token refresh failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, refreshResponse{AccessToken: accessToken, TokenType: "Bearer"})
}
