package authn

import (
	authmw "vigil/pkg/platform/middleware/auth"
)

// ValidatorAdapter adapts Service to the narrow auth.Validator interface the
// shared HTTP/WebSocket authentication middleware depends on, so that
// package stays free of a direct dependency on the JWT library.
type ValidatorAdapter struct {
	service *Service
}

// NewValidatorAdapter wraps service for use as an auth.Validator.
func NewValidatorAdapter(service *Service) *ValidatorAdapter {
	return &ValidatorAdapter{service: service}
}

// ValidateToken implements auth.Validator.
func (a *ValidatorAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{
		ActorID:    claims.ActorID,
		Username:   claims.Username,
		Role:       claims.Role,
		Department: claims.Department,
		JTI:        claims.ID,
	}, nil
}

// Validate implements the broadcast hub's narrower Authenticator interface
// (actor id only, no revocation check — the admin websocket channel accepts
// the same access tokens the HTTP auth middleware does but does not layer
// the Redis revocation lookup over the upgrade handshake).
func (a *ValidatorAdapter) Validate(tokenString string) (string, error) {
	claims, err := a.service.ValidateAccessToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.ActorID, nil
}
