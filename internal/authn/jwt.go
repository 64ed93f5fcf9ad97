// Package authn issues and validates the bearer tokens described in spec §6:
// claims carry {actor_id, username, role, department, exp}; a refresh token
// exchanges for a new access token with identical claims and a fresh expiry,
// grounded on the teacher's internal/jwt_token package.
package authn

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "vigil/pkg/domain-errors"
)

// Claims is the payload carried by both access and refresh tokens. Refresh
// tokens set TokenUse="refresh" so a refresh token presented at the ingest
// or WebSocket endpoints is rejected as the wrong token type.
type Claims struct {
	ActorID    string `json:"actor_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Department string `json:"department"`
	TokenUse   string `json:"token_use"`
	jwt.RegisteredClaims
}

// Service issues and validates HMAC-signed access/refresh token pairs.
type Service struct {
	signingKey     []byte
	issuer         string
	accessExpiry   time.Duration
	refreshExpiry  time.Duration
}

// NewService constructs a token Service.
func NewService(signingKey, issuer string, accessExpiry, refreshExpiry time.Duration) *Service {
	return &Service{
		signingKey:    []byte(signingKey),
		issuer:        issuer,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// IssueAccessToken mints a signed access token for the given identity.
func (s *Service) IssueAccessToken(actorID, username, role, department string) (string, error) {
	return s.issue(actorID, username, role, department, "access", s.accessExpiry)
}

// IssueRefreshToken mints a signed refresh token carrying the same claims.
func (s *Service) IssueRefreshToken(actorID, username, role, department string) (string, error) {
	return s.issue(actorID, username, role, department, "refresh", s.refreshExpiry)
}

func (s *Service) issue(actorID, username, role, department, use string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ActorID:    actorID,
		Username:   username,
		Role:       role,
		Department: department,
		TokenUse:   use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies tokenString, returning its claims. Any
// parse failure, signature mismatch, or expiry is surfaced as a domain
// AuthenticationError (§7).
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateAccessToken validates tokenString and additionally rejects refresh
// tokens presented where an access token is required.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse == "refresh" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "refresh token presented where access token required")
	}
	return claims, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token
// with identical claims and a fresh expiry, without re-authenticating
// credentials (spec §6's token refresh flow, supplemented per SPEC_FULL.md).
func (s *Service) RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenUse != "refresh" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "access token presented where refresh token required")
	}
	return s.IssueAccessToken(claims.ActorID, claims.Username, claims.Role, claims.Department)
}
