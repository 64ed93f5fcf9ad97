package authn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IssueAndValidateAccessToken(t *testing.T) {
	svc := NewService("test-signing-key", "vigil", time.Minute, time.Hour)

	token, err := svc.IssueAccessToken("actor-1", "alice", "analyst", "FINANCE")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "actor-1", claims.ActorID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "analyst", claims.Role)
	assert.Equal(t, "FINANCE", claims.Department)
}

func TestService_ExpiredTokenRejected(t *testing.T) {
	svc := NewService("test-signing-key", "vigil", -time.Second, time.Hour)

	token, err := svc.IssueAccessToken("actor-1", "alice", "analyst", "FINANCE")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestService_RefreshTokenRejectedAsAccessToken(t *testing.T) {
	svc := NewService("test-signing-key", "vigil", time.Minute, time.Hour)

	refresh, err := svc.IssueRefreshToken("actor-1", "alice", "analyst", "FINANCE")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	require.Error(t, err)
}

func TestService_RefreshAccessToken(t *testing.T) {
	svc := NewService("test-signing-key", "vigil", time.Minute, time.Hour)

	refresh, err := svc.IssueRefreshToken("actor-1", "alice", "analyst", "FINANCE")
	require.NoError(t, err)

	newAccess, err := svc.RefreshAccessToken(refresh)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "actor-1", claims.ActorID)
	assert.Equal(t, "FINANCE", claims.Department)
}

func TestService_AccessTokenRejectedAsRefreshToken(t *testing.T) {
	svc := NewService("test-signing-key", "vigil", time.Minute, time.Hour)

	access, err := svc.IssueAccessToken("actor-1", "alice", "analyst", "FINANCE")
	require.NoError(t, err)

	_, err = svc.RefreshAccessToken(access)
	require.Error(t, err)
}
