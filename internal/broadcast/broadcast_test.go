package broadcast

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/domain"
	"vigil/internal/platform/logger"
)

type fakeAuthenticator struct {
	valid map[string]string
}

func (f *fakeAuthenticator) Validate(token string) (string, error) {
	if actorID, ok := f.valid[token]; ok {
		return actorID, nil
	}
	return "", assertionFailure{}
}

type assertionFailure struct{}

func (assertionFailure) Error() string { return "invalid token" }

func TestHub_UpgradeSendsConnectionEstablished(t *testing.T) {
	hub := New(&fakeAuthenticator{valid: map[string]string{"good-token": "actor-1"}}, nil, logger.New("error"), NewMetrics())
	server := httptest.NewServer(http.HandlerFunc(hub.HandleUpgrade))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/admin?token=good-token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageConnectionEstablished, msg.Type)
}

func TestHub_InvalidTokenClosesWithPolicyViolation(t *testing.T) {
	hub := New(&fakeAuthenticator{valid: map[string]string{}}, nil, logger.New("error"), nil)
	server := httptest.NewServer(http.HandlerFunc(hub.HandleUpgrade))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/admin?token=bad-token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close error, got %v", err)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestHub_BroadcastEventReachesConnectedSession(t *testing.T) {
	hub := New(&fakeAuthenticator{valid: map[string]string{"good-token": "actor-1"}}, nil, logger.New("error"), nil)
	server := httptest.NewServer(http.HandlerFunc(hub.HandleUpgrade))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/admin?token=good-token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var established struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&established))

	require.Eventually(t, func() bool { return hub.SessionCount() == 1 }, time.Second, 10*time.Millisecond)

	event, err := domain.NewEvent("evt-1", "actor-1", domain.DepartmentFinance, domain.ActionView, "doc-1", domain.DepartmentFinance, time.Now(), 100)
	require.NoError(t, err)
	hub.BroadcastEvent(nil, *event)

	var broadcastMsg struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&broadcastMsg))
	assert.Equal(t, MessageNewEvent, broadcastMsg.Type)
}
