// Package broadcast implements the admin WebSocket channel of §4.9:
// GET /ws/admin?token=<bearer> upgrades to a bidirectional JSON-over-text
// connection carrying scored events and alerts to connected analysts.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vigil/internal/audittrail"
	"vigil/internal/domain"
)

// Message types carried over the channel (§6).
const (
	MessageConnectionEstablished = "connection_established"
	MessageNewEvent              = "new_event"
	MessageNewAlert              = "new_alert"
	MessageSystemStatus          = "system_status"
	MessagePong                  = "pong"
)

// Client message types the server recognizes.
const (
	clientMessagePing      = "ping"
	clientMessageSubscribe = "subscribe"
)

// writeTimeout bounds how long one session's write may block before it is
// considered failing and dropped.
const writeTimeout = 5 * time.Second

// outboundBuffer is the per-session outbound queue depth; a message for a
// session whose queue is full is dropped rather than backing up the whole hub.
const outboundBuffer = 32

// envelope is the wire shape of every server-to-client message.
type envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Authenticator validates a bearer token extracted from the query string
// and returns the authenticated actor id, matching the narrow surface
// pkg/platform/middleware/auth.Validator exposes over HTTP.
type Authenticator interface {
	Validate(token string) (actorID string, err error)
}

// Metrics is the narrow observability surface the hub reports to.
type Metrics interface {
	IncrementConnected()
	IncrementDisconnected()
	IncrementDropped(reason string)
	IncrementBroadcast(messageType string)
}

// session is one connected admin's outbound channel and underlying socket.
type session struct {
	conn    *websocket.Conn
	actorID string
	outbox  chan envelope
}

// Hub tracks connected admin sessions and fans out scored events and
// alerts to all of them. Failing sessions are removed silently (§4.9).
type Hub struct {
	mu       sync.RWMutex
	sessions map[*session]struct{}

	auth     Authenticator
	auditor  *audittrail.Publisher
	logger   *slog.Logger
	metrics  Metrics
	upgrader websocket.Upgrader
}

// New constructs a Hub. auth may be nil only in tests that bypass
// HandleUpgrade and call registration helpers directly; auditor may be nil.
func New(auth Authenticator, auditor *audittrail.Publisher, logger *slog.Logger, metrics Metrics) *Hub {
	return &Hub{
		sessions: make(map[*session]struct{}),
		auth:     auth,
		auditor:  auditor,
		logger:   logger,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Admin dashboards are served cross-origin from an internal
			// console in practice; origin enforcement belongs to the
			// reverse proxy in front of this service, not here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleUpgrade implements GET /ws/admin?token=<bearer>. On auth failure the
// connection is upgraded then immediately closed with code 1008, per §6 —
// the close code is the only signal available once the HTTP upgrade has
// already committed its response.
func (h *Hub) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	actorID := ""
	if h.auth != nil {
		id, err := h.auth.Validate(token)
		if err != nil {
			actorID = ""
		} else {
			actorID = id
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	if actorID == "" {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication required"),
			time.Now().Add(writeTimeout))
		_ = conn.Close()
		return
	}

	h.serve(conn, actorID)
}

func (h *Hub) serve(conn *websocket.Conn, actorID string) {
	sess := &session{conn: conn, actorID: actorID, outbox: make(chan envelope, outboundBuffer)}
	h.register(sess)
	defer h.unregister(sess)

	if h.metrics != nil {
		h.metrics.IncrementConnected()
	}

	h.send(sess, MessageConnectionEstablished, map[string]string{"actor_id": actorID})

	done := make(chan struct{})
	go h.writeLoop(sess, done)
	h.readLoop(sess)
	close(done)
}

// writeLoop drains sess.outbox onto the socket until done is closed or a
// write fails, at which point the session is torn down from readLoop's
// side via connection close.
func (h *Hub) writeLoop(sess *session, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg, ok := <-sess.outbox:
			if !ok {
				return
			}
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sess.conn.WriteJSON(msg); err != nil {
				_ = sess.conn.Close()
				return
			}
		}
	}
}

// readLoop blocks reading client frames (ping/subscribe) until the
// connection closes or errors, then returns so serve can clean up.
func (h *Hub) readLoop(sess *session) {
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := sess.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case clientMessagePing:
			h.send(sess, MessagePong, nil)
		case clientMessageSubscribe:
			// Subscription scoping (per-department, per-risk-level filters)
			// is not modeled here; every session receives every broadcast.
		}
	}
}

func (h *Hub) register(sess *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sess] = struct{}{}
}

func (h *Hub) unregister(sess *session) {
	h.mu.Lock()
	delete(h.sessions, sess)
	h.mu.Unlock()
	close(sess.outbox)
	_ = sess.conn.Close()
	if h.metrics != nil {
		h.metrics.IncrementDisconnected()
	}
}

func (h *Hub) send(sess *session, messageType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	select {
	case sess.outbox <- envelope{Type: messageType, Data: raw, Timestamp: time.Now()}:
	default:
		// Session can't keep up; drop the message rather than block the hub.
		if h.metrics != nil {
			h.metrics.IncrementDropped("slow_consumer")
		}
		if h.auditor != nil {
			h.auditor.PublishBroadcastDrop(context.Background(), "slow_consumer: actor_id="+sess.actorID+" type="+messageType)
		}
	}
}

// BroadcastEvent fans a scored event out to every connected session
// (§4.3 step 8, §4.9 new_event).
func (h *Hub) BroadcastEvent(_ context.Context, event domain.Event) {
	h.fanOut(MessageNewEvent, event)
}

// BroadcastAlert fans a newly created alert out to every connected session
// (§4.9 new_alert).
func (h *Hub) BroadcastAlert(_ context.Context, alert domain.Alert) {
	h.fanOut(MessageNewAlert, alert)
}

// BroadcastSystemStatus fans a queue/worker health snapshot out to every
// connected session (§4.9 system_status).
func (h *Hub) BroadcastSystemStatus(status any) {
	h.fanOut(MessageSystemStatus, status)
}

func (h *Hub) fanOut(messageType string, data any) {
	h.mu.RLock()
	sessions := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		h.send(s, messageType, data)
	}
	if h.metrics != nil {
		h.metrics.IncrementBroadcast(messageType)
	}
}

// SessionCount reports the number of currently connected admin sessions,
// for observability.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
