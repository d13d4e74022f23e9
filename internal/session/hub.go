package session

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"plantfinder/pkg/logger"
)

const (
	writeWait  = 2 * time.Second
	sendBuffer = 16
)

// subscriber is one websocket connection. Only its writer goroutine touches
// conn for writing; the hub hands it frames through send.
type subscriber struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.send) })
}

// Hub tracks websocket subscribers per session. Broadcast never blocks on
// the network: a subscriber whose queue is full is disconnected.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
	log  *zap.Logger
}

type HubStats struct {
	Sessions int `json:"sessions"`
	Clients  int `json:"ws_clients"`
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[*subscriber]struct{}),
		log:  logger.OrNop(log).With(zap.String("component", "ws")),
	}
}

// Add registers ws under sessionID, queues the initial state and starts the
// connection's writer.
func (h *Hub) Add(sessionID string, ws *websocket.Conn, initial any) *subscriber {
	sub := newSubscriber(ws)

	h.mu.Lock()
	h.register(sessionID, sub)
	if b, err := json.Marshal(initial); err == nil {
		sub.send <- b
	}
	h.mu.Unlock()

	go h.writePump(sessionID, sub)
	return sub
}

func (h *Hub) Remove(sessionID string, sub *subscriber) {
	h.mu.Lock()
	h.drop(sessionID, sub)
	h.mu.Unlock()
}

func (h *Hub) Broadcast(sessionID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("marshal broadcast", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[sessionID] {
		select {
		case sub.send <- b:
		default:
			h.log.Warn("ws subscriber too slow, disconnecting", zap.String("session_id", sessionID))
			h.drop(sessionID, sub)
		}
	}
}

// CloseSession disconnects every subscriber of sessionID.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[sessionID] {
		h.drop(sessionID, sub)
	}
}

func (h *Hub) Stats() HubStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := HubStats{Sessions: len(h.subs)}
	for _, subs := range h.subs {
		st.Clients += len(subs)
	}
	return st
}

// register must be called with h.mu held.
func (h *Hub) register(sessionID string, sub *subscriber) {
	subs, ok := h.subs[sessionID]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.subs[sessionID] = subs
	}
	subs[sub] = struct{}{}
}

// drop must be called with h.mu held. The writer sees the closed queue,
// sends a close frame and closes the connection.
func (h *Hub) drop(sessionID string, sub *subscriber) {
	subs, ok := h.subs[sessionID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subs, sessionID)
	}
	sub.close()
}

func (h *Hub) writePump(sessionID string, sub *subscriber) {
	defer func() { _ = sub.conn.Close() }()

	for b := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug("ws write failed", zap.String("session_id", sessionID), zap.Error(err))
			h.Remove(sessionID, sub)
			for range sub.send {
				// drain until drop closes the queue
			}
			return
		}
	}

	_ = sub.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
		time.Now().Add(writeWait))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin checks are left to the fronting proxy
	},
}

// WSHandler streams the session's state. It must run behind
// SessionMiddleware.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := MustGetClaims(c)
		facade := MustGetFacade(c)
		if claims == nil || facade == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		sid := claims.SessionID
		sub := hub.Add(sid, ws, facade.State())
		hub.log.Debug("client connected", zap.String("session_id", sid))

		// incoming messages are ignored; reading detects the close
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(sid, sub)
		hub.log.Debug("client disconnected", zap.String("session_id", sid))
	}
}
