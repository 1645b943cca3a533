package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/colo-planner-core/internal/audit"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/config"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/logging"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
	"github.com/nerrad567/colo-planner-core/internal/workspace"
)

// Client message types.
const (
	WSTypeHello    = "hello"
	WSTypeDevice   = "device"
	WSTypeMode     = "mode"
	WSTypeZoom     = "zoom"
	WSTypeDemand   = "demand"
	WSTypeAssign   = "assign"
	WSTypeUnassign = "unassign"
	WSTypeOverlays = "overlays"
	WSTypeOrigin   = "origin"
	WSTypeClear    = "clear"
	WSTypePing     = "ping"
)

// Server message types.
const (
	WSTypeWelcome    = "welcome"
	WSTypeSelection  = "selection"
	WSTypeScroll     = "scroll"
	WSTypeCommitted  = "committed"
	WSTypeAssignment = "assignment"
	WSTypeResponse   = "response"
	WSTypePong       = "pong"
	WSTypeError      = "error"
)

// wsSendBufferSize is the per-client outbound buffer when the config sets none.
const wsSendBufferSize = 256

// WSMessage is a message sent to or from a WebSocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSHelloPayload opens a gesture session on a colo.
type WSHelloPayload struct {
	ColoID string `json:"coloId"`
	// PointerEvents reports whether the client delivers pointer events.
	// Absent means the configured default.
	PointerEvents     *bool           `json:"pointerEvents,omitempty"`
	ClientOrigin      tilespace.Point `json:"clientOrigin"`
	Overlays          string          `json:"overlays,omitempty"`
	SelectionDisabled bool            `json:"selectionDisabled,omitempty"`
}

// WSWelcomePayload answers hello.
type WSWelcomePayload struct {
	Session workspace.State `json:"session"`
	View    overlay.View    `json:"view"`
}

// WSAssignmentPayload is broadcast to a colo's clients when an assignment
// event arrives over MQTT.
type WSAssignmentPayload struct {
	ColoID  string `json:"coloId"`
	TileID  int64  `json:"tileId"`
	OrderID string `json:"orderId,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

// Hub tracks connected WebSocket clients.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	clients map[*WSClient]struct{}
	mu      sync.RWMutex
}

// WSClient is one connected WebSocket client and its gesture session.
type WSClient struct {
	hub    *Hub
	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu      sync.RWMutex
	session *workspace.Session
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// Unregister removes a client from the hub.
// Only the goroutine that removes the client from the map closes its send
// channel.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// Broadcast sends a message to every client with a session on coloID and
// returns the number of recipients.
func (h *Hub) Broadcast(coloID, msgType string, payload any) int {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return 0
	}

	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		if client.coloID() == coloID {
			client.trySend(data)
			sent++
		}
	}
	return sent
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

// subscribeAssignments forwards assignment events from MQTT to the
// sessions of the named colo and to its WebSocket clients.
func (s *Server) subscribeAssignments() error {
	if s.mqtt == nil {
		return nil
	}
	topics := mqtt.Topics{}
	qos := byte(1)

	if err := s.mqtt.Subscribe(topics.AllAssignmentAdds(), qos, s.handleAssignmentMessage); err != nil {
		return err
	}
	if err := s.mqtt.Subscribe(topics.AllAssignmentRemoves(), qos, s.handleAssignmentMessage); err != nil {
		return err
	}
	s.logger.Info("subscribed to assignment events",
		"add", topics.AllAssignmentAdds(),
		"remove", topics.AllAssignmentRemoves(),
	)
	return nil
}

// handleAssignmentMessage applies one assignment event. Malformed events
// are logged and dropped.
func (s *Server) handleAssignmentMessage(topic string, payload []byte) error {
	coloID, kind, ok := mqtt.ParseColoTopic(topic)
	if !ok {
		s.logger.Debug("ignoring message on unexpected topic", "topic", topic)
		return nil
	}

	switch kind {
	case mqtt.KindAssignmentAdd:
		a, err := reservation.DecodeAssignment(payload)
		if err != nil {
			s.logger.Warn("dropping assignment event", "topic", topic, "error", err)
			return nil
		}
		n := s.sessions.Assign(coloID, a)
		s.recordChange(context.Background(), audit.Entry{
			Action:  audit.ActionAssign,
			ColoID:  coloID,
			Source:  audit.SourceMQTT,
			Details: map[string]any{"tileId": a.TileID, "orderId": a.OrderID},
		})
		s.hub.Broadcast(coloID, WSTypeAssignment, WSAssignmentPayload{ColoID: coloID, TileID: a.TileID, OrderID: a.OrderID})
		s.logger.Debug("assignment applied", "colo_id", coloID, "tile_id", a.TileID, "order_id", a.OrderID, "sessions", n)
	case mqtt.KindAssignmentRemove:
		tileID, err := reservation.DecodeUnassignment(payload)
		if err != nil {
			s.logger.Warn("dropping unassignment event", "topic", topic, "error", err)
			return nil
		}
		n := s.sessions.Unassign(coloID, tileID)
		s.recordChange(context.Background(), audit.Entry{
			Action:  audit.ActionUnassign,
			ColoID:  coloID,
			Source:  audit.SourceMQTT,
			Details: map[string]any{"tileId": tileID},
		})
		s.hub.Broadcast(coloID, WSTypeAssignment, WSAssignmentPayload{ColoID: coloID, TileID: tileID, Removed: true})
		s.logger.Debug("assignment removed", "colo_id", coloID, "tile_id", tileID, "sessions", n)
	default:
		s.logger.Debug("ignoring colo event", "topic", topic, "kind", kind)
	}
	return nil
}

// handleWebSocket upgrades the connection. The client opens a gesture
// session by sending hello.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	buffer := s.wsCfg.SendBuffer
	if buffer <= 0 {
		buffer = wsSendBufferSize
	}
	client := &WSClient{
		hub:    s.hub,
		server: s,
		conn:   conn,
		send:   make(chan []byte, buffer),
	}

	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump reads messages until the connection fails, then closes the
// client's session.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.closeSession()
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	}
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.handleMessage(message)
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues data without blocking. Messages to a closed or full
// client are dropped.
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
	}
}

// sendResponse sends a message to the client.
func (c *WSClient) sendResponse(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

// sendError sends an error message to the client.
func (c *WSClient) sendError(id, message string) {
	c.sendResponse(id, WSTypeError, map[string]string{"message": message})
}

// sendEvent relays a session event. It runs under the session lock and
// only queues.
func (c *WSClient) sendEvent(ev workspace.Event) {
	var payload any
	switch ev.Kind {
	case workspace.EventSelection:
		payload = ev.Selection
	case workspace.EventScroll:
		payload = ev.Scroll
	case workspace.EventCommitted:
		payload = ev.Committed
	default:
		return
	}
	c.sendResponse("", string(ev.Kind), payload)
}

func (c *WSClient) currentSession() *workspace.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *WSClient) coloID() string {
	if s := c.currentSession(); s != nil {
		return s.ColoID()
	}
	return ""
}

// closeSession closes the client's session, if any.
func (c *WSClient) closeSession() {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()

	if sess != nil {
		//nolint:errcheck // shutdown may have closed it already
		c.server.sessions.Close(sess.ID())
	}
}
