package events

import (
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/infrastructure/monitoring"
	"github.com/cobaltdesk/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Hub broadcasts lifecycle events to connected WebSocket clients.
type Hub struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.Mutex
	clients map[*websocket.Conn]bool // Protected by mu
}

// NewHub creates a WebSocket event hub
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		logger:  logger.Named("ws"),
		clients: make(map[*websocket.Conn]bool),
	}
}

// WithMetrics adds metrics tracking to the hub
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

// HandleConnection handles WebSocket upgrade and keeps the connection
// registered until the client goes away
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.register(conn)
	defer h.unregister(conn)

	h.send(conn, types.WSMessage{
		Type:    "system",
		Message: "connected to workbench event stream",
	})

	// Read loop: only ping is expected from clients, everything else is
	// ignored; a read error means the client disconnected
	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			h.send(conn, types.WSMessage{Type: "pong"})
		}
	}
}

// Publish broadcasts an event to every connected client. Clients that fail
// to receive are dropped; delivery is best-effort.
func (h *Hub) Publish(event types.Event) {
	data, err := sonic.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("dropping unresponsive client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
	h.updateGauge()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	h.updateGauge()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	h.updateGauge()
}

func (h *Hub) send(conn *websocket.Conn, msg types.WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", zap.Error(err))
	}
}

// updateGauge must be called with mu held
func (h *Hub) updateGauge() {
	if h.metrics != nil {
		h.metrics.WSConnections.Set(float64(len(h.clients)))
	}
}
