package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024

	// DefaultPushInterval is how often the hub checks for a changed mapping
	DefaultPushInterval = 2 * time.Second

	// MessageTypeTree carries a TreeResponse payload
	MessageTypeTree = "mapping.tree"

	// MessageTypeRefresh asks the hub to resend the current tree
	MessageTypeRefresh = "refresh"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The page is served from the same host; other origins are allowed so
	// that dashboards can embed the feed
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger
}

// Hub pushes the mapping tree to connected clients whenever it changes
type Hub struct {
	reader   mapping.Reader
	cluster  string
	interval time.Duration
	metrics  *metrics.APIMetrics

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	refresh    chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(reader mapping.Reader, cluster string, interval time.Duration, m *metrics.APIMetrics) *Hub {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	return &Hub{
		reader:     reader,
		cluster:    cluster,
		interval:   interval,
		metrics:    m,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		refresh:    make(chan *Client, 16),
		done:       make(chan struct{}),
		log:        logger.WithComponent("websocket.hub"),
	}
}

// version identifies a mapping state worth pushing
type version struct {
	lastUpdated int64
	edges       int
}

func snapshotVersion(s mapping.Snapshot) version {
	v := version{lastUpdated: s.LastUpdated}
	for _, groups := range s.Topics {
		v.edges += len(groups)
	}
	return v
}

// Run starts the hub's main loop and returns when ctx is done, after
// disconnecting every client. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer close(h.done)

	var last version
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.metrics.SetWebSocketClients(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWebSocketClients(n)
			h.log.Debug().Str("client_id", client.id).Int("clients", n).Msg("Client registered")
			h.sendTo(client, h.treeMessage(h.reader.Snapshot()))

		case client := <-h.unregister:
			h.remove(client)

		case client := <-h.refresh:
			h.mu.RLock()
			_, ok := h.clients[client]
			h.mu.RUnlock()
			if ok {
				h.sendTo(client, h.treeMessage(h.reader.Snapshot()))
			}

		case <-ticker.C:
			snap := h.reader.Snapshot()
			v := snapshotVersion(snap)
			if v == last {
				continue
			}
			last = v
			h.broadcast(h.treeMessage(snap))
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(message []byte) {
	if message == nil {
		return
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.log.Warn().Str("client_id", client.id).Msg("Dropping slow client")
		h.remove(client)
	}
}

func (h *Hub) sendTo(client *Client, message []byte) {
	if message == nil {
		return
	}
	select {
	case client.send <- message:
	default:
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.metrics.SetWebSocketClients(n)
		h.log.Debug().Str("client_id", client.id).Int("clients", n).Msg("Client unregistered")
	}
}

func (h *Hub) treeMessage(snap mapping.Snapshot) []byte {
	payload, err := json.Marshal(NewTreeResponse(h.cluster, snap))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal tree")
		return nil
	}
	data, err := json.Marshal(WSMessage{Type: MessageTypeTree, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal WebSocket message")
		return nil
	}
	return data
}

// readPump handles refresh requests until the connection fails
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		//nolint:errcheck // Ignore close errors in defer
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn().Err(err).Msg("Failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("WebSocket error")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == MessageTypeRefresh {
			select {
			case c.hub.refresh <- c:
			case <-c.hub.done:
				return
			default:
			}
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		//nolint:errcheck // Ignore close errors in defer
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				//nolint:errcheck // the peer may already be gone
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWebSocket upgrades the request and registers the client with hub
func ServeWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}

	id := uuid.NewString()
	client := &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 16),
		log:  logger.WithComponent("websocket.client").With().Str("client_id", id).Logger(),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		//nolint:errcheck // shutting down
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
