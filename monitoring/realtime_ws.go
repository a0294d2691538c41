package monitoring

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type MessageType string

const (
	MessagePrediction MessageType = "prediction"
	MessageHeartbeat  MessageType = "heartbeat"
)

const (
	defaultHeartbeat = 30 * time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
	maxClientMessage = 512
	sendBuffer       = 64
)

var ErrHubStopped = errors.New("prediction feed stopped")

// Message is the envelope pushed to feed subscribers.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub fans prediction events out to websocket subscribers. Subscribers only listen;
// anything they send is read and discarded so close frames and pongs are processed.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	heartbeat  time.Duration
	stopped    chan struct{}
}

// NewHub creates a hub accepting connections from allowedOrigins ("*" allows any).
// Requests without an Origin header are always accepted.
func NewHub(logger *zap.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger,
		heartbeat:  defaultHeartbeat,
		stopped:    make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Run serves the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeat)
	defer func() {
		ticker.Stop()
		h.mu.Lock()
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.mu.Unlock()
		WebSocketClients.Set(0)
		close(h.stopped)
		h.logger.Info("prediction feed stopped")
	}()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			WebSocketClients.Set(float64(total))
			h.logger.Debug("feed client connected", zap.String("client_id", c.id), zap.Int("clients", total))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			WebSocketClients.Set(float64(total))
			h.logger.Debug("feed client disconnected", zap.String("client_id", c.id), zap.Int("clients", total))

		case payload := <-h.broadcast:
			h.fanOut(payload)

		case <-ticker.C:
			payload, err := encodeMessage(MessageHeartbeat, nil)
			if err != nil {
				h.logger.Warn("encode heartbeat", zap.Error(err))
				continue
			}
			h.fanOut(payload)

		case <-ctx.Done():
			return
		}
	}
}

// fanOut drops clients whose buffer is full rather than blocking the hub.
func (h *Hub) fanOut(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			close(c.send)
			delete(h.clients, c)
			h.logger.Warn("dropping slow feed client", zap.String("client_id", c.id))
		}
	}
	WebSocketClients.Set(float64(len(h.clients)))
}

// Broadcast queues data for every subscriber. It never blocks; when the queue is full the event is dropped.
func (h *Hub) Broadcast(msgType MessageType, data any) error {
	payload, err := encodeMessage(msgType, data)
	if err != nil {
		return err
	}
	select {
	case <-h.stopped:
		return ErrHubStopped
	default:
	}
	select {
	case h.broadcast <- payload:
		return nil
	default:
		h.logger.Warn("prediction feed queue full, dropping message", zap.String("type", string(msgType)))
		return nil
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and subscribes the connection to the feed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.stopped:
		http.Error(w, ErrHubStopped.Error(), http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), id: uuid.NewString()}
	select {
	case h.register <- c:
	case <-h.stopped:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxClientMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("feed client read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func encodeMessage(msgType MessageType, data any) ([]byte, error) {
	msg := Message{Type: msgType, ID: uuid.NewString(), Timestamp: time.Now().UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}
