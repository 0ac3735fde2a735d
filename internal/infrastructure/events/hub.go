package events

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"logipro/internal/domain/tracking"
	"logipro/internal/logger"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// Hub fans status events out to live tracking sockets. Clients subscribe to
// one job number each and only ever receive; anything they send is dropped.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}

	register   chan *client
	unregister chan *client
	done       chan struct{}
	stopOnce   sync.Once
}

type client struct {
	id    string
	topic string
	conn  *websocket.Conn
	send  chan []byte
	hub   *Hub
}

func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Run serves registrations until ctx ends. Afterwards Done is closed and
// late joins or leaves return without blocking.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.mu.Lock()
			for topic, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			logger.Info("Tracking hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.topic] == nil {
				h.clients[c.topic] = make(map[*client]struct{})
			}
			h.clients[c.topic][c] = struct{}{}
			h.mu.Unlock()
			logger.Debug("Tracking client registered", zap.String("client_id", c.id), zap.String("job_number", c.topic))

		case c := <-h.unregister:
			h.remove(c)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) join(c *client) bool {
	if h.stopped() {
		return false
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *client) {
	if h.stopped() {
		return
	}
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.topic]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
		logger.Debug("Tracking client unregistered", zap.String("client_id", c.id))
	}
	if len(set) == 0 {
		delete(h.clients, c.topic)
	}
}

// Subscribers returns how many sockets follow jobNumber.
func (h *Hub) Subscribers(jobNumber int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[strconv.FormatInt(jobNumber, 10)])
}

// PublishStatus implements tracking.Publisher. Slow clients whose buffer is
// full miss the event rather than block the publisher.
func (h *Hub) PublishStatus(_ context.Context, event tracking.StatusEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[strconv.FormatInt(event.JobNumber, 10)] {
		select {
		case c.send <- msg:
		default:
			logger.Warn("Tracking client buffer full, event dropped", zap.String("client_id", c.id))
		}
	}
	return nil
}

// ServeWS upgrades the request and subscribes the socket to jobNumber.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, jobNumber int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:    uuid.NewString(),
		topic: strconv.FormatInt(jobNumber, 10),
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		hub:   h,
	}
	if !h.join(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("Tracking socket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
