// Package stream pushes live tips to WebSocket clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	domsvc "TipFusion/internal/domain/service"
	svcmetrics "TipFusion/internal/service/metrics"
	"TipFusion/pkg/logger"
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans messages out to connected clients. A client whose buffer is full
// or whose connection failed is dropped after the send pass.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader

	sendBuffer   int
	writeTimeout time.Duration
	log          *logger.Logger
}

type Option func(*Hub)

func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:      make(map[*client]struct{}),
		upgrader:     websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		sendBuffer:   64,
		writeTimeout: 5 * time.Second,
		log:          logger.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ServeWS upgrades the request and keeps the client registered until its
// connection fails or the hub drops it.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, h.sendBuffer)}
	h.add(c)
	go h.writeLoop(c)
	go h.readLoop(c)
	return nil
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	svcmetrics.LiveClients.Set(float64(n))
	h.log.Debug("live client connected", logger.String("client", c.id), logger.Int("clients", n))
}

func (h *Hub) remove(dead ...*client) {
	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range dead {
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			c.close()
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	svcmetrics.LiveClients.Set(float64(n))
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug("live client write failed", logger.String("client", c.id), logger.Error(err))
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// readLoop only watches for the peer going away.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

// Broadcast sends msg to every client and returns how many accepted it.
// Clients that cannot take the message are collected during the pass and
// removed once it completes.
func (h *Hub) Broadcast(ctx context.Context, msg any) int {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("live broadcast marshal", logger.Error(err))
		return 0
	}

	var dead []*client
	delivered := 0
	h.mu.RLock()
	for c := range h.clients {
		if ctx.Err() != nil {
			break
		}
		select {
		case c.send <- b:
			delivered++
		default:
			dead = append(dead, c)
		}
	}
	h.mu.RUnlock()

	h.remove(dead...)
	svcmetrics.LiveDeliveries.WithLabelValues("delivered").Add(float64(delivered))
	svcmetrics.LiveDeliveries.WithLabelValues("dropped").Add(float64(len(dead)))
	return delivered
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	h.remove(all...)
}

var _ domsvc.Broadcaster = (*Hub)(nil)
