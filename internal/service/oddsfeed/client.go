// Package oddsfeed streams live odds updates from a WebSocket feed.
package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"TipFusion/internal/domain/models"
	drepo "TipFusion/internal/domain/repository"
	"TipFusion/pkg/logger"
)

// Client implements an OddsStream backed by a WebSocket feed.
type Client struct {
	feedURL        string
	sports         []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	bufferSize     int
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool
	dropped   atomic.Int64
}

type Option func(*Client)

func WithSports(sports []string) Option {
	return func(c *Client) { c.sports = sports }
}

func WithBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a new odds feed stream.
func New(feedURL string, reconnectDelay, pingInterval time.Duration, opts ...Option) *Client {
	c := &Client{
		feedURL:        feedURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		bufferSize:     1024,
		log:            logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.pingInterval <= 0 {
		c.pingInterval = 30 * time.Second
	}
	return c
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.feedURL, nil)
	if err != nil {
		return fmt.Errorf("odds feed connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.connected.Store(true)
	c.log.Info("odds feed connected", logger.String("url", c.feedURL))
	return nil
}

type subscribeMsg struct {
	Type  string `json:"type"`
	Sport string `json:"sport,omitempty"`
}

// Subscribe asks for every configured sport, or the whole feed when none is set.
func (c *Client) Subscribe(ctx context.Context) error {
	if !c.connected.Load() {
		return fmt.Errorf("odds feed not connected")
	}
	if len(c.sports) == 0 {
		return c.write(subscribeMsg{Type: "subscribe"})
	}
	for _, s := range c.sports {
		if err := c.write(subscribeMsg{Type: "subscribe", Sport: s}); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		c.log.Info("odds feed subscribed", logger.String("sport", s))
	}
	return nil
}

func (c *Client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("odds feed conn nil")
	}
	return c.conn.WriteJSON(v)
}

type feedMessage struct {
	Type string              `json:"type"`
	Data []models.OddsUpdate `json:"data"`
}

// Read streams odds updates and errors. Updates are dropped when the
// consumer falls behind the buffer.
func (c *Client) Read(ctx context.Context) (<-chan *models.OddsUpdate, <-chan error) {
	updates := make(chan *models.OddsUpdate, c.bufferSize)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn != nil {
					_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
				c.mu.Unlock()
			}
		}
	}()

	go func() {
		defer close(updates)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("odds feed conn nil")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				c.connected.Store(false)
				errs <- fmt.Errorf("odds feed read: %w", err)
				return
			}
			for _, u := range decode(b) {
				select {
				case updates <- u:
				default:
					c.dropped.Add(1)
				}
			}
		}
	}()

	return updates, errs
}

// decode accepts either an {"type":"odds","data":[...]} envelope or a single update.
func decode(b []byte) []*models.OddsUpdate {
	var m feedMessage
	if err := json.Unmarshal(b, &m); err == nil && m.Type != "" {
		if m.Type != "odds" {
			return nil
		}
		out := make([]*models.OddsUpdate, 0, len(m.Data))
		for i := range m.Data {
			u := m.Data[i]
			out = append(out, stamp(&u))
		}
		return out
	}
	var u models.OddsUpdate
	if err := json.Unmarshal(b, &u); err != nil || u.EventID == "" {
		return nil
	}
	return []*models.OddsUpdate{stamp(&u)}
}

func stamp(u *models.OddsUpdate) *models.OddsUpdate {
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now().UTC()
	}
	return u
}

// Reconnect closes and reconnects after the configured delay.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-time.After(c.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected.Store(false)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) IsConnected() bool { return c.connected.Load() }

// Dropped is the number of updates lost to backpressure.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

var _ drepo.OddsStream = (*Client)(nil)
