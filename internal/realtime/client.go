package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Client is a single WebSocket connection. userID stays empty until the
// connection authenticates.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	userID string
	topics map[string]bool

	// mu guards closed and every send on Send. Closing the channel and
	// sending on it are serialized through the same lock, so a concurrent
	// writer can never hit a closed channel.
	mu     sync.Mutex
	closed bool
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		topics: make(map[string]bool),
	}
}

// TrySend queues a payload without blocking. Reports false when the client
// is closed or its buffer is full.
func (c *Client) TrySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// closeSend marks the client closed and closes the send channel so the
// write pump drains and exits. Safe to call more than once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// WritePump pumps messages from the Send channel to the connection and
// keeps it alive with pings. Runs as one goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump consumes inbound frames, dispatching each to handle, and
// unregisters the connection when the peer goes away.
func (c *Client) ReadPump(hub *Hub, handle func(*Client, []byte)) {
	defer hub.Unregister(c)

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client_id", c.ID).Msg("websocket closed unexpectedly")
			}
			return
		}

		handle(c, message)
	}
}
