package chat

import (
	"sync"
	"time"

	"drinkbuddies/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	maxFrameSize = 1 << 20
	sendBuffer   = 256
)

// Client owns one WebSocket connection for its whole lifetime. The
// identity bound at connect time never changes.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	user    *models.User
	channel string

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn *websocket.Conn, user *models.User, channel string) *Client {
	return &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		user:    user,
		channel: channel,
		done:    make(chan struct{}),
	}
}

// Send queues a payload without blocking. A full buffer drops the frame
// rather than letting a slow reader stall delivery to everyone else.
func (c *Client) Send(payload []byte) {
	select {
	case <-c.done:
	case c.send <- payload:
	default:
	}
}

// close is idempotent; both pumps and the session loop may race to call it.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// writePump drains the send queue and keeps the connection alive with
// pings. It exits when the socket breaks or the client is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
