package websocket

import (
	"log"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Client is one connected admin dashboard. The monitor stream is one-way:
// dashboards only receive broadcasts, so the read side exists to answer
// application pings and to detect the peer going away.
type Client struct {
	ID      string
	AdminID string
	Conn    *websocket.Conn
	Manager *Manager
	Send    chan []byte
}

func NewClient(id, adminID string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:      id,
		AdminID: adminID,
		Conn:    conn,
		Manager: manager,
		Send:    make(chan []byte, 256),
	}
}

// ReadPump drains inbound frames until the connection dies. Any frame that
// is not a ping is discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.Manager.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Monitor] websocket error: %v", err)
			}
			return
		}

		var msg Message
		if json.Unmarshal(raw, &msg) != nil || msg.Type != TypePing {
			continue
		}
		if pong, err := NewMessage(TypePong, nil); err == nil {
			c.enqueue(pong)
		}
	}
}

// enqueue drops the message if the send buffer is full; a dashboard that
// cannot keep up must not stall the reader.
func (c *Client) enqueue(msg *Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Send <- raw:
	default:
	}
}

// WritePump flushes queued broadcasts and keeps the connection alive with
// protocol pings. One message per frame; dashboards parse frames as whole
// JSON documents.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.Manager.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
