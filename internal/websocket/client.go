package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Observers only receive; no
	// client->server messages are defined on this channel.
	maxMessageSize = 512
)

// Client represents one connected observer.
type Client struct {
	conn       *websocket.Conn
	hub        *Hub
	send       chan []byte
	remoteAddr string
}

// NewClient creates a new observer connection handle
func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		conn:       conn,
		hub:        hub,
		send:       make(chan []byte, 256),
		remoteAddr: conn.RemoteAddr().String(),
	}
}

// queue stages a payload for delivery before the write pump starts. Used to
// hand a freshly connected observer the current full snapshot.
func (c *Client) queue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("⚠️ Initial snapshot dropped for %s: send buffer full", c.remoteAddr)
	}
}

// ReadPump drains the connection to detect closes and keep pong handling
// alive. Incoming payloads are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Observer %s closed abnormally: %v", c.remoteAddr, err)
			}
			break
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
