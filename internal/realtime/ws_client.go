// File: internal/realtime/ws_client.go
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// WSClient implements Client over a gorilla websocket connection.
type WSClient struct {
	sessionID string
	conn      *websocket.Conn
	hub       *Hub
	logger    services.Logger

	mu     sync.Mutex
	closed bool
	send   chan Event
}

func NewWSClient(sessionID string, conn *websocket.Conn, hub *Hub, logger services.Logger) *WSClient {
	return &WSClient{
		sessionID: sessionID,
		conn:      conn,
		hub:       hub,
		logger:    logger,
		send:      make(chan Event, sendBufferSize),
	}
}

func (c *WSClient) SessionID() string { return c.sessionID }

// Send queues the event without blocking. A full buffer or a closed session
// reports false; the hub then unregisters the session. The mutex keeps Send
// from racing a concurrent Close onto a closed channel.
func (c *WSClient) Send(event Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// Close stops the write pump; the read pump exits when the connection dies.
// Safe to call more than once and concurrently with Send.
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run starts the read and write pumps.
func (c *WSClient) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c.sessionID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", "session_id", c.sessionID, "error", err)
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			c.logger.Warn("malformed client event", "session_id", c.sessionID, "error", err)
			continue
		}
		c.hub.HandleClientEvent(c.sessionID, ev)
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
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
