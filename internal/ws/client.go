package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection bound to an authenticated user. A user
// may hold several clients at once.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte

	// rooms caches this client's memberships so unregister can clean them
	// up. Only the hub goroutine touches it.
	rooms map[string]struct{}
}

// NewClient wraps an upgraded connection. Serve must be called to start the
// pumps.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 256),
		rooms:  make(map[string]struct{}),
	}
}

// Serve registers the client and runs the write pump in a new goroutine and
// the read pump on the calling goroutine. It returns when the connection
// closes; onClose runs exactly once after the client is unregistered.
func (c *Client) Serve(onClose func()) {
	c.hub.register <- c
	go c.writePump()
	c.readPump()
	c.hub.unregister <- c
	if onClose != nil {
		onClose()
	}
}

// readPump consumes inbound frames. Clients only send room management frames;
// everything substantive goes through the REST API.
func (c *Client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error",
					zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}

		var frame model.ClientEvent
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.hub.logger.Warn("dropping malformed client frame",
				zap.String("user_id", c.userID), zap.Error(err))
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame model.ClientEvent) {
	switch frame.Event {
	case model.ClientEventJoinConversation:
		if frame.Data != "" {
			c.hub.join <- membership{client: c, room: frame.Data}
		}
	case model.ClientEventLeaveConversation:
		if frame.Data != "" {
			c.hub.leave <- membership{client: c, room: frame.Data}
		}
	case model.ClientEventUserJoin:
		// Personal room membership is established at registration from the
		// authenticated identity; the frame's payload is not trusted.
	default:
		c.hub.logger.Warn("unknown client event",
			zap.String("user_id", c.userID), zap.String("event", frame.Event))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
