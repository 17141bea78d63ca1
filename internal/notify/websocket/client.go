package websocket

import (
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/movstream/backend/internal/common/logger"
)

type clientOptions struct {
	writeWait   time.Duration
	pongWait    time.Duration
	pingPeriod  time.Duration
	maxMsgSize  int64
	sendBufSize int
}

// Client is one open notification channel. It starts unauthenticated; the hub
// fills in userID/isAdmin when an authenticate frame verifies. Those fields
// are guarded by the hub's mutex, never touched by the pumps directly.
type Client struct {
	hub  *Hub
	conn *gorillaWS.Conn
	send chan []byte
	log  *logger.Logger
	opts clientOptions

	userID        string
	isAdmin       bool
	authenticated bool
}

func newClient(hub *Hub, conn *gorillaWS.Conn, log *logger.Logger, opts clientOptions) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, opts.sendBufSize),
		log:  log,
		opts: opts,
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait))
	c.conn.SetReadLimit(c.opts.maxMsgSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure, gorillaWS.CloseNormalClosure) {
				c.log.Warnf("websocket read error user_id=%s: %v", c.hub.clientUserID(c), err)
			}
			break
		}

		c.hub.handleMessage(c, messageBytes)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.writeWait))
			if !ok {
				c.conn.WriteMessage(gorillaWS.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(gorillaWS.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.writeWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
