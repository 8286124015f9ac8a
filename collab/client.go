package collab

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/state"
)

// Client joins a remote hub. Local dispatches are forwarded to the hub;
// actions received from it are applied through DispatchRemote.
type Client struct {
	disp *state.Dispatcher
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Dial connects to a hub at url (ws:// or wss://) and registers the
// client as the dispatcher's broadcast sink.
func Dial(ctx context.Context, url string, d *state.Dispatcher) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		disp: d,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	d.SetBroadcast(c.broadcast)
	go c.readLoop()
	go c.writeLoop()
	easel.Logger().Info("joined hub", "url", url)
	return c, nil
}

// Close disconnects from the hub.
func (c *Client) Close() {
	close(c.done)
	c.conn.Close()
}

func (c *Client) broadcast(a state.Action) {
	data, err := state.EncodeAction(a)
	if err != nil {
		easel.Logger().Warn("broadcast encode failed", "err", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}

func (c *Client) readLoop() {
	defer c.conn.Close()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPingHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return c.conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(writeWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		a, err := state.DecodeAction(data)
		if err != nil {
			easel.Logger().Warn("bad hub action", "err", err)
			continue
		}
		if err := c.disp.DispatchRemote(a); err != nil {
			easel.Logger().Warn("hub action rejected", "err", err)
		}
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
