package ws

import (
	"errors"
	"sync"

	"github.com/relay-chat/chat-service/internal/hub"

	"github.com/gorilla/websocket"
)

// ErrSendBufferFull is returned when a member cannot keep up with fan-out.
// The message is dropped for that member only.
var ErrSendBufferFull = errors.New("ws: send buffer full")

var errClosed = errors.New("ws: connection closed")

const sendBufferSize = 64

// wsConn adapts a gorilla connection to hub.Conn. Sends go through a buffered
// channel drained by the server's write loop, so fan-out never blocks on a
// slow socket.
type wsConn struct {
	conn   *websocket.Conn
	send   chan hub.Event
	closed chan struct{}
	once   sync.Once
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		send:   make(chan hub.Event, sendBufferSize),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(e hub.Event) error {
	select {
	case <-c.closed:
		return errClosed
	default:
	}

	select {
	case c.send <- e:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return c.conn.Close()
}
