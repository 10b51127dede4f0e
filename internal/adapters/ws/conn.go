package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// closeGrace bounds the close handshake write.
const closeGrace = time.Second

// Conn wraps a *websocket.Conn.
type Conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	defaults     func() domain.ParamSet

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn, writeTimeout time.Duration, defaults func() domain.ParamSet) *Conn {
	return &Conn{ws: ws, writeTimeout: writeTimeout, defaults: defaults}
}

// ReadPayload reads the next message. A closed connection yields io.EOF.
func (c *Conn) ReadPayload() (domain.Payload, error) {
	typ, data, err := c.ws.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			return domain.Payload{}, io.EOF
		}
		return domain.Payload{}, err
	}

	switch typ {
	case websocket.BinaryMessage:
		f, err := domain.NewFrame(data)
		if err != nil {
			return domain.Payload{}, fmt.Errorf("%w: %w", domain.ErrProtocol, err)
		}
		return domain.FramePayload(f), nil

	case websocket.TextMessage:
		msg, err := domain.DecodeControl(data, c.defaults())
		if err != nil {
			return domain.Payload{}, err
		}
		return domain.ControlPayload(msg), nil

	default:
		return domain.Payload{}, fmt.Errorf("%w: unexpected message type %d", domain.ErrProtocol, typ)
	}
}

// WriteFrame sends frame as a binary message.
func (c *Conn) WriteFrame(ctx context.Context, frame domain.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.writeTimeout)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, frame.Bytes())
}

// Close sends a close frame and releases the connection. Safe to call more
// than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

var _ ports.Conn = (*Conn)(nil)
