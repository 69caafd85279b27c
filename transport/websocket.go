// Package transport carries the engine's line protocol over connections other
// than the process's stdin/stdout.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// Config holds websocket relay settings.
type Config struct {
	URL            string
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for each message. Zero waits forever.
	ReadTimeout time.Duration
}

// WSConn adapts a websocket relay to a byte stream. Each text message from
// the relay holds one or more protocol lines; each line the bot writes is
// sent as its own message, without the newline.
type WSConn struct {
	conn        *websocket.Conn
	readTimeout time.Duration

	pending []byte
	wbuf    []byte
}

var _ io.ReadWriteCloser = (*WSConn)(nil)

// DialWebSocket connects to the relay at cfg.URL.
func DialWebSocket(ctx context.Context, cfg Config) (*WSConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.ConnectTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &WSConn{conn: conn, readTimeout: cfg.ReadTimeout}, nil
}

func (c *WSConn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		if c.readTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		typ, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("read error: %w", err)
		}
		if typ != websocket.TextMessage {
			continue
		}
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg = append(msg, '\n')
		}
		c.pending = msg
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *WSConn) Write(p []byte) (int, error) {
	c.wbuf = append(c.wbuf, p...)
	for {
		i := bytes.IndexByte(c.wbuf, '\n')
		if i < 0 {
			break
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, c.wbuf[:i]); err != nil {
			return 0, fmt.Errorf("write error: %w", err)
		}
		c.wbuf = c.wbuf[i+1:]
	}
	if len(c.wbuf) == 0 {
		c.wbuf = nil
	}
	return len(p), nil
}

// Close sends a normal closure and closes the connection. Any partial line
// still buffered is dropped.
func (c *WSConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	// The relay may already be gone; the close frame is a courtesy.
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
