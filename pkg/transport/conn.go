package transport

import (
	"errors"
	"io"
	"net"
	"time"
)

// Conn adapts a net.Conn to ByteTransport using read deadlines for the
// timed reads. The caller keeps ownership of the connection and closes
// it after the session ends.
type Conn struct {
	conn net.Conn
	buf  [1]byte
}

// NewConn wraps an established network connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{conn: c}
}

// Receive reads one byte, waiting up to timeout via SetReadDeadline.
func (c *Conn) Receive(timeout time.Duration) (byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}

	if _, err := io.ReadFull(c.conn, c.buf[:]); err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return 0, ErrTimeout
		}
		return 0, err
	}
	return c.buf[0], nil
}

// Send writes the whole buffer to the connection.
func (c *Conn) Send(p []byte) error {
	_, err := c.conn.Write(p)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Compile-time interface satisfaction check.
var _ ByteTransport = (*Conn)(nil)
