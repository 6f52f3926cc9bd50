package transport

import (
	"errors"
	"time"
)

// Transport errors.
var (
	// ErrTimeout reports that no byte arrived within the read timeout.
	// Sessions treat it as a protocol event (a missed response), not as
	// a link failure.
	ErrTimeout = errors.New("read timeout")

	// ErrClosed reports an operation on a closed transport.
	ErrClosed = errors.New("transport closed")
)

// ByteTransport is the capability an XMODEM session requires from its
// link. Implementations must deliver bytes in order and intact; XMODEM
// assumes a reliable byte stream and only defends against corruption,
// not loss or reordering by the transport itself.
type ByteTransport interface {
	// Receive blocks until the next byte arrives or the timeout
	// elapses. It returns ErrTimeout on expiry; any other error is an
	// I/O failure and fatal to the session.
	Receive(timeout time.Duration) (byte, error)

	// Send writes the whole buffer or returns an I/O failure.
	Send(p []byte) error
}
