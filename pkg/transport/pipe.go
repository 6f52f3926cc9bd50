package transport

import (
	"sync"
	"time"
)

// pipeBuffer is sized to hold a full 1K frame plus handshake traffic so
// a scripted test peer can queue bytes without a concurrent reader.
const pipeBuffer = 2048

// Pipe is one end of an in-memory bidirectional byte stream. It is used
// for loopback transfers in tests and examples.
type Pipe struct {
	recv <-chan byte
	send chan<- byte

	done      chan struct{}
	peerDone  chan struct{}
	closeOnce sync.Once
}

// NewPipe returns the two connected ends of an in-memory link. Bytes
// sent on one end arrive at the other in order.
func NewPipe() (*Pipe, *Pipe) {
	ab := make(chan byte, pipeBuffer)
	ba := make(chan byte, pipeBuffer)
	aDone := make(chan struct{})
	bDone := make(chan struct{})

	a := &Pipe{recv: ba, send: ab, done: aDone, peerDone: bDone}
	b := &Pipe{recv: ab, send: ba, done: bDone, peerDone: aDone}
	return a, b
}

// Receive returns the next byte from the peer, waiting up to timeout.
// Bytes already in flight remain readable after the peer closes.
func (p *Pipe) Receive(timeout time.Duration) (byte, error) {
	select {
	case b := <-p.recv:
		return b, nil
	case <-p.done:
		return 0, ErrClosed
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b := <-p.recv:
		return b, nil
	case <-timer.C:
		return 0, ErrTimeout
	case <-p.done:
		return 0, ErrClosed
	case <-p.peerDone:
		// Drain anything the peer wrote before closing.
		select {
		case b := <-p.recv:
			return b, nil
		default:
			return 0, ErrClosed
		}
	}
}

// Send delivers p to the peer. It fails with ErrClosed once either end
// has closed.
func (p *Pipe) Send(data []byte) error {
	for _, b := range data {
		select {
		case <-p.done:
			return ErrClosed
		case <-p.peerDone:
			return ErrClosed
		default:
		}

		select {
		case p.send <- b:
		case <-p.done:
			return ErrClosed
		case <-p.peerDone:
			return ErrClosed
		}
	}
	return nil
}

// Close shuts down this end. Pending bytes already sent to the peer
// remain readable on the other side.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	return nil
}

// Compile-time interface satisfaction check.
var _ ByteTransport = (*Pipe)(nil)
