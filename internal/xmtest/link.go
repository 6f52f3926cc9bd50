// Package xmtest provides test doubles shared by the package tests:
// a scripted transport end and a trace event recorder.
package xmtest

import (
	"sync"
	"time"

	"github.com/xmodem-protocol/xmodem-go/pkg/transport"
)

type readStep struct {
	b   byte
	err error
}

// Link is a single-ended scripted transport. Tests queue the bytes,
// timeouts and errors a peer would produce, run a session against
// it, then inspect everything the session wrote.
//
// An exhausted read queue behaves as a silent line: every further
// Receive returns a timeout.
type Link struct {
	mu          sync.Mutex
	reads       []readStep
	sends       [][]byte
	sendErr     error
	lastTimeout time.Duration
}

// NewLink creates an empty link.
func NewLink() *Link {
	return &Link{}
}

// QueueByte schedules one byte for a future Receive.
func (l *Link) QueueByte(b byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads = append(l.reads, readStep{b: b})
}

// QueueBytes schedules every byte of p in order.
func (l *Link) QueueBytes(p []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range p {
		l.reads = append(l.reads, readStep{b: b})
	}
}

// QueueTimeout schedules one read timeout.
func (l *Link) QueueTimeout() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads = append(l.reads, readStep{err: transport.ErrTimeout})
}

// QueueError schedules one read failure.
func (l *Link) QueueError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads = append(l.reads, readStep{err: err})
}

// FailSends makes every future Send return err. A nil err restores
// normal recording.
func (l *Link) FailSends(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendErr = err
}

// Receive pops the next scripted read. It never blocks.
func (l *Link) Receive(timeout time.Duration) (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastTimeout = timeout
	if len(l.reads) == 0 {
		return 0, transport.ErrTimeout
	}
	step := l.reads[0]
	l.reads = l.reads[1:]
	if step.err != nil {
		return 0, step.err
	}
	return step.b, nil
}

// Send records p as one write, or fails if FailSends is active.
func (l *Link) Send(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sendErr != nil {
		return l.sendErr
	}
	l.sends = append(l.sends, append([]byte(nil), p...))
	return nil
}

// Sends returns a copy of every recorded write, one entry per Send
// call.
func (l *Link) Sends() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.sends))
	for i, s := range l.sends {
		out[i] = append([]byte(nil), s...)
	}
	return out
}

// SentBytes returns every recorded write flattened into one slice.
func (l *Link) SentBytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []byte
	for _, s := range l.sends {
		out = append(out, s...)
	}
	return out
}

// LastSend returns a copy of the most recent write, or nil if
// nothing was written.
func (l *Link) LastSend() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.sends) == 0 {
		return nil
	}
	return append([]byte(nil), l.sends[len(l.sends)-1]...)
}

// LastTimeout returns the timeout passed to the most recent Receive.
func (l *Link) LastTimeout() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTimeout
}

var _ transport.ByteTransport = (*Link)(nil)
