package transport

import (
	"io"
	"sync"
	"time"
)

// Stream adapts a plain io.Reader/io.Writer pair (a pty, a pipe to a
// child process, stdin/stdout) to ByteTransport. Plain readers have no
// deadline support, so Stream pumps the reader from an internal
// goroutine into a buffered channel and applies timeouts on the channel
// side. A read error is delivered only after all bytes received before
// it have been consumed.
type Stream struct {
	w     io.Writer
	bytes chan byte
	errc  chan error

	done      chan struct{}
	pumpDone  chan struct{}
	closeOnce sync.Once
}

// NewStream returns a Stream reading from r and writing to w. The pump
// goroutine exits when r returns an error (io.EOF included) or when the
// Stream is closed.
func NewStream(r io.Reader, w io.Writer) *Stream {
	s := &Stream{
		w:        w,
		bytes:    make(chan byte, pipeBuffer),
		errc:     make(chan error, 1),
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}

	go func() {
		defer close(s.pumpDone)
		buf := make([]byte, 512)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				select {
				case s.bytes <- b:
				case <-s.done:
					return
				}
			}
			if err != nil {
				s.errc <- err
				return
			}
		}
	}()

	return s
}

// Receive returns the next byte from the reader, waiting up to timeout.
func (s *Stream) Receive(timeout time.Duration) (byte, error) {
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}

	select {
	case b := <-s.bytes:
		return b, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b := <-s.bytes:
		return b, nil
	case err := <-s.errc:
		// Bytes queued before the error drain first.
		select {
		case b := <-s.bytes:
			s.errc <- err
			return b, nil
		default:
			s.errc <- err
			return 0, err
		}
	case <-s.done:
		return 0, ErrClosed
	case <-timer.C:
		return 0, ErrTimeout
	}
}

// Send writes the whole buffer to the writer.
func (s *Stream) Send(p []byte) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	_, err := s.w.Write(p)
	return err
}

// Close stops the pump goroutine and fails further Receive and Send
// calls with ErrClosed. The underlying reader is not closed; a pump
// parked inside Read exits as soon as that read returns. Bytes still
// buffered at close time are discarded.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// Compile-time interface satisfaction check.
var _ ByteTransport = (*Stream)(nil)
