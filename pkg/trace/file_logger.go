package trace

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a trace file as a CBOR sequence. It is
// safe for concurrent use; the two sessions of a loopback transfer can
// share one logger, and readers separate them again by session ID.
type FileLogger struct {
	mu     sync.Mutex
	f      *os.File
	enc    *cbor.Encoder
	closed bool
}

// NewFileLogger opens path for appending, creating it with mode 0644
// when missing. Events from earlier runs are kept.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{f: f, enc: NewEncoder(f)}, nil
}

// Log appends one event. Encode failures are dropped; tracing is best
// effort and must not abort a running transfer.
func (l *FileLogger) Log(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_ = l.enc.Encode(ev)
}

// Close releases the file. Calling it again is a no-op, and any Log
// after Close is silently discarded.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.f.Close()
}

var _ Logger = (*FileLogger)(nil)
