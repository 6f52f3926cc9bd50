package progress

import (
	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

// FrameLogger feeds a tracker from trace events, counting the
// payload bytes of data frames moving in one direction. It lets a
// sending CLI show progress without any hook in the engine: register
// it (alone or in a MultiLogger) and count outgoing frames.
//
// Retransmitted frames are counted again, so the rate reflects wire
// throughput rather than unique payload bytes.
type FrameLogger struct {
	t   *Tracker
	dir trace.Direction
}

// NewFrameLogger creates a trace logger that adds the payload size
// of every data frame with the given direction to t.
func NewFrameLogger(t *Tracker, dir trace.Direction) *FrameLogger {
	return &FrameLogger{t: t, dir: dir}
}

// Log counts the event if it is a data frame in the watched
// direction.
func (f *FrameLogger) Log(event trace.Event) {
	if event.Category != trace.CategoryFrame || event.Direction != f.dir {
		return
	}
	fe := event.Frame
	if fe == nil {
		return
	}
	payload := int(frame.Block128)
	if fe.Marker == frame.STX {
		payload = int(frame.Block1K)
	}
	f.t.Add(payload)
}

var _ trace.Logger = (*FrameLogger)(nil)
