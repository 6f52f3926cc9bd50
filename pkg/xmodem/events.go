package xmodem

import (
	"time"

	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

// maxEventFrameBytes caps how much frame data a trace event carries.
const maxEventFrameBytes = 32

// session holds the identity and tracing state shared by senders and
// receivers. All log helpers are no-ops when the logger is nil.
type session struct {
	logger    trace.Logger
	sessionID string
	role      trace.Role
	endpoint  string
}

func (s *session) event(dir trace.Direction, layer trace.Layer, cat trace.Category) trace.Event {
	return trace.Event{
		Timestamp: time.Now(),
		SessionID: s.sessionID,
		Direction: dir,
		Layer:     layer,
		Category:  cat,
		Role:      s.role,
		Endpoint:  s.endpoint,
	}
}

func (s *session) logFrame(dir trace.Direction, marker, block byte, fr []byte) {
	if s.logger == nil {
		return
	}
	data := fr
	truncated := false
	if len(data) > maxEventFrameBytes {
		data = data[:maxEventFrameBytes]
		truncated = true
	}
	ev := s.event(dir, trace.LayerTransport, trace.CategoryFrame)
	ev.Frame = &trace.FrameEvent{
		Marker: marker,
		Block:  block,
		Size:   len(fr),
		// The session frame buffer is reused, so the event keeps its
		// own copy.
		Data:      append([]byte(nil), data...),
		Truncated: truncated,
	}
	s.logger.Log(ev)
}

func (s *session) logControl(dir trace.Direction, b byte) {
	if s.logger == nil {
		return
	}
	ev := s.event(dir, trace.LayerProtocol, trace.CategoryControl)
	ev.Control = &trace.ControlEvent{
		Byte: b,
		Name: frame.ControlName(b),
	}
	s.logger.Log(ev)
}

func (s *session) logStateChange(oldState, newState, reason string) {
	if s.logger == nil {
		return
	}
	ev := s.event(trace.DirectionOut, trace.LayerSession, trace.CategoryState)
	ev.StateChange = &trace.StateChangeEvent{
		OldState: oldState,
		NewState: newState,
		Reason:   reason,
	}
	s.logger.Log(ev)
}

func (s *session) logError(layer trace.Layer, err error, context string, fatal bool) {
	if s.logger == nil {
		return
	}
	ev := s.event(trace.DirectionIn, layer, trace.CategoryError)
	ev.Error = &trace.ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Context: context,
		Fatal:   fatal,
	}
	s.logger.Log(ev)
}
