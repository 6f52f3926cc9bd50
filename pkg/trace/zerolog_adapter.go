package trace

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter writes trace events to a zerolog.Logger.
// The CLI tools use this to show protocol events on the console.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new ZerologAdapter that writes to the given logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log writes the event to the zerolog logger at Debug level.
func (a *ZerologAdapter) Log(event Event) {
	e := a.logger.Debug().
		Str("session_id", event.SessionID).
		Str("role", event.Role.String()).
		Str("direction", event.Direction.String()).
		Str("layer", event.Layer.String()).
		Str("category", event.Category.String())

	if event.Endpoint != "" {
		e = e.Str("endpoint", event.Endpoint)
	}

	switch {
	case event.Frame != nil:
		e = e.Uint8("marker", event.Frame.Marker).
			Uint8("block", event.Frame.Block).
			Int("frame_size", event.Frame.Size).
			Bool("truncated", event.Frame.Truncated)
	case event.Control != nil:
		e = e.Uint8("byte", event.Control.Byte).
			Str("name", event.Control.Name)
	case event.StateChange != nil:
		e = e.Str("old_state", event.StateChange.OldState).
			Str("new_state", event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			e = e.Str("reason", event.StateChange.Reason)
		}
	case event.Error != nil:
		e = e.Str("error_layer", event.Error.Layer.String()).
			Str("error_msg", event.Error.Message).
			Bool("fatal", event.Error.Fatal)
		if event.Error.Context != "" {
			e = e.Str("error_context", event.Error.Context)
		}
	}

	e.Msg("xmodem")
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
