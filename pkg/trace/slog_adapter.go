package trace

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors events onto an slog.Logger at debug level. Handy
// during development to watch a transfer live instead of (or next to)
// a trace file.
type SlogAdapter struct {
	sl *slog.Logger
}

// NewSlogAdapter wraps sl as an event sink.
func NewSlogAdapter(sl *slog.Logger) *SlogAdapter {
	return &SlogAdapter{sl: sl}
}

// Log emits the event as a single debug record.
func (a *SlogAdapter) Log(ev Event) {
	a.sl.LogAttrs(context.Background(), slog.LevelDebug, "xmodem", eventAttrs(ev)...)
}

func eventAttrs(ev Event) []slog.Attr {
	attrs := make([]slog.Attr, 0, 10)
	attrs = append(attrs,
		slog.String("session_id", ev.SessionID),
		slog.String("role", ev.Role.String()),
		slog.String("direction", ev.Direction.String()),
		slog.String("layer", ev.Layer.String()),
		slog.String("category", ev.Category.String()),
	)
	if ev.Endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", ev.Endpoint))
	}

	switch {
	case ev.Frame != nil:
		attrs = append(attrs,
			slog.Uint64("marker", uint64(ev.Frame.Marker)),
			slog.Uint64("block", uint64(ev.Frame.Block)),
			slog.Int("frame_size", ev.Frame.Size),
			slog.Bool("truncated", ev.Frame.Truncated),
		)
	case ev.Control != nil:
		attrs = append(attrs,
			slog.Uint64("byte", uint64(ev.Control.Byte)),
			slog.String("name", ev.Control.Name),
		)
	case ev.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", ev.StateChange.OldState),
			slog.String("new_state", ev.StateChange.NewState),
		)
		if ev.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", ev.StateChange.Reason))
		}
	case ev.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", ev.Error.Layer.String()),
			slog.String("error_msg", ev.Error.Message),
			slog.Bool("fatal", ev.Error.Fatal),
		)
		if ev.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", ev.Error.Context))
		}
	}
	return attrs
}

var _ Logger = (*SlogAdapter)(nil)
