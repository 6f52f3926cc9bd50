// Package commands implements the xmodem-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

// timeLayout is the UTC timestamp format shared by the view and
// export commands.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter narrows the view command to matching events.
type ViewFilter struct {
	Layer     *trace.Layer
	Direction *trace.Direction
	Category  *trace.Category
	Role      *trace.Role
	Session   string
}

// RunView prints every matching event of the trace at path to output,
// one block of text per event.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := trace.NewFilteredReader(path, trace.Filter{
		SessionID: filter.Session,
		Direction: filter.Direction,
		Layer:     filter.Layer,
		Category:  filter.Category,
		Role:      filter.Role,
	})
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}

// formatEvent renders one event as a header line, optional indented
// detail lines, and a trailing blank line.
func formatEvent(w io.Writer, ev trace.Event) {
	ts := ev.Timestamp.UTC().Format(timeLayout)
	fmt.Fprintf(w, "%s [sess:%s] %-3s %s %s\n",
		ts, shortSession(ev.SessionID), ev.Direction, ev.Layer, eventLabel(ev))

	switch {
	case ev.Frame != nil:
		fmt.Fprintf(w, "  Block: %d  Size: %d bytes\n", ev.Frame.Block, ev.Frame.Size)
		if len(ev.Frame.Data) > 0 {
			suffix := ""
			if ev.Frame.Truncated {
				suffix = " (truncated)"
			}
			fmt.Fprintf(w, "  Data: %s%s\n", hex.EncodeToString(ev.Frame.Data), suffix)
		}
	case ev.StateChange != nil:
		if ev.StateChange.OldState != "" {
			fmt.Fprintf(w, "  %s -> %s\n", ev.StateChange.OldState, ev.StateChange.NewState)
		} else {
			fmt.Fprintf(w, "  -> %s\n", ev.StateChange.NewState)
		}
		if ev.StateChange.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", ev.StateChange.Reason)
		}
	case ev.Error != nil:
		fmt.Fprintf(w, "  Layer: %s\n", ev.Error.Layer)
		fmt.Fprintf(w, "  Message: %s\n", ev.Error.Message)
		if ev.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", ev.Error.Context)
		}
		if ev.Error.Fatal {
			fmt.Fprintln(w, "  Fatal: true")
		}
	}
	// Control bytes carry no detail lines, the label in the header
	// already names them.

	fmt.Fprintln(w)
}

// eventLabel names the event for the header line. Control bytes show
// as their protocol name so a NAK is visible at a glance.
func eventLabel(ev trace.Event) string {
	switch {
	case ev.Frame != nil:
		return "Frame"
	case ev.Control != nil:
		if ev.Control.Name != "" {
			return ev.Control.Name
		}
		return fmt.Sprintf("0x%02X", ev.Control.Byte)
	case ev.StateChange != nil:
		return "State"
	case ev.Error != nil:
		return "Error"
	}
	return "Unknown"
}

// shortSession abbreviates a UUID session ID to its first 8 characters.
func shortSession(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}

// ParseLayerFlag maps a --layer argument to its Layer value.
func ParseLayerFlag(s string) (trace.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return trace.LayerTransport, nil
	case "protocol":
		return trace.LayerProtocol, nil
	case "session":
		return trace.LayerSession, nil
	}
	return 0, fmt.Errorf("invalid layer: %s (must be transport, protocol, or session)", s)
}

// ParseDirectionFlag maps a --direction argument to its Direction value.
func ParseDirectionFlag(s string) (trace.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return trace.DirectionIn, nil
	case "out":
		return trace.DirectionOut, nil
	}
	return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
}

// ParseCategoryFlag maps a --category argument to its Category value.
func ParseCategoryFlag(s string) (trace.Category, error) {
	switch strings.ToLower(s) {
	case "frame":
		return trace.CategoryFrame, nil
	case "control":
		return trace.CategoryControl, nil
	case "state":
		return trace.CategoryState, nil
	case "error":
		return trace.CategoryError, nil
	}
	return 0, fmt.Errorf("invalid category: %s (must be frame, control, state, or error)", s)
}

// ParseRoleFlag maps a --role argument to its Role value.
func ParseRoleFlag(s string) (trace.Role, error) {
	switch strings.ToLower(s) {
	case "sender":
		return trace.RoleSender, nil
	case "receiver":
		return trace.RoleReceiver, nil
	}
	return 0, fmt.Errorf("invalid role: %s (must be sender or receiver)", s)
}
