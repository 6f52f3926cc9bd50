package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

// RunExport converts the trace at path into the given format, writing
// to the output file, or stdout when output is empty.
func RunExport(path, format, output string) error {
	var export func(*trace.Reader, io.Writer) error
	switch format {
	case "jsonl":
		export = exportJSONL
	case "csv":
		export = exportCSV
	default:
		return fmt.Errorf("unknown format %q, want jsonl or csv", format)
	}

	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export(reader, w)
}

// exportJSONL writes one JSON object per line, the natural input for
// jq and similar tools.
func exportJSONL(reader *trace.Reader, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *trace.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "role", "direction", "layer", "category", "endpoint", "type", "block"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
}

// csvRow flattens an event to one row of the fixed nine-column layout.
// Only frame rows carry a block number.
func csvRow(ev trace.Event) []string {
	kind := "unknown"
	block := ""
	switch {
	case ev.Frame != nil:
		kind = "frame"
		block = strconv.Itoa(int(ev.Frame.Block))
	case ev.Control != nil:
		kind = eventLabel(ev)
	case ev.StateChange != nil:
		kind = "state"
	case ev.Error != nil:
		kind = "error"
	}

	return []string{
		ev.Timestamp.UTC().Format(timeLayout),
		ev.SessionID,
		ev.Role.String(),
		ev.Direction.String(),
		ev.Layer.String(),
		ev.Category.String(),
		ev.Endpoint,
		kind,
		block,
	}
}
