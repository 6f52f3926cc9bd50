package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

func TestExportToJSONL(t *testing.T) {
	ts := time.Date(2026, 2, 3, 9, 30, 15, 123456000, time.UTC)
	path := writeTraceFile(t,
		trace.Event{
			Timestamp: ts,
			SessionID: "send-1",
			Direction: trace.DirectionOut,
			Layer:     trace.LayerTransport,
			Category:  trace.CategoryFrame,
			Role:      trace.RoleSender,
			Frame:     &trace.FrameEvent{Marker: 0x01, Block: 1, Size: 133},
		},
		trace.Event{
			Timestamp: ts.Add(time.Second),
			SessionID: "send-1",
			Direction: trace.DirectionIn,
			Layer:     trace.LayerProtocol,
			Category:  trace.CategoryControl,
			Role:      trace.RoleSender,
			Control:   &trace.ControlEvent{Byte: 0x06, Name: "ACK"},
		},
	)
	out := filepath.Join(t.TempDir(), "events.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var decoded []map[string]any
	for i, line := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i+1, err)
		}
		decoded = append(decoded, m)
	}

	if got := decoded[0]["SessionID"]; got != "send-1" {
		t.Errorf("SessionID = %v, want send-1", got)
	}
	if decoded[0]["Frame"] == nil {
		t.Error("first line lost its frame payload")
	}
	if decoded[1]["Control"] == nil {
		t.Error("second line lost its control payload")
	}
}

func TestExportToCSV(t *testing.T) {
	ts := time.Date(2026, 2, 3, 9, 30, 15, 0, time.UTC)
	path := writeTraceFile(t,
		trace.Event{
			Timestamp: ts,
			SessionID: "send-1",
			Direction: trace.DirectionOut,
			Layer:     trace.LayerTransport,
			Category:  trace.CategoryFrame,
			Role:      trace.RoleSender,
			Endpoint:  "serial:/dev/ttyUSB0",
			Frame:     &trace.FrameEvent{Marker: 0x01, Block: 5, Size: 133},
		},
		trace.Event{
			Timestamp: ts.Add(time.Second),
			SessionID: "send-1",
			Direction: trace.DirectionIn,
			Layer:     trace.LayerProtocol,
			Category:  trace.CategoryControl,
			Role:      trace.RoleSender,
			Control:   &trace.ControlEvent{Byte: 0x06, Name: "ACK"},
		},
	)
	out := filepath.Join(t.TempDir(), "events.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}

	header := []string{"timestamp", "session_id", "role", "direction", "layer", "category", "endpoint", "type", "block"}
	if !reflect.DeepEqual(rows[0], header) {
		t.Errorf("header = %v, want %v", rows[0], header)
	}

	frame := rows[1]
	if frame[0] != "2026-02-03T09:30:15.000000Z" {
		t.Errorf("timestamp cell = %q", frame[0])
	}
	if frame[2] != "SENDER" || frame[3] != "OUT" || frame[6] != "serial:/dev/ttyUSB0" {
		t.Errorf("unexpected frame row: %v", frame)
	}
	if frame[7] != "frame" || frame[8] != "5" {
		t.Errorf("frame row type/block = %q/%q, want frame/5", frame[7], frame[8])
	}

	control := rows[2]
	if control[7] != "ACK" || control[8] != "" {
		t.Errorf("control row type/block = %q/%q, want ACK and no block", control[7], control[8])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := writeTraceFile(t,
		trace.Event{Timestamp: time.Now(), SessionID: "send-1", Category: trace.CategoryControl},
	)

	err := RunExport(path, "xml", filepath.Join(t.TempDir(), "events.xml"))
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExportMissingFile(t *testing.T) {
	if err := RunExport(filepath.Join(t.TempDir(), "absent.xlog"), "jsonl", ""); err == nil {
		t.Fatal("expected error for missing input file")
	}
}
