package cli

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xmodem-protocol/xmodem-go/internal/xmtest"
	"github.com/xmodem-protocol/xmodem-go/pkg/progress"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

func TestOpenTransportRequiresSelection(t *testing.T) {
	_, _, _, err := OpenTransport(Options{})
	if !errors.Is(err, ErrNoTransport) {
		t.Errorf("expected ErrNoTransport, got %v", err)
	}
}

func TestOpenTransportStdio(t *testing.T) {
	tr, closer, endpoint, err := OpenTransport(Options{Stdio: true})
	if err != nil {
		t.Fatalf("OpenTransport failed: %v", err)
	}
	if tr == nil {
		t.Fatal("expected a transport")
	}
	if closer != nil {
		t.Error("stdio transport should not return a closer")
	}
	if endpoint != "stdio" {
		t.Errorf("endpoint = %q, want stdio", endpoint)
	}
}

func TestNewTraceLoggerNothingEnabled(t *testing.T) {
	logger, closeFn, err := NewTraceLogger("", false)
	if err != nil {
		t.Fatalf("NewTraceLogger failed: %v", err)
	}
	if logger != nil {
		t.Error("expected nil logger when nothing is enabled")
	}
	closeFn()
}

func TestNewTraceLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.xlog")

	logger, closeFn, err := NewTraceLogger(path, false)
	if err != nil {
		t.Fatalf("NewTraceLogger failed: %v", err)
	}
	if logger == nil {
		t.Fatal("expected a logger")
	}

	logger.Log(trace.Event{
		Timestamp: time.Now(),
		SessionID: "sess-1",
		Category:  trace.CategoryControl,
		Control:   &trace.ControlEvent{Byte: 0x06, Name: "ACK"},
	})
	closeFn()

	reader, err := trace.NewReader(path)
	if err != nil {
		t.Fatalf("failed to reopen trace file: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("failed to read event back: %v", err)
	}
	if event.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", event.SessionID)
	}

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after one event, got %v", err)
	}
}

func TestNewTraceLoggerIncludesExtras(t *testing.T) {
	capture := xmtest.NewCapturingLogger()

	logger, closeFn, err := NewTraceLogger("", false, capture)
	if err != nil {
		t.Fatalf("NewTraceLogger failed: %v", err)
	}
	defer closeFn()

	logger.Log(trace.Event{SessionID: "sess-1"})

	if capture.Len() != 1 {
		t.Errorf("expected 1 captured event, got %d", capture.Len())
	}
}

func TestNewTraceLoggerSkipsNilExtras(t *testing.T) {
	logger, closeFn, err := NewTraceLogger("", false, nil)
	if err != nil {
		t.Fatalf("NewTraceLogger failed: %v", err)
	}
	defer closeFn()

	if logger != nil {
		t.Error("nil extras alone should not produce a logger")
	}
}

func TestNewTraceLoggerBadPath(t *testing.T) {
	_, _, err := NewTraceLogger(filepath.Join(t.TempDir(), "no", "such", "dir", "t.xlog"), false)
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestRenderProgressKnownTotal(t *testing.T) {
	var buf bytes.Buffer
	render := RenderProgress(&buf)

	render(progress.Snapshot{
		Transferred: 512,
		Total:       1024,
		Percent:     50,
		Rate:        256,
		ETA:         2 * time.Second,
	})

	out := buf.String()
	if !strings.Contains(out, "50.0%") {
		t.Errorf("expected percentage, got %q", out)
	}
	if !strings.Contains(out, "512 B / 1.0 KiB") {
		t.Errorf("expected byte counts, got %q", out)
	}
	if !strings.Contains(out, "ETA 2s") {
		t.Errorf("expected ETA, got %q", out)
	}
	if !strings.HasPrefix(out, "\r") {
		t.Errorf("expected carriage return prefix, got %q", out)
	}
}

func TestRenderProgressUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	render := RenderProgress(&buf)

	render(progress.Snapshot{Transferred: 2048, Rate: 1024})

	out := buf.String()
	if strings.Contains(out, "%") {
		t.Errorf("unknown total should not print a percentage, got %q", out)
	}
	if !strings.Contains(out, "2.0 KiB") {
		t.Errorf("expected transferred count, got %q", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestVisitedFlagsEmptyBeforeParse(t *testing.T) {
	// The test binary parses its own flags, none of which are ours.
	set := VisitedFlags()
	for _, name := range []string{"port", "connect", "stdio", "block"} {
		if set[name] {
			t.Errorf("flag %q unexpectedly marked as set", name)
		}
	}
}
