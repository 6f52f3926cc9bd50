// Package trace provides structured protocol logging for XMODEM
// sessions.
//
// This package defines the Logger interface and Event types for
// capturing protocol-level events at multiple layers (transport,
// protocol, session). It is separate from operational logging - a trace
// is a complete machine-readable record of a transfer for debugging and
// analysis: every frame, every control byte, every state transition,
// every retry.
//
// # Basic Usage
//
// Sessions are configured with a Logger implementation:
//
//	cfg := xmodem.DefaultConfig()
//
//	// Watch a transfer live on the console
//	cfg.Logger = trace.NewSlogAdapter(slog.Default())
//
//	// Keep a machine-readable capture
//	fl, _ := trace.NewFileLogger("transfer.xlog")
//	cfg.Logger = fl
//
//	// Or both at once
//	cfg.Logger = trace.NewMultiLogger(trace.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
// Each event is observed at one of three layers:
//   - Transport: data frames on the wire (FrameEvent)
//   - Protocol: single control bytes (ControlEvent)
//   - Session: state machine transitions (StateChangeEvent)
//
// Errors at any layer use ErrorEventData; recoverable retries are
// logged as errors too, so a trace shows exactly how noisy a link was.
//
// # File Format
//
// Trace files use CBOR encoding with the .xlog extension. The
// xmodem-log CLI tool provides viewing, filtering, statistics, and
// export.
package trace
