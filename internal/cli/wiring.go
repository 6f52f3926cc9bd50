package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/xmodem-protocol/xmodem-go/pkg/progress"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
	"github.com/xmodem-protocol/xmodem-go/pkg/transport"
)

// OpenTransport opens the transport the options select. The returned
// closer is nil for stdio, where the process owns the descriptors. The
// endpoint string describes the link for trace events. A TCP connect
// retries a few times under the default backoff before giving up, for
// bridges that take a moment to come back.
func OpenTransport(o Options) (t transport.ByteTransport, closer io.Closer, endpoint string, err error) {
	switch {
	case o.Stdio:
		return transport.NewStream(os.Stdin, os.Stdout), nil, "stdio", nil

	case o.Connect != "":
		c, err := transport.DialRetry(context.Background(), "tcp", o.Connect,
			&transport.Backoff{MaxRetries: 3})
		if err != nil {
			return nil, nil, "", err
		}
		return c, c, "tcp:" + o.Connect, nil

	case o.Port != "":
		s, err := transport.OpenSerial(transport.SerialConfig{
			Device:   o.Port,
			BaudRate: o.Baud,
		})
		if err != nil {
			return nil, nil, "", err
		}
		return s, s, "serial:" + o.Port, nil

	default:
		return nil, nil, "", ErrNoTransport
	}
}

// NewTraceLogger assembles the session's trace logger: a CBOR file
// logger when path is non-empty, a console adapter when verbose, plus
// any extra loggers (progress hooks). The returned close function
// flushes the file logger and is never nil. A nil logger means nothing
// was enabled.
func NewTraceLogger(path string, verbose bool, extras ...trace.Logger) (trace.Logger, func(), error) {
	var loggers []trace.Logger
	closeFn := func() {}

	if path != "" {
		fl, err := trace.NewFileLogger(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() { fl.Close() }
	}

	if verbose {
		console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
		loggers = append(loggers, trace.NewZerologAdapter(console))
	}

	for _, e := range extras {
		if e != nil {
			loggers = append(loggers, e)
		}
	}

	switch len(loggers) {
	case 0:
		return nil, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return trace.NewMultiLogger(loggers...), closeFn, nil
	}
}

// RenderProgress returns an update callback that rewrites a single
// progress line on w. Callers print a final newline when the transfer
// ends.
func RenderProgress(w io.Writer) func(progress.Snapshot) {
	return func(s progress.Snapshot) {
		if s.Total > 0 {
			fmt.Fprintf(w, "\r%6.1f%%  %s / %s  %s/s  ETA %s ",
				s.Percent,
				FormatBytes(s.Transferred), FormatBytes(s.Total),
				FormatBytes(int64(s.Rate)),
				s.ETA.Round(time.Second))
			return
		}
		fmt.Fprintf(w, "\r%s  %s/s ", FormatBytes(s.Transferred), FormatBytes(int64(s.Rate)))
	}
}

// FormatBytes formats a byte count in binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// EnterRawMode puts the controlling terminal into raw mode when stdio
// is the wire and stdin is a terminal. The returned restore function
// is never nil.
func EnterRawMode(stdio bool) (func(), error) {
	if !stdio || !term.IsTerminal(int(os.Stdin.Fd())) {
		return func() {}, nil
	}

	old, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return func() {}, fmt.Errorf("cannot enter raw mode: %w", err)
	}
	return func() { term.Restore(int(os.Stdin.Fd()), old) }, nil
}

// CancelOnInterrupt requests a graceful session cancel on the first
// SIGINT or SIGTERM and exits outright on the second. The returned
// stop function releases the handler.
func CancelOnInterrupt(cancel func()) func() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		if _, ok := <-ch; !ok {
			return
		}
		cancel()
		if _, ok := <-ch; ok {
			os.Exit(130)
		}
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
