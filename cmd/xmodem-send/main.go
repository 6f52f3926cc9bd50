// Command xmodem-send transmits a single file over XMODEM.
//
// The sender is the passive side of the handshake: it waits for the
// receiver's mode request, then streams the file block by block and
// finishes with EOT. The link is a serial port, a TCP connection, or
// stdin/stdout.
//
// Usage:
//
//	xmodem-send [flags] <file>
//
// Flags:
//
//	-port string      Serial device path (e.g. /dev/ttyUSB0)
//	-baud int         Serial baud rate (default 115200)
//	-connect string   TCP address to dial (host:port)
//	-stdio            Use stdin/stdout as the link
//	-block int        Block size: 128 or 1024 (default 128)
//	-crc              Offer CRC-16 block checks (default true)
//	-timeout duration Per-read timeout (default 1s)
//	-retries int      Retry budget per block (default 10)
//	-trace string     Write a protocol trace to this .xlog file
//	-config string    YAML configuration file
//	-v                Log protocol events to stderr
//
// Examples:
//
//	# Send over a serial port
//	xmodem-send -port /dev/ttyUSB0 firmware.bin
//
//	# Send 1K blocks over TCP
//	xmodem-send -connect 192.168.1.50:7021 -block 1024 firmware.bin
//
//	# Run as the transfer half of another program's pipe
//	socat EXEC:'xmodem-send -stdio firmware.bin' /dev/ttyUSB0,raw
//
// Exit codes: 0 on success, 1 on transfer failure, 2 on usage errors.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/xmodem-protocol/xmodem-go/internal/cli"
	"github.com/xmodem-protocol/xmodem-go/pkg/progress"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
	"github.com/xmodem-protocol/xmodem-go/pkg/xmodem"
)

var (
	opts       cli.Options
	configFile string
	verbose    bool
)

func init() {
	flag.StringVar(&opts.Port, "port", "", "Serial device path (e.g. /dev/ttyUSB0)")
	flag.IntVar(&opts.Baud, "baud", 115200, "Serial baud rate")
	flag.StringVar(&opts.Connect, "connect", "", "TCP address to dial (host:port)")
	flag.BoolVar(&opts.Stdio, "stdio", false, "Use stdin/stdout as the link")
	flag.IntVar(&opts.Block, "block", 128, "Block size: 128 or 1024")
	flag.BoolVar(&opts.CRC, "crc", true, "Offer CRC-16 block checks")
	flag.DurationVar(&opts.Timeout, "timeout", 0, "Per-read timeout (default 1s)")
	flag.IntVar(&opts.Retries, "retries", 0, "Retry budget per block (default 10)")
	flag.StringVar(&opts.Trace, "trace", "", "Write a protocol trace to this .xlog file")
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.BoolVar(&verbose, "v", false, "Log protocol events to stderr")
}

func usageError(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	flag.Usage()
	os.Exit(2)
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		usageError("exactly one file to send required")
	}
	filePath := flag.Arg(0)

	if configFile != "" {
		fileCfg, err := cli.LoadFileConfig(configFile)
		if err != nil {
			usageError(err.Error())
		}
		if err := cli.ApplyFile(&opts, fileCfg, cli.VisitedFlags()); err != nil {
			usageError(err.Error())
		}
	}

	if err := opts.ValidateTransfer(); err != nil {
		usageError(err.Error())
	}
	if err := opts.ValidateTransport(); err != nil {
		usageError(err.Error())
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	restore, err := cli.EnterRawMode(opts.Stdio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	t, closer, endpoint, err := cli.OpenTransport(opts)
	if err != nil {
		restore()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	// Progress counts payload bytes as frames go out, so the total is
	// the file length rounded up to whole blocks.
	tracker := progress.NewTracker(paddedTotal(len(data), opts.Block))
	tracker.OnUpdate(cli.RenderProgress(os.Stderr), 200*time.Millisecond)

	logger, closeTrace, err := cli.NewTraceLogger(opts.Trace, verbose,
		progress.NewFrameLogger(tracker, trace.DirectionOut))
	if err != nil {
		restore()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sender, err := xmodem.NewSenderWithConfig(t, data, opts.SessionConfig(logger, endpoint))
	if err != nil {
		restore()
		closeTrace()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	stop := cli.CancelOnInterrupt(sender.Cancel)
	defer stop()

	start := time.Now()
	n, err := sender.Run()
	tracker.Finish()
	fmt.Fprintln(os.Stderr)

	restore()
	closeTrace()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Transfer failed: %v\n", err)
		os.Exit(1)
	}

	elapsed := time.Since(start).Round(10 * time.Millisecond)
	fmt.Fprintf(os.Stderr, "Sent %s in %s\n", cli.FormatBytes(int64(n)), elapsed)
}

// paddedTotal returns the on-wire payload total for a file of n bytes.
func paddedTotal(n, block int) int64 {
	if n == 0 {
		return 0
	}
	blocks := (n + block - 1) / block
	return int64(blocks * block)
}
