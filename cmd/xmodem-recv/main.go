// Command xmodem-recv receives a single file over XMODEM.
//
// The receiver drives the handshake: it requests CRC-16 mode (falling
// back to the classic checksum when -crc=false or the sender stays
// silent), acknowledges blocks as they arrive, and writes the payload
// to the output file. The link is a serial port, a dialed TCP
// connection, stdin/stdout, or one accepted TCP client in listen mode.
//
// XMODEM pads the final block, so the output file length is always a
// multiple of the block size.
//
// Usage:
//
//	xmodem-recv [flags] <file>
//
// Flags:
//
//	-port string      Serial device path (e.g. /dev/ttyUSB0)
//	-baud int         Serial baud rate (default 115200)
//	-connect string   TCP address to dial (host:port)
//	-stdio            Use stdin/stdout as the link
//	-listen string    TCP listen address (e.g. :7021), accepts one sender
//	-advertise string mDNS instance name to advertise in listen mode
//	-block int        Expected block size: 128 or 1024 (default 128)
//	-crc              Request CRC-16 block checks (default true)
//	-timeout duration Per-read timeout (default 1s)
//	-retries int      Retry budget per block (default 10)
//	-trace string     Write a protocol trace to this .xlog file
//	-config string    YAML configuration file
//	-v                Log protocol events to stderr
//
// Examples:
//
//	# Receive over a serial port
//	xmodem-recv -port /dev/ttyUSB0 firmware.bin
//
//	# Wait for a sender on TCP and announce the service via mDNS
//	xmodem-recv -listen :7021 -advertise lab-rig firmware.bin
//
// Exit codes: 0 on success, 1 on transfer failure, 2 on usage errors.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/xmodem-protocol/xmodem-go/internal/cli"
	"github.com/xmodem-protocol/xmodem-go/pkg/discovery"
	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
	"github.com/xmodem-protocol/xmodem-go/pkg/progress"
	"github.com/xmodem-protocol/xmodem-go/pkg/transport"
	"github.com/xmodem-protocol/xmodem-go/pkg/xmodem"
)

var (
	opts       cli.Options
	listenAddr string
	advertise  string
	configFile string
	verbose    bool
)

func init() {
	flag.StringVar(&opts.Port, "port", "", "Serial device path (e.g. /dev/ttyUSB0)")
	flag.IntVar(&opts.Baud, "baud", 115200, "Serial baud rate")
	flag.StringVar(&opts.Connect, "connect", "", "TCP address to dial (host:port)")
	flag.BoolVar(&opts.Stdio, "stdio", false, "Use stdin/stdout as the link")
	flag.StringVar(&listenAddr, "listen", "", "TCP listen address (e.g. :7021), accepts one sender")
	flag.StringVar(&advertise, "advertise", "", "mDNS instance name to advertise in listen mode")
	flag.IntVar(&opts.Block, "block", 128, "Expected block size: 128 or 1024")
	flag.BoolVar(&opts.CRC, "crc", true, "Request CRC-16 block checks")
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
		usageError("exactly one output file required")
	}
	outPath := flag.Arg(0)

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
	if listenAddr != "" {
		if opts.Port != "" || opts.Connect != "" || opts.Stdio {
			usageError("-listen excludes -port, -connect, and -stdio")
		}
	} else {
		if advertise != "" {
			usageError("-advertise requires -listen")
		}
		if err := opts.ValidateTransport(); err != nil {
			usageError(err.Error())
		}
	}

	restore, err := cli.EnterRawMode(opts.Stdio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		t        transport.ByteTransport
		closer   io.Closer
		endpoint string
		cleanup  = func() {}
	)
	if listenAddr != "" {
		conn, ep, stopAd, err := listenForSender()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		t, closer, endpoint, cleanup = conn, conn, ep, stopAd
	} else {
		t, closer, endpoint, err = cli.OpenTransport(opts)
		if err != nil {
			restore()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if closer != nil {
		defer closer.Close()
	}
	defer cleanup()

	out, err := os.Create(outPath)
	if err != nil {
		restore()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The sender never announces a file size, so the total is unknown.
	tracker := progress.NewTracker(0)
	tracker.OnUpdate(cli.RenderProgress(os.Stderr), 200*time.Millisecond)
	sink := progress.NewWriter(out, tracker)

	logger, closeTrace, err := cli.NewTraceLogger(opts.Trace, verbose)
	if err != nil {
		restore()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	receiver, err := xmodem.NewReceiverWithConfig(t, sink, opts.SessionConfig(logger, endpoint))
	if err != nil {
		restore()
		closeTrace()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	stop := cli.CancelOnInterrupt(receiver.Cancel)
	defer stop()

	start := time.Now()
	n, err := receiver.Run()
	tracker.Finish()
	fmt.Fprintln(os.Stderr)

	restore()
	closeTrace()

	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Transfer failed: %v\n", err)
		if n > 0 {
			fmt.Fprintf(os.Stderr, "Partial file kept: %s (%s)\n", outPath, cli.FormatBytes(int64(n)))
		}
		os.Exit(1)
	}

	elapsed := time.Since(start).Round(10 * time.Millisecond)
	fmt.Fprintf(os.Stderr, "Received %s in %s\n", cli.FormatBytes(int64(n)), elapsed)
}

// listenForSender serves exactly one inbound TCP connection, optionally
// advertising the receiver over mDNS while waiting. The returned stop
// function withdraws the advertisement.
func listenForSender() (*transport.Conn, string, func(), error) {
	console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, "", nil, err
	}

	cleanup := func() {}
	if advertise != "" {
		txt := discovery.TXTInfo{
			Role:      discovery.RoleReceiver,
			BlockSize: frame.BlockSize(opts.Block),
			Checksum:  opts.Mode().Kind,
		}
		port := ln.Addr().(*net.TCPAddr).Port

		ad, err := discovery.Advertise(advertise, port, txt)
		if err != nil {
			ln.Close()
			return nil, "", nil, fmt.Errorf("advertise: %w", err)
		}
		cleanup = ad.Shutdown
		console.Info().Str("instance", advertise).Int("port", port).Msg("advertising receiver")
	}

	console.Info().Str("addr", ln.Addr().String()).Msg("waiting for sender")

	conn, err := ln.Accept()
	ln.Close()
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	console.Info().Str("peer", conn.RemoteAddr().String()).Msg("sender connected")

	return transport.NewConn(conn), "tcp:" + conn.RemoteAddr().String(), cleanup, nil
}
