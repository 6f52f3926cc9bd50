// Command xmodem-term is an interactive console for XMODEM transfers.
//
// It keeps one link open across multiple transfers and drives the
// protocol engine through a small command set with line editing,
// history, and completion.
//
// Usage:
//
//	xmodem-term [flags]
//
// Flags:
//
//	-port string      Serial device path (e.g. /dev/ttyUSB0)
//	-baud int         Serial baud rate (default 115200)
//	-connect string   TCP address to dial (host:port)
//	-block int        Block size: 128 or 1024 (default 128)
//	-crc              Use CRC-16 block checks (default true)
//	-timeout duration Per-read timeout (default 1s)
//	-retries int      Retry budget per block (default 10)
//	-trace string     Write protocol traces to this .xlog file
//	-config string    YAML configuration file
//	-v                Log protocol events to stderr
//
// Commands:
//
//	open            Open the configured transport
//	close           Close the transport
//	send <file>     Send a file over the open link
//	recv <file>     Receive into a file over the open link
//	mode [...]      Show or set the transfer mode, e.g. "mode 1024 crc"
//	trace [...]     Show, set, or disable the trace file
//	status          Show link, mode, and trace state
//	help            List commands
//	quit            Exit
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/xmodem-protocol/xmodem-go/internal/cli"
	"github.com/xmodem-protocol/xmodem-go/pkg/progress"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
	"github.com/xmodem-protocol/xmodem-go/pkg/transport"
	"github.com/xmodem-protocol/xmodem-go/pkg/xmodem"
)

const help = `Commands:
  open            Open the configured transport
  close           Close the transport
  send <file>     Send a file over the open link
  recv <file>     Receive into a file over the open link
  mode [128|1024] [crc|classic]
                  Show or set the transfer mode
  trace [path|off]
                  Show, set, or disable the trace file
  status          Show link, mode, and trace state
  help            Show this help
  quit            Exit
`

var (
	opts       cli.Options
	configFile string
	verbose    bool
)

func init() {
	flag.StringVar(&opts.Port, "port", "", "Serial device path (e.g. /dev/ttyUSB0)")
	flag.IntVar(&opts.Baud, "baud", 115200, "Serial baud rate")
	flag.StringVar(&opts.Connect, "connect", "", "TCP address to dial (host:port)")
	flag.IntVar(&opts.Block, "block", 128, "Block size: 128 or 1024")
	flag.BoolVar(&opts.CRC, "crc", true, "Use CRC-16 block checks")
	flag.DurationVar(&opts.Timeout, "timeout", 0, "Per-read timeout (default 1s)")
	flag.IntVar(&opts.Retries, "retries", 0, "Retry budget per block (default 10)")
	flag.StringVar(&opts.Trace, "trace", "", "Write protocol traces to this .xlog file")
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.BoolVar(&verbose, "v", false, "Log protocol events to stderr")
}

func main() {
	flag.Parse()

	if flag.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected argument %q\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	if configFile != "" {
		fileCfg, err := cli.LoadFileConfig(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if err := cli.ApplyFile(&opts, fileCfg, cli.VisitedFlags()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}

	if err := opts.ValidateTransfer(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	c := &console{opts: opts, verbose: verbose, out: os.Stdout}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "xmodem> ",
		HistoryFile:       historyFile(),
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !c.dispatch(line) {
			break
		}
	}

	c.cmdClose(true)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".xmodem_term_history")
	}
	return filepath.Join(home, ".xmodem_term_history")
}

func completer() *readline.PrefixCompleter {
	files := readline.PcItemDynamic(listFiles("."))
	return readline.NewPrefixCompleter(
		readline.PcItem("open"),
		readline.PcItem("close"),
		readline.PcItem("send", files),
		readline.PcItem("recv", files),
		readline.PcItem("mode",
			readline.PcItem("128", readline.PcItem("crc"), readline.PcItem("classic")),
			readline.PcItem("1024", readline.PcItem("crc"), readline.PcItem("classic")),
		),
		readline.PcItem("trace", readline.PcItem("off")),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// listFiles feeds path completion for send and recv.
func listFiles(dir string) func(string) []string {
	return func(string) []string {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return names
	}
}

// console is the interactive session state.
type console struct {
	opts    cli.Options
	verbose bool
	out     io.Writer

	t        transport.ByteTransport
	closer   io.Closer
	endpoint string
}

// dispatch runs one command line. It returns false when the console
// should exit.
func (c *console) dispatch(line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "open":
		c.cmdOpen()
	case "close":
		c.cmdClose(false)
	case "send":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: send <file>")
			return true
		}
		c.cmdSend(fields[1])
	case "recv":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: recv <file>")
			return true
		}
		c.cmdRecv(fields[1])
	case "mode":
		c.cmdMode(fields[1:])
	case "trace":
		c.cmdTrace(fields[1:])
	case "status":
		c.cmdStatus()
	case "help":
		fmt.Fprint(c.out, help)
	case "quit", "exit":
		return false
	default:
		fmt.Fprintf(c.out, "unknown command %q (try help)\n", fields[0])
	}
	return true
}

func (c *console) cmdOpen() {
	if c.t != nil {
		fmt.Fprintf(c.out, "already open: %s\n", c.endpoint)
		return
	}
	if err := c.opts.ValidateTransport(); err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}

	t, closer, endpoint, err := cli.OpenTransport(c.opts)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}

	c.t, c.closer, c.endpoint = t, closer, endpoint
	fmt.Fprintf(c.out, "open: %s\n", endpoint)
}

func (c *console) cmdClose(quiet bool) {
	if c.t == nil {
		if !quiet {
			fmt.Fprintln(c.out, "not open")
		}
		return
	}
	if c.closer != nil {
		c.closer.Close()
	}
	c.t, c.closer, c.endpoint = nil, nil, ""
	if !quiet {
		fmt.Fprintln(c.out, "closed")
	}
}

func (c *console) cmdSend(path string) {
	if c.t == nil {
		fmt.Fprintln(c.out, "no open link (use open)")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}

	tracker := progress.NewTracker(paddedTotal(len(data), c.opts.Block))
	tracker.OnUpdate(cli.RenderProgress(os.Stderr), 200*time.Millisecond)

	logger, closeTrace, err := cli.NewTraceLogger(c.opts.Trace, c.verbose,
		progress.NewFrameLogger(tracker, trace.DirectionOut))
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	defer closeTrace()

	sender, err := xmodem.NewSenderWithConfig(c.t, data, c.opts.SessionConfig(logger, c.endpoint))
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}

	stop := cli.CancelOnInterrupt(sender.Cancel)
	defer stop()

	start := time.Now()
	n, err := sender.Run()
	tracker.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		fmt.Fprintf(c.out, "send failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "sent %s in %s\n",
		cli.FormatBytes(int64(n)), time.Since(start).Round(10*time.Millisecond))
}

func (c *console) cmdRecv(path string) {
	if c.t == nil {
		fmt.Fprintln(c.out, "no open link (use open)")
		return
	}

	out, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	defer out.Close()

	tracker := progress.NewTracker(0)
	tracker.OnUpdate(cli.RenderProgress(os.Stderr), 200*time.Millisecond)
	sink := progress.NewWriter(out, tracker)

	logger, closeTrace, err := cli.NewTraceLogger(c.opts.Trace, c.verbose)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	defer closeTrace()

	receiver, err := xmodem.NewReceiverWithConfig(c.t, sink, c.opts.SessionConfig(logger, c.endpoint))
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}

	stop := cli.CancelOnInterrupt(receiver.Cancel)
	defer stop()

	start := time.Now()
	n, err := receiver.Run()
	tracker.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		fmt.Fprintf(c.out, "recv failed: %v\n", err)
		if n > 0 {
			fmt.Fprintf(c.out, "partial file kept: %s (%s)\n", path, cli.FormatBytes(int64(n)))
		}
		return
	}
	fmt.Fprintf(c.out, "received %s in %s\n",
		cli.FormatBytes(int64(n)), time.Since(start).Round(10*time.Millisecond))
}

func (c *console) cmdMode(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(c.out, "mode: %s\n", c.opts.Mode())
		return
	}

	next := c.opts
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "128":
			next.Block = 128
		case "1024", "1k":
			next.Block = 1024
		case "crc", "crc16":
			next.CRC = true
		case "classic", "checksum":
			next.CRC = false
		default:
			fmt.Fprintf(c.out, "unknown mode argument %q (want 128, 1024, crc, or classic)\n", arg)
			return
		}
	}

	c.opts = next
	fmt.Fprintf(c.out, "mode: %s\n", c.opts.Mode())
}

func (c *console) cmdTrace(args []string) {
	switch {
	case len(args) == 0:
		if c.opts.Trace == "" {
			fmt.Fprintln(c.out, "trace: off")
		} else {
			fmt.Fprintf(c.out, "trace: %s\n", c.opts.Trace)
		}
	case args[0] == "off":
		c.opts.Trace = ""
		fmt.Fprintln(c.out, "trace: off")
	default:
		c.opts.Trace = args[0]
		fmt.Fprintf(c.out, "trace: %s\n", c.opts.Trace)
	}
}

func (c *console) cmdStatus() {
	if c.t == nil {
		fmt.Fprintln(c.out, "link:  closed")
	} else {
		fmt.Fprintf(c.out, "link:  open %s\n", c.endpoint)
	}
	fmt.Fprintf(c.out, "mode:  %s\n", c.opts.Mode())
	if c.opts.Trace == "" {
		fmt.Fprintln(c.out, "trace: off")
	} else {
		fmt.Fprintf(c.out, "trace: %s\n", c.opts.Trace)
	}
}

// paddedTotal returns the on-wire payload total for a file of n bytes.
func paddedTotal(n, block int) int64 {
	if n == 0 {
		return 0
	}
	blocks := (n + block - 1) / block
	return int64(blocks * block)
}
