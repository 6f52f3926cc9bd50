// Command xmodem-log inspects trace files captured with the -trace
// flag of xmodem-send, xmodem-recv, and xmodem-term.
//
// The view command prints events as text, export converts a capture to
// JSONL or CSV, filter narrows a capture into a new file, and stats
// summarizes sessions, frame counts, and retransmissions.
//
// Typical invocations:
//
//	xmodem-log view -category control transfer.xlog
//	xmodem-log export -format csv -o events.csv transfer.xlog
//	xmodem-log filter -session 8fa3 -o narrowed.xlog transfer.xlog
//	xmodem-log stats transfer.xlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xmodem-protocol/xmodem-go/cmd/xmodem-log/commands"
)

const usage = `xmodem-log inspects XMODEM trace files.

Usage:

  xmodem-log <command> [flags] <file.xlog>

Commands:

  view      print events as text
  export    convert a trace to jsonl or csv
  filter    write matching events to a new trace
  stats     summarize sessions and traffic

Run "xmodem-log <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "help", "-h", "-help", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "xmodem-log: "+format+"\n", args...)
	os.Exit(1)
}

// newFlagSet builds a subcommand flag set with a uniform usage text.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "xmodem-log %s: %s\n\nUsage:\n\n  xmodem-log %s [flags] <file.xlog>\n\nFlags:\n\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// requirePath returns the positional trace file argument, exiting with
// usage when it is missing.
func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "missing trace file argument")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := newFlagSet("view", "print events as text")
	layer := fs.String("layer", "", "Keep only this layer (transport, protocol, session)")
	direction := fs.String("direction", "", "Keep only this direction (in, out)")
	category := fs.String("category", "", "Keep only this category (frame, control, state, error)")
	role := fs.String("role", "", "Keep only this role (sender, receiver)")
	session := fs.String("session", "", "Keep only this session ID")
	fs.Parse(args)

	path := requirePath(fs)
	filter := commands.ViewFilter{Session: *session}

	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fatalf("%v", err)
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fatalf("%v", err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fatalf("%v", err)
		}
		filter.Category = &c
	}
	if *role != "" {
		r, err := commands.ParseRoleFlag(*role)
		if err != nil {
			fatalf("%v", err)
		}
		filter.Role = &r
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatalf("%v", err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "convert a trace to jsonl or csv")
	format := fs.String("format", "jsonl", "Target format: jsonl or csv")
	output := fs.String("o", "", "Destination file (stdout when empty)")
	fs.Parse(args)

	path := requirePath(fs)
	if err := commands.RunExport(path, *format, *output); err != nil {
		fatalf("%v", err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "write matching events to a new trace")
	output := fs.String("o", "", "Destination trace file")
	session := fs.String("session", "", "Keep only this session ID")
	role := fs.String("role", "", "Keep only this role (sender, receiver)")
	timeStart := fs.String("time-start", "", "Drop events before this RFC3339 time")
	timeEnd := fs.String("time-end", "", "Drop events at or after this RFC3339 time")
	layer := fs.String("layer", "", "Keep only this layer (transport, protocol, session)")
	direction := fs.String("direction", "", "Keep only this direction (in, out)")
	category := fs.String("category", "", "Keep only this category (frame, control, state, error)")
	fs.Parse(args)

	path := requirePath(fs)
	if *output == "" {
		fmt.Fprintln(os.Stderr, "the -o flag is required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		Session:   *session,
		Role:      *role,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
	}
	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fatalf("%v", err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "summarize sessions and traffic")
	fs.Parse(args)

	path := requirePath(fs)
	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatalf("%v", err)
	}
}
