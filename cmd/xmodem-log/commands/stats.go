package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

// Stats aggregates a whole trace file.
type Stats struct {
	TotalEvents int
	FirstEvent  time.Time
	LastEvent   time.Time

	ByLayer     map[trace.Layer]int
	ByCategory  map[trace.Category]int
	ByDirection map[trace.Direction]int

	// ControlCounts tallies control bytes by protocol name, making the
	// handshake and acknowledgement traffic visible per kind.
	ControlCounts map[string]int

	Sessions map[string]*SessionStats

	Errors      int
	FatalErrors int
}

// SessionStats aggregates the events of one transfer session.
type SessionStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	Role        trace.Role
	Endpoint    string
	Frames      int
	FrameBytes  int
	Retransmits int
	Errors      int

	lastBlock int
}

func newStats() *Stats {
	return &Stats{
		ByLayer:       make(map[trace.Layer]int),
		ByCategory:    make(map[trace.Category]int),
		ByDirection:   make(map[trace.Direction]int),
		ControlCounts: make(map[string]int),
		Sessions:      make(map[string]*SessionStats),
	}
}

// observe folds one event into the totals.
func (s *Stats) observe(ev trace.Event) {
	s.TotalEvents++
	s.ByLayer[ev.Layer]++
	s.ByCategory[ev.Category]++
	s.ByDirection[ev.Direction]++

	if s.FirstEvent.IsZero() || ev.Timestamp.Before(s.FirstEvent) {
		s.FirstEvent = ev.Timestamp
	}
	if ev.Timestamp.After(s.LastEvent) {
		s.LastEvent = ev.Timestamp
	}

	if ev.Control != nil {
		s.ControlCounts[eventLabel(ev)]++
	}
	if ev.Error != nil {
		s.Errors++
		if ev.Error.Fatal {
			s.FatalErrors++
		}
	}

	sess, ok := s.Sessions[ev.SessionID]
	if !ok {
		sess = &SessionStats{FirstSeen: ev.Timestamp, Role: ev.Role, lastBlock: -1}
		s.Sessions[ev.SessionID] = sess
	}
	sess.observe(ev)
}

func (sess *SessionStats) observe(ev trace.Event) {
	sess.Events++
	if ev.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = ev.Timestamp
	}
	if sess.Endpoint == "" && ev.Endpoint != "" {
		sess.Endpoint = ev.Endpoint
	}

	// A block number equal to the immediately preceding one is a
	// resend; the normal sequence always advances (mod 256).
	if ev.Frame != nil {
		sess.Frames++
		sess.FrameBytes += ev.Frame.Size
		if int(ev.Frame.Block) == sess.lastBlock {
			sess.Retransmits++
		}
		sess.lastBlock = int(ev.Frame.Block)
	}
	if ev.Error != nil {
		sess.Errors++
	}
}

// RunStats aggregates the trace at path and prints a summary report.
func RunStats(path string, w io.Writer) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.observe(event)
	}

	printStats(w, stats)
	return nil
}

func countLine(w io.Writer, name string, n int) {
	fmt.Fprintf(w, "  %-12s %d\n", name+":", n)
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== XMODEM Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.FirstEvent.Format(time.RFC3339), stats.LastEvent.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.LastEvent.Sub(stats.FirstEvent).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []trace.Layer{trace.LayerTransport, trace.LayerProtocol, trace.LayerSession} {
		if n := stats.ByLayer[layer]; n > 0 {
			countLine(w, layer.String(), n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []trace.Category{trace.CategoryFrame, trace.CategoryControl, trace.CategoryState, trace.CategoryError} {
		if n := stats.ByCategory[cat]; n > 0 {
			countLine(w, cat.String(), n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []trace.Direction{trace.DirectionIn, trace.DirectionOut} {
		if n := stats.ByDirection[dir]; n > 0 {
			countLine(w, dir.String(), n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Control Bytes:")
	for _, name := range controlOrder(stats.ControlCounts) {
		countLine(w, name, stats.ControlCounts[name])
	}
	fmt.Fprintln(w)

	printSessions(w, stats.Sessions)

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d", stats.Errors)
		if stats.FatalErrors > 0 {
			fmt.Fprintf(w, " (%d fatal)", stats.FatalErrors)
		}
		fmt.Fprintln(w)
	}
}

// controlOrder lists the counted control byte names in protocol order,
// then any unrecognized ones alphabetically.
func controlOrder(counts map[string]int) []string {
	known := []string{"C", "NAK", "ACK", "EOT", "CAN"}

	var names []string
	seen := make(map[string]bool)
	for _, name := range known {
		seen[name] = true
		if counts[name] > 0 {
			names = append(names, name)
		}
	}

	var rest []string
	for name := range counts {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func printSessions(w io.Writer, sessions map[string]*SessionStats) {
	fmt.Fprintf(w, "Sessions: %d\n", len(sessions))
	if len(sessions) == 0 {
		return
	}

	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return sessions[ids[i]].FirstSeen.Before(sessions[ids[j]].FirstSeen)
	})

	fmt.Fprintln(w)
	for _, id := range ids {
		sess := sessions[id]
		duration := sess.LastSeen.Sub(sess.FirstSeen).Round(time.Millisecond)
		fmt.Fprintf(w, "  [%s] %s, %d events, duration %s\n", shortSession(id), sess.Role, sess.Events, duration)
		if sess.Endpoint != "" {
			fmt.Fprintf(w, "           Endpoint: %s\n", sess.Endpoint)
		}
		if sess.Frames > 0 {
			fmt.Fprintf(w, "           Frames: %d (%d bytes on the wire", sess.Frames, sess.FrameBytes)
			if sess.Retransmits > 0 {
				fmt.Fprintf(w, ", %d retransmitted", sess.Retransmits)
			}
			fmt.Fprintln(w, ")")
		}
		if sess.Errors > 0 {
			fmt.Fprintf(w, "           Errors: %d\n", sess.Errors)
		}
	}
}
