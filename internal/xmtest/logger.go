package xmtest

import (
	"sync"

	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

// CapturingLogger records every trace event it is handed, for
// assertions on what a session logged.
type CapturingLogger struct {
	mu     sync.Mutex
	events []trace.Event
}

// NewCapturingLogger creates an empty capturing logger.
func NewCapturingLogger() *CapturingLogger {
	return &CapturingLogger{}
}

// Log records the event.
func (c *CapturingLogger) Log(event trace.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of every recorded event in order.
func (c *CapturingLogger) Events() []trace.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]trace.Event(nil), c.events...)
}

// ByCategory returns the recorded events of one category, in order.
func (c *CapturingLogger) ByCategory(cat trace.Category) []trace.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []trace.Event
	for _, ev := range c.events {
		if ev.Category == cat {
			out = append(out, ev)
		}
	}
	return out
}

// Len returns how many events were recorded.
func (c *CapturingLogger) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

var _ trace.Logger = (*CapturingLogger)(nil)
