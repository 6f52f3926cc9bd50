package trace

// Logger receives protocol events from a running session. Implementations
// must be safe for concurrent use and should return quickly; a slow sink
// stalls the transfer it is observing.
type Logger interface {
	Log(ev Event)
}

// NoopLogger discards every event. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
