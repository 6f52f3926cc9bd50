package trace

// MultiLogger fans each event out to several sinks, typically a trace
// file plus a console adapter. Nil entries are skipped, so callers can
// wire optional sinks without checking them first.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines the given loggers into one.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log forwards the event to every sink in order.
func (m *MultiLogger) Log(ev Event) {
	for _, s := range m.sinks {
		if s != nil {
			s.Log(ev)
		}
	}
}

var _ Logger = (*MultiLogger)(nil)
