package progress

import "io"

// Writer counts bytes flowing into an io.Writer. Wrap a receive sink
// with it to feed a tracker.
type Writer struct {
	w io.Writer
	t *Tracker
}

// NewWriter wraps w so every successful write is added to t.
func NewWriter(w io.Writer, t *Tracker) *Writer {
	return &Writer{w: w, t: t}
}

// Write forwards to the wrapped writer and counts what it accepted.
func (pw *Writer) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	if n > 0 {
		pw.t.Add(n)
	}
	return n, err
}

var _ io.Writer = (*Writer)(nil)
