package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

// FilterOptions holds the raw flag values of the filter command. All
// criteria are optional; empty means unconstrained.
type FilterOptions struct {
	Output    string
	Session   string
	Role      string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// buildFilter validates the raw options into a trace.Filter.
func buildFilter(opts FilterOptions) (trace.Filter, error) {
	filter := trace.Filter{SessionID: opts.Session}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return trace.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return trace.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if opts.Layer != "" {
		l, err := ParseLayerFlag(opts.Layer)
		if err != nil {
			return trace.Filter{}, err
		}
		filter.Layer = &l
	}
	if opts.Direction != "" {
		d, err := ParseDirectionFlag(opts.Direction)
		if err != nil {
			return trace.Filter{}, err
		}
		filter.Direction = &d
	}
	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return trace.Filter{}, err
		}
		filter.Category = &c
	}
	if opts.Role != "" {
		r, err := ParseRoleFlag(opts.Role)
		if err != nil {
			return trace.Filter{}, err
		}
		filter.Role = &r
	}

	return filter, nil
}

// RunFilter copies the matching events of the trace at path into a new
// trace file and reports how many were kept.
func RunFilter(path string, opts FilterOptions, w io.Writer) error {
	filter, err := buildFilter(opts)
	if err != nil {
		return err
	}

	reader, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	out, err := trace.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output trace: %w", err)
	}
	defer out.Close()

	kept := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		out.Log(event)
		kept++
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", kept, opts.Output)
	return nil
}
