package trace

import (
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects a subset of a trace file. The zero value matches every
// event; set fields are combined with AND.
type Filter struct {
	SessionID string // exact match
	Direction *Direction
	Layer     *Layer
	Category  *Category
	Role      *Role
	TimeStart *time.Time // inclusive
	TimeEnd   *time.Time // exclusive
}

func (f *Filter) matches(ev Event) bool {
	switch {
	case f.SessionID != "" && ev.SessionID != f.SessionID:
		return false
	case f.Direction != nil && ev.Direction != *f.Direction:
		return false
	case f.Layer != nil && ev.Layer != *f.Layer:
		return false
	case f.Category != nil && ev.Category != *f.Category:
		return false
	case f.Role != nil && ev.Role != *f.Role:
		return false
	case f.TimeStart != nil && ev.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !ev.Timestamp.Before(*f.TimeEnd):
		return false
	}
	return true
}

// Reader iterates over the events of a trace file, decoding lazily so
// large captures never have to fit in memory.
type Reader struct {
	f      *os.File
	dec    *cbor.Decoder
	filter Filter
}

// NewReader opens path and yields every event in it.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and yields only events accepted by filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f, dec: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event. After the last one it returns
// io.EOF; any other error means the file is truncated or corrupt.
func (r *Reader) Next() (Event, error) {
	for {
		var ev Event
		if err := r.dec.Decode(&ev); err != nil {
			return Event{}, err
		}
		if r.filter.matches(ev) {
			return ev, nil
		}
	}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
