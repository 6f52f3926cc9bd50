package trace

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Trace files are bare CBOR sequences: one map per event, integer keys,
// no length prefix or framing. Canonical encoding keeps the byte form
// deterministic, so identical events always encode identically.
var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: encoder mode: %v", err))
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("trace: decoder mode: %v", err))
	}
	return dm
}

// EncodeEvent marshals one event to its canonical CBOR form.
func EncodeEvent(ev Event) ([]byte, error) {
	return encMode.Marshal(ev)
}

// DecodeEvent unmarshals one CBOR-encoded event.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := decMode.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// NewEncoder returns a streaming encoder that appends events to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a streaming decoder that reads events from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
