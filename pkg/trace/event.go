package trace

import (
	"time"
)

// Event is one protocol observation: a data frame, a control byte, a
// state transition, or an error. Events are serialized with integer
// CBOR keys to keep trace files compact.
//
// Exactly one of the detail fields is set, selected by Category.
// Endpoint names the transport the session ran over, in the form
// "tcp:host:port" or "serial:/dev/ttyUSB0".
type Event struct {
	Timestamp time.Time `cbor:"1,keyasint"`
	SessionID string    `cbor:"2,keyasint"`
	Direction Direction `cbor:"3,keyasint"`
	Layer     Layer     `cbor:"4,keyasint"`
	Category  Category  `cbor:"5,keyasint"`
	Role      Role      `cbor:"6,keyasint"`
	Endpoint  string    `cbor:"7,keyasint,omitempty"`

	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Control     *ControlEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction tells which way the traced bytes moved, relative to the
// local endpoint.
type Direction uint8

const (
	DirectionIn  Direction = 0 // arrived from the peer
	DirectionOut Direction = 1 // sent to the peer
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer tells where in the stack the event was observed.
type Layer uint8

const (
	LayerTransport Layer = 0 // raw data frames on the wire
	LayerProtocol  Layer = 1 // control bytes: ACK, NAK, EOT, CAN, 'C'
	LayerSession   Layer = 2 // state machine transitions
)

func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerProtocol:
		return "PROTOCOL"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category names the kind of event and determines which detail field
// carries its payload.
type Category uint8

const (
	CategoryFrame   Category = 0
	CategoryControl Category = 1
	CategoryState   Category = 2
	CategoryError   Category = 3
)

func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role is the local endpoint's part in the transfer.
type Role uint8

const (
	RoleSender   Role = 0
	RoleReceiver Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleSender:
		return "SENDER"
	case RoleReceiver:
		return "RECEIVER"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent records one data frame. Data holds at most a short prefix
// of the raw bytes; Truncated reports whether anything was cut.
type FrameEvent struct {
	Marker    byte   `cbor:"1,keyasint"` // SOH or STX
	Block     byte   `cbor:"2,keyasint"`
	Size      int    `cbor:"3,keyasint"` // full frame length, header and trailer included
	Data      []byte `cbor:"4,keyasint,omitempty"`
	Truncated bool   `cbor:"5,keyasint,omitempty"`
}

// ControlEvent records a single control byte, with its protocol name
// when the value is a known one.
type ControlEvent struct {
	Byte byte   `cbor:"1,keyasint"`
	Name string `cbor:"2,keyasint,omitempty"`
}

// StateChangeEvent records a state machine transition. OldState is
// empty for the first transition of a session.
type StateChangeEvent struct {
	OldState string `cbor:"1,keyasint,omitempty"`
	NewState string `cbor:"2,keyasint"`
	Reason   string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData records an error, including recoverable ones such as
// a corrupt frame that the protocol will retry. Fatal marks the errors
// that ended the session.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
	Context string `cbor:"3,keyasint,omitempty"`
	Fatal   bool   `cbor:"4,keyasint,omitempty"`
}
