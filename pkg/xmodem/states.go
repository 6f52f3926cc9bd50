package xmodem

// SenderState identifies the phase of a sender session.
type SenderState uint8

const (
	// SenderAwaitModeRequest waits for the receiver's opening byte.
	SenderAwaitModeRequest SenderState = iota

	// SenderSendingBlock encodes and writes the current block's frame.
	SenderSendingBlock

	// SenderAwaitAck waits for the response to the current block.
	SenderAwaitAck

	// SenderSendEOT writes the end-of-transmission byte.
	SenderSendEOT

	// SenderAwaitEOTAck waits for the EOT acknowledgment.
	SenderAwaitEOTAck

	// SenderDone is the success terminal state.
	SenderDone

	// SenderAborted is the failure terminal state.
	SenderAborted
)

// String returns a human-readable state name.
func (s SenderState) String() string {
	switch s {
	case SenderAwaitModeRequest:
		return "AWAIT_MODE_REQUEST"
	case SenderSendingBlock:
		return "SENDING_BLOCK"
	case SenderAwaitAck:
		return "AWAIT_ACK"
	case SenderSendEOT:
		return "SEND_EOT"
	case SenderAwaitEOTAck:
		return "AWAIT_EOT_ACK"
	case SenderDone:
		return "DONE"
	case SenderAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state ends the session.
func (s SenderState) Terminal() bool {
	return s == SenderDone || s == SenderAborted
}

// ReceiverState identifies the phase of a receiver session.
type ReceiverState uint8

const (
	// ReceiverRequestMode writes mode requests until a sender answers.
	ReceiverRequestMode ReceiverState = iota

	// ReceiverAwaitFrame reads and validates one frame at a time.
	ReceiverAwaitFrame

	// ReceiverDone is the success terminal state.
	ReceiverDone

	// ReceiverAborted is the failure terminal state.
	ReceiverAborted
)

// String returns a human-readable state name.
func (s ReceiverState) String() string {
	switch s {
	case ReceiverRequestMode:
		return "REQUEST_MODE"
	case ReceiverAwaitFrame:
		return "AWAIT_FRAME"
	case ReceiverDone:
		return "DONE"
	case ReceiverAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state ends the session.
func (s ReceiverState) Terminal() bool {
	return s == ReceiverDone || s == ReceiverAborted
}
