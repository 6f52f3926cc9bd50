package xmodem

import "errors"

// Session errors.
var (
	// ErrTimeout reports a session that never got a response: the
	// sender saw no mode request, or the receiver's mode requests all
	// went unanswered.
	ErrTimeout = errors.New("session timed out")

	// ErrMaxRetriesExceeded reports an exhausted retry budget for a
	// block or for the EOT handshake.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrCancelled reports a cancelled transfer. Failed sessions carry
	// a *CancelError identifying which side cancelled; errors.Is
	// against this sentinel matches both.
	ErrCancelled = errors.New("transfer cancelled")

	// ErrBlockOutOfSequence reports a valid frame whose block number
	// matches neither the expected block nor its predecessor. It is
	// handled internally as a retry trigger and surfaces only through
	// trace events, never from Run.
	ErrBlockOutOfSequence = errors.New("block out of sequence")

	// ErrInvalidConfig reports a rejected session configuration.
	ErrInvalidConfig = errors.New("invalid session config")
)

// CancelError is the failure result of a cancelled transfer.
type CancelError struct {
	// Remote is true when the peer sent CAN, false when the local
	// caller invoked Cancel.
	Remote bool
}

// Error returns the cancellation description.
func (e *CancelError) Error() string {
	if e.Remote {
		return "transfer cancelled by remote"
	}
	return "transfer cancelled locally"
}

// Unwrap returns ErrCancelled so errors.Is(err, ErrCancelled) holds
// for cancellations from either side.
func (e *CancelError) Unwrap() error {
	return ErrCancelled
}

// IsTimeout reports whether err is a session timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCancelled reports whether err is a cancellation from either side.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
