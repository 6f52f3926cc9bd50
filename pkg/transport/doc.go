// Package transport defines the byte-stream capability an XMODEM session
// drives, and provides implementations for common links.
//
// # Capability
//
// A session needs exactly two operations: a timed single-byte read and a
// buffer write. ByteTransport captures them. A transport is exclusively
// owned by one running session for the session's whole duration; no
// implementation needs to support concurrent sessions.
//
// # Implementations
//
//	+----------------+------------------------------------------+
//	| Pipe           | in-memory pair, loopback and tests       |
//	| Conn           | net.Conn with read deadlines             |
//	| Serial         | serial port via go.bug.st/serial         |
//	| Stream         | any io.Reader/io.Writer pair             |
//	| SSH            | remote command over an SSH session       |
//	+----------------+------------------------------------------+
//
// Stream (and therefore SSH and stdio) uses an internal pump goroutine to
// give plain readers a timeout; the session itself stays synchronous.
//
// DialRetry redials a TCP endpoint under exponential backoff for bridge
// tools on flappy links.
package transport
