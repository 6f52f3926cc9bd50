package transport

import (
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"
)

// SSH runs a command on a remote host and exposes its stdin/stdout as
// the byte stream. The usual pairing is a local sender driving a remote
// "rx <file>" or a local receiver driving a remote "sx <file>".
type SSH struct {
	*Stream
	session *ssh.Session
	stdin   io.WriteCloser
}

// NewSSH starts command on an established SSH client connection and
// binds a transport to the remote process. Close terminates the remote
// session; the client connection itself stays open.
func NewSSH(client *ssh.Client, command string) (*SSH, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := session.Start(command); err != nil {
		session.Close()
		return nil, fmt.Errorf("start %q: %w", command, err)
	}

	return &SSH{
		Stream:  NewStream(stdout, stdin),
		session: session,
		stdin:   stdin,
	}, nil
}

// Wait blocks until the remote command exits.
func (s *SSH) Wait() error {
	return s.session.Wait()
}

// Close closes the remote process's stdin, tears down the session, and
// stops the pump goroutine.
func (s *SSH) Close() error {
	s.stdin.Close()
	err := s.session.Close()
	s.Stream.Close()
	return err
}

// Compile-time interface satisfaction check.
var _ ByteTransport = (*SSH)(nil)
