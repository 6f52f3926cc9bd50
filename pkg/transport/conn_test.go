package transport

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestConn_SendReceive(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	c := NewConn(local)

	go func() {
		remote.Write([]byte{0x5A, 0xA5})
	}()

	for _, want := range []byte{0x5A, 0xA5} {
		got, err := c.Receive(time.Second)
		if err != nil {
			t.Fatalf("Receive() error: %v", err)
		}
		if got != want {
			t.Errorf("Receive() = 0x%02X, want 0x%02X", got, want)
		}
	}

	go func() {
		buf := make([]byte, 3)
		remote.Read(buf)
	}()

	if err := c.Send([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
}

func TestConn_ReceiveTimeout(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	c := NewConn(local)

	_, err := c.Receive(20 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Receive() error = %v, want ErrTimeout", err)
	}
}

func TestConn_PeerCloseIsFatal(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()

	c := NewConn(local)
	remote.Close()

	_, err := c.Receive(time.Second)
	if err == nil || errors.Is(err, ErrTimeout) {
		t.Errorf("Receive() error = %v, want a non-timeout failure", err)
	}
}

func TestConn_OverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	dialed, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer dialed.Close()

	server := <-accepted
	defer server.Close()

	a := NewConn(dialed)
	b := NewConn(server)

	if err := a.Send([]byte{0x01}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	got, err := b.Receive(time.Second)
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if got != 0x01 {
		t.Errorf("Receive() = 0x%02X, want 0x01", got)
	}
}
