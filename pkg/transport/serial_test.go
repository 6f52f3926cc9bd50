package transport

import (
	"errors"
	"testing"
)

func TestDefaultSerialConfig(t *testing.T) {
	cfg := DefaultSerialConfig()
	if cfg.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", cfg.BaudRate)
	}
	if cfg.Device != "" {
		t.Errorf("Device = %q, want empty", cfg.Device)
	}
}

func TestOpenSerial_NoDevice(t *testing.T) {
	_, err := OpenSerial(SerialConfig{})
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("OpenSerial() error = %v, want ErrNoDevice", err)
	}
}
