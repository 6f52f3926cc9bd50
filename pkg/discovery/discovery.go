package discovery

import (
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	// ServiceType is the mDNS service type for XMODEM bridge
	// endpoints.
	ServiceType = "_xmodem._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// MaxInstanceNameLen is the longest allowed instance name, per
	// DNS label limits.
	MaxInstanceNameLen = 63
)

var (
	// ErrInvalidTXT reports a TXT record that could not be decoded.
	ErrInvalidTXT = errors.New("invalid txt record")

	// ErrInvalidInstanceName reports an empty or over-long instance
	// name.
	ErrInvalidInstanceName = errors.New("invalid instance name")
)

// Config holds advertiser and browser settings.
type Config struct {
	// Interface restricts mDNS traffic to one named network
	// interface. Empty means all interfaces.
	Interface string

	// TTL is the DNS record TTL for advertisements. Zero means the
	// default of 120 seconds.
	TTL time.Duration
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		TTL: 120 * time.Second,
	}
}

// interfaces resolves the configured interface name, or nil for all.
func (c Config) interfaces() []net.Interface {
	if c.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(c.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// ValidateInstanceName checks that name can be used as an mDNS
// instance name.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidInstanceName)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrInvalidInstanceName, len(name), MaxInstanceNameLen)
	}
	return nil
}
