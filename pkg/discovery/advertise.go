package discovery

import (
	"fmt"

	"github.com/enbility/zeroconf/v3"
)

// Advertisement is a running mDNS registration. Shutdown must be
// called to withdraw it.
type Advertisement struct {
	server *zeroconf.Server
}

// Shutdown withdraws the advertisement.
func (a *Advertisement) Shutdown() {
	a.server.Shutdown()
}

// Advertise registers an XMODEM endpoint under the given instance
// name and TCP port with the default configuration.
func Advertise(instance string, port int, txt TXTInfo) (*Advertisement, error) {
	return AdvertiseWithConfig(instance, port, txt, DefaultConfig())
}

// AdvertiseWithConfig registers an XMODEM endpoint with a custom
// configuration.
func AdvertiseWithConfig(instance string, port int, txt TXTInfo, cfg Config) (*Advertisement, error) {
	if err := ValidateInstanceName(instance); err != nil {
		return nil, err
	}

	var opts []zeroconf.ServerOption
	if cfg.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(cfg.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		Domain,
		port,
		EncodeTXT(txt),
		cfg.interfaces(),
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("registering %q: %w", instance, err)
	}
	return &Advertisement{server: server}, nil
}
