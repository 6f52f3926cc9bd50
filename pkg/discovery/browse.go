package discovery

import (
	"context"
	"net"
	"strconv"

	"github.com/enbility/zeroconf/v3"
)

// Endpoint is a discovered XMODEM bridge.
type Endpoint struct {
	// Instance is the advertised instance name.
	Instance string

	// Host is the endpoint's mDNS host name.
	Host string

	// Port is the endpoint's TCP port.
	Port int

	// Addresses holds the endpoint's IP addresses as strings,
	// aggregated across interfaces.
	Addresses []string

	// Info is the decoded TXT record.
	Info TXTInfo
}

// Addr returns a dialable "host:port" address, preferring the first
// resolved IP over the mDNS host name.
func (e Endpoint) Addr() string {
	host := e.Host
	if len(e.Addresses) > 0 {
		host = e.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(e.Port))
}

// Browse discovers XMODEM endpoints until ctx is cancelled. Each
// instance is emitted once, with addresses from later interface
// announcements merged into the tracked entry.
func Browse(ctx context.Context) (<-chan Endpoint, error) {
	return BrowseWithConfig(ctx, DefaultConfig())
}

// BrowseWithConfig discovers XMODEM endpoints with a custom
// configuration.
func BrowseWithConfig(ctx context.Context, cfg Config) (<-chan Endpoint, error) {
	out := make(chan Endpoint)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := cfg.interfaces(); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func() {
		defer close(out)

		seen := make(map[string]*Endpoint)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				ep := entryToEndpoint(entry)
				if ep == nil {
					continue
				}
				if existing, found := seen[ep.Instance]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, ep.Addresses)
					continue
				}
				seen[ep.Instance] = ep
				select {
				case out <- *ep:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// entryToEndpoint converts a service entry, dropping entries whose
// TXT records do not decode.
func entryToEndpoint(entry *zeroconf.ServiceEntry) *Endpoint {
	info, err := DecodeTXT(entry.Text)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Endpoint{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
		Info:      info,
	}
}

// mergeAddresses appends the addresses of b that a does not already
// contain.
func mergeAddresses(a, b []string) []string {
	for _, addr := range b {
		found := false
		for _, have := range a {
			if have == addr {
				found = true
				break
			}
		}
		if !found {
			a = append(a, addr)
		}
	}
	return a
}
