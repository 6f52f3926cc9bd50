// Package discovery advertises and finds XMODEM bridge endpoints on
// the local network over mDNS.
//
// A bridge endpoint is anything that accepts a transfer over TCP: a
// receiver started with a listen flag, or a serial-to-TCP gateway in
// front of a device. Endpoints register under the service type
// `_xmodem._tcp` in the `local.` domain, with TXT records describing
// the transfer parameters they expect:
//
//	role=recv block=128 check=crc16
//
// Advertising side:
//
//	ad, err := discovery.Advertise("bench-rig", 7021, discovery.TXTInfo{
//		Role:      discovery.RoleReceiver,
//		BlockSize: frame.Block128,
//		Checksum:  frame.ChecksumCRC16,
//	})
//	defer ad.Shutdown()
//
// Browsing side:
//
//	endpoints, err := discovery.Browse(ctx)
//	for ep := range endpoints {
//		fmt.Println(ep.Instance, ep.Addr())
//	}
package discovery
