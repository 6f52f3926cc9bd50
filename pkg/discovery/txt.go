package discovery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
)

// Endpoint roles carried in TXT records.
const (
	RoleSender   = "send"
	RoleReceiver = "recv"
)

// TXT record keys.
const (
	txtKeyRole     = "role"
	txtKeyBlock    = "block"
	txtKeyChecksum = "check"
)

// TXTInfo describes the transfer parameters an endpoint expects.
type TXTInfo struct {
	// Role is RoleSender or RoleReceiver.
	Role string

	// BlockSize is the endpoint's block size, zero when unspecified.
	BlockSize frame.BlockSize

	// Checksum is the endpoint's checksum kind.
	Checksum frame.ChecksumKind
}

// EncodeTXT renders info as "key=value" TXT record strings.
func EncodeTXT(info TXTInfo) []string {
	txt := make([]string, 0, 3)
	if info.Role != "" {
		txt = append(txt, txtKeyRole+"="+info.Role)
	}
	if info.BlockSize != 0 {
		txt = append(txt, txtKeyBlock+"="+strconv.Itoa(int(info.BlockSize)))
	}
	txt = append(txt, txtKeyChecksum+"="+strings.ToLower(info.Checksum.String()))
	return txt
}

// DecodeTXT parses TXT record strings. Unknown keys are ignored;
// missing keys leave the zero value in place.
func DecodeTXT(txt []string) (TXTInfo, error) {
	var info TXTInfo
	for _, record := range txt {
		key, value, found := strings.Cut(record, "=")
		if !found {
			continue
		}
		switch key {
		case txtKeyRole:
			if value != RoleSender && value != RoleReceiver {
				return info, fmt.Errorf("%w: role %q", ErrInvalidTXT, value)
			}
			info.Role = value
		case txtKeyBlock:
			n, err := strconv.Atoi(value)
			if err != nil || !frame.BlockSize(n).Valid() {
				return info, fmt.Errorf("%w: block size %q", ErrInvalidTXT, value)
			}
			info.BlockSize = frame.BlockSize(n)
		case txtKeyChecksum:
			switch strings.ToLower(value) {
			case "classic":
				info.Checksum = frame.ChecksumClassic
			case "crc16":
				info.Checksum = frame.ChecksumCRC16
			default:
				return info, fmt.Errorf("%w: checksum kind %q", ErrInvalidTXT, value)
			}
		}
	}
	return info, nil
}
