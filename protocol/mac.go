package protocol

import "fmt"

// MAC is a wireless link-layer address. The broadcast address is all-ones.
type MAC [6]byte

// BroadcastMAC is the destination for SenderBeacon fan-out.
var BroadcastMAC = MAC{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

func (m MAC) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsZero reports whether m is the unset (all-zero) address.
func (m MAC) IsZero() bool {
	return m == MAC{}
}
