// Package wireless defines the RadioDriver boundary between the sync
// engine and the physical wireless link. The real link is connectionless
// broadcast + unicast at L2 to MAC addresses (spec §6); bring-up of the
// underlying radio (WiFi/ESP-NOW on the embedded target) is external per
// spec §1, so this package only states the send/receive/peer-management
// surface the rest of the firmware depends on.
package wireless

import "github.com/nowde-project/nowde/protocol"

// RadioDriver is the interface every wireless backend implements. Send and
// Broadcast are non-blocking best-effort sends (spec's Non-goals exclude
// reliable delivery); AddPeer/RemovePeer mirror esp_now_add_peer/
// esp_now_del_peer in the C original, idempotent on duplicate calls (spec
// §5, "Duplicate adds are idempotent").
type RadioDriver interface {
	Init(local protocol.MAC) error
	AddPeer(mac protocol.MAC) error
	RemovePeer(mac protocol.MAC) error
	Send(mac protocol.MAC, data []byte) error
	Broadcast(data []byte) error
	SetRecvHandler(handler func(src protocol.MAC, data []byte))
}
