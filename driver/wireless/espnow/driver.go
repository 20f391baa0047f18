//go:build tinygo || baremetal

package espnow

import (
	"unsafe"

	"device/nrf"

	"github.com/nowde-project/nowde/driver/wireless"
	"github.com/nowde-project/nowde/protocol"
)

// Driver implements wireless.RadioDriver on top of the register-level
// sequencing in radio.go. Peers is a small fixed-capacity table since the
// spec bounds fleet size to MaxSenders+MaxReceivers anyway (spec §1
// Non-goals: "unbounded fleet size").
type Driver struct {
	local   protocol.MAC
	buffer  [maxFrameSize]byte
	peers   [protocol.MaxSenders + protocol.MaxReceivers]protocol.MAC
	nPeers  int
	handler func(src protocol.MAC, data []byte)
}

// New returns a wireless.RadioDriver backed by the on-chip radio.
func New() wireless.RadioDriver { return &Driver{} }

func (d *Driver) Init(local protocol.MAC) error {
	d.local = local
	startHFCLK()
	configureRadio()
	return nil
}

func (d *Driver) AddPeer(mac protocol.MAC) error {
	for i := 0; i < d.nPeers; i++ {
		if d.peers[i] == mac {
			return nil // idempotent, spec §5
		}
	}
	if d.nPeers >= len(d.peers) {
		return nil // table full, silent drop per spec §4.3/§7
	}
	d.peers[d.nPeers] = mac
	d.nPeers++
	return nil
}

func (d *Driver) RemovePeer(mac protocol.MAC) error {
	for i := 0; i < d.nPeers; i++ {
		if d.peers[i] == mac {
			d.peers[i] = d.peers[d.nPeers-1]
			d.nPeers--
			return nil
		}
	}
	return nil
}

func (d *Driver) Send(mac protocol.MAC, data []byte) error {
	configureAddress(mac, defaultChannel)
	return d.transmit(data)
}

func (d *Driver) Broadcast(data []byte) error {
	return d.Send(protocol.BroadcastMAC, data)
}

func (d *Driver) transmit(data []byte) error {
	n := copy(d.buffer[:], data)
	_ = n

	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.buffer[0]))))
	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_TXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.TASKS_START.Set(1)
	for nrf.RADIO.EVENTS_END.Get() == 0 {
	}
	nrf.RADIO.TASKS_DISABLE.Set(1)
	for nrf.RADIO.STATE.Get() != nrf.RADIO_STATE_STATE_Disabled {
	}
	return nil
}

func (d *Driver) SetRecvHandler(handler func(src protocol.MAC, data []byte)) {
	d.handler = handler
}

// Poll drives one non-blocking receive attempt; the wireless task calls it
// each 10ms tick alongside its other timers (spec §4.8). A real ESP-NOW
// stack delivers via a driver-owned callback instead; this poll-based
// stand-in keeps the register-level sequencing from driver/nrf visible
// while still handing complete frames to handler, which is responsible
// for queuing them onto the wireless task's inbox (spec §5, "that
// callback must complete quickly").
func (d *Driver) Poll() {
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.buffer[0]))))
	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_RXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.TASKS_START.Set(1)
	if nrf.RADIO.EVENTS_END.Get() == 0 {
		nrf.RADIO.TASKS_DISABLE.Set(1)
		return
	}
	nrf.RADIO.TASKS_DISABLE.Set(1)
	for nrf.RADIO.STATE.Get() != nrf.RADIO_STATE_STATE_Disabled {
	}
	if d.handler != nil {
		frame := make([]byte, len(d.buffer))
		copy(frame, d.buffer[:])
		d.handler(protocol.MAC{}, frame)
	}
}
