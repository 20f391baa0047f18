//go:build !tinygo && !baremetal

// Package stub provides an in-memory usbmidi.MIDIDriver for host-side
// testing, mirroring driver/wireless/stub's queue-plus-injection shape.
package stub

import (
	"sync"

	"github.com/nowde-project/nowde/driver/usbmidi"
	"github.com/nowde-project/nowde/protocol"
)

// Driver is a mock USB-MIDI endpoint: WritePacket appends to an outbound
// log a test can drain, and InjectInbound queues packets ReadPacket will
// later return, simulating the host feeding USB-MIDI frames.
type Driver struct {
	mu      sync.Mutex
	inbound []protocol.Packet
	out     []protocol.Packet
}

// New returns a usbmidi.MIDIDriver with empty inbound/outbound queues.
func New() usbmidi.MIDIDriver { return &Driver{} }

func (d *Driver) ReadPacket() (protocol.Packet, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.inbound) == 0 {
		return protocol.Packet{}, false
	}
	pkt := d.inbound[0]
	d.inbound = d.inbound[1:]
	return pkt, true
}

func (d *Driver) WritePacket(pkt protocol.Packet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = append(d.out, pkt)
	return nil
}

// InjectInbound queues pkt as if it had just arrived from the USB host.
func (d *Driver) InjectInbound(pkt protocol.Packet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inbound = append(d.inbound, pkt)
}

// DrainOutbound returns and clears every packet written since the last drain.
func (d *Driver) DrainOutbound() []protocol.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.out
	d.out = nil
	return out
}
