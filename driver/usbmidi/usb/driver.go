//go:build tinygo || baremetal

// Package usb backs usbmidi.MIDIDriver on the embedded target. USB
// peripheral bring-up is external per spec §1 ("USB ... bring-up"); this
// package only adapts whatever endpoint FIFO the board support package
// exposes into the four-byte protocol.Packet shape the rest of the
// firmware speaks, the same thin-adapter role store/flashstore.go plays
// over KVBackend.
package usb

import (
	"github.com/nowde-project/nowde/driver/usbmidi"
	"github.com/nowde-project/nowde/protocol"
)

// Endpoint is the minimal USB-MIDI class endpoint surface this driver
// needs: non-blocking 4-byte frame read, and frame write. A board's USB
// stack (e.g. TinyGo's machine.USBMIDI once available, or a vendor SDK)
// is injected through this interface rather than referenced directly,
// since no concrete implementation lives in the example pack.
type Endpoint interface {
	ReadFrame() (b0, b1, b2, b3 byte, ok bool)
	WriteFrame(b0, b1, b2, b3 byte) error
}

// Driver implements usbmidi.MIDIDriver over an injected Endpoint.
type Driver struct {
	ep Endpoint
}

// New returns a usbmidi.MIDIDriver backed by ep.
func New(ep Endpoint) usbmidi.MIDIDriver { return &Driver{ep: ep} }

func (d *Driver) ReadPacket() (protocol.Packet, bool) {
	b0, b1, b2, b3, ok := d.ep.ReadFrame()
	if !ok {
		return protocol.Packet{}, false
	}
	return protocol.Packet{Header: b0, B1: b1, B2: b2, B3: b3}, true
}

func (d *Driver) WritePacket(pkt protocol.Packet) error {
	return d.ep.WriteFrame(pkt.Header, pkt.B1, pkt.B2, pkt.B3)
}
