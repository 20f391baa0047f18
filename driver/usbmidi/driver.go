// Package usbmidi defines the MIDIDriver boundary between the SysEx/MTC
// codec and the physical USB-MIDI class device. USB stack bring-up is
// external per spec §1; this package only states the packet-level
// send/receive surface the MIDI task depends on (spec §6).
package usbmidi

import "github.com/nowde-project/nowde/protocol"

// MIDIDriver reads and writes USB-MIDI class packet frames. ReadPacket is
// non-blocking: it returns (zero, false) when no frame is pending, which
// is how the MIDI task's tight poll loop (spec §4.8) stays non-blocking.
type MIDIDriver interface {
	ReadPacket() (protocol.Packet, bool)
	WritePacket(pkt protocol.Packet) error
}
