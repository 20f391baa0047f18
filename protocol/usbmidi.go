package protocol

// Packet is a USB-MIDI class packet: a 32-bit frame of [header, b1, b2, b3]
// where header&0x0F is the Code Index Number (CIN). Only SysEx CINs
// (0x4-0x7), Control Change (0xB), and two-byte System Common (0x2, used
// for MTC quarter-frames) are produced by this firmware.
type Packet struct {
	Header byte
	B1     byte
	B2     byte
	B3     byte
}

// CIN returns the Code Index Number carried in the packet header.
func (p Packet) CIN() byte { return p.Header & 0x0F }

const (
	cinSysExStartOrContinue byte = 0x4
	cinSysExEnd1            byte = 0x5
	cinSysExEnd2            byte = 0x6
	cinSysExEnd3            byte = 0x7
	cinTwoByteSystemCommon  byte = 0x2
	cinControlChange        byte = 0xB
)

// dataByteCount returns how many of B1/B2/B3 are meaningful payload bytes
// for a given CIN, per the USB-MIDI class spec subset this firmware uses.
func dataByteCount(cin byte) int {
	switch cin {
	case cinSysExStartOrContinue, cinControlChange:
		return 3
	case cinSysExEnd1:
		return 1
	case cinSysExEnd2:
		return 2
	case cinSysExEnd3:
		return 3
	case cinTwoByteSystemCommon:
		return 2
	default:
		return 0
	}
}

// PackMessage frames a raw MIDI message (status byte plus data bytes) into
// a single USB-MIDI packet, per the Code Index Number rules in the USB
// device class spec for MIDI. Only the two message shapes this firmware
// emits are supported: a three-byte Control Change and a two-byte System
// Common message (MTC quarter-frame). Unrecognized status bytes are
// packed with CIN 0x0 ("misc") and left for the host to ignore.
func PackMessage(msg []byte) Packet {
	if len(msg) == 3 && msg[0]&0xF0 == 0xB0 {
		return Packet{Header: cinControlChange, B1: msg[0], B2: msg[1], B3: msg[2]}
	}
	if len(msg) == 2 && msg[0] == 0xF1 {
		return Packet{Header: cinTwoByteSystemCommon, B1: msg[0], B2: msg[1]}
	}
	var data [3]byte
	copy(data[:], msg)
	return Packet{Header: 0x0, B1: data[0], B2: data[1], B3: data[2]}
}
