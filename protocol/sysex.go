package protocol

// A SysEx envelope is F0 7D <cmd> ... F7. Parser reassembles one from a
// stream of USB-MIDI packet frames (C1 parser, spec §4.1); EmitEnvelope
// chunks a complete envelope back into USB-MIDI packet frames (C1 emitter).

// Parser accumulates USB-MIDI packet frames into complete SysEx envelopes.
// It is owned by a single goroutine (the MIDI task, per §4.8's single-writer
// discipline) and is not safe for concurrent use.
type Parser struct {
	inSysEx bool
	buf     []byte
}

// NewParser returns a Parser with its accumulation buffer pre-allocated to
// MaxSysExBuffer, mirroring the fixed-size sysexBuffer in the C original.
func NewParser() *Parser {
	return &Parser{buf: make([]byte, 0, MaxSysExBuffer)}
}

// Feed consumes one USB-MIDI packet frame. It returns a complete envelope
// (including the leading F0 and trailing F7) and true when the frame
// completed one; otherwise it returns (nil, false). Bytes outside an
// envelope are discarded, matching §4.1 ("bytes outside an envelope are
// discarded").
func (p *Parser) Feed(pkt Packet) ([]byte, bool) {
	n := dataByteCount(pkt.CIN())
	if n == 0 {
		return nil, false
	}
	data := [3]byte{pkt.B1, pkt.B2, pkt.B3}

	for i := 0; i < n; i++ {
		b := data[i]
		if b == SysExStart {
			p.inSysEx = true
			p.buf = p.buf[:0]
		}
		if !p.inSysEx {
			continue
		}
		if len(p.buf) < MaxSysExBuffer {
			p.buf = append(p.buf, b)
		}
		if b == SysExEnd {
			env := make([]byte, len(p.buf))
			copy(env, p.buf)
			p.inSysEx = false
			p.buf = p.buf[:0]
			return env, true
		}
	}
	return nil, false
}

// EmitEnvelope chunks a complete envelope (F0 ... F7) into USB-MIDI packet
// frames: CIN 0x4 for every full internal group of 3 bytes, and a final
// chunk using CIN 0x5/0x6/0x7 depending on whether the envelope's last 1,
// 2, or 3 bytes (which always include the trailing F7) fit in it. It never
// splits such that a chunk's last byte is not the envelope's final byte.
func EmitEnvelope(env []byte) []Packet {
	if len(env) == 0 {
		return nil
	}

	remaining := len(env) % 3
	if remaining == 0 {
		remaining = 3
	}
	fullGroups := (len(env) - remaining) / 3

	packets := make([]Packet, 0, fullGroups+1)
	pos := 0
	for g := 0; g < fullGroups; g++ {
		packets = append(packets, Packet{
			Header: cinSysExStartOrContinue,
			B1:     env[pos],
			B2:     env[pos+1],
			B3:     env[pos+2],
		})
		pos += 3
	}

	final := Packet{}
	switch remaining {
	case 1:
		final.Header = cinSysExEnd1
		final.B1 = env[pos]
	case 2:
		final.Header = cinSysExEnd2
		final.B1 = env[pos]
		final.B2 = env[pos+1]
	case 3:
		final.Header = cinSysExEnd3
		final.B1 = env[pos]
		final.B2 = env[pos+1]
		final.B3 = env[pos+2]
	}
	packets = append(packets, final)
	return packets
}

// ValidateEnvelope checks the generic shape every SysEx envelope must have
// before C5 looks at the opcode: F0 ... F7, manufacturer byte 7D, length at
// least 4 (F0 7D CMD F7). Envelopes with any other manufacturer byte are
// silently ignored by the caller rather than erroring (§4.1); this function
// returns ErrNotAnEnvelope, ErrShortEnvelope, or ErrWrongManufacturer for
// the check that failed and leaves what to do about it to the caller.
func ValidateEnvelope(env []byte) error {
	if len(env) < 2 || env[0] != SysExStart || env[len(env)-1] != SysExEnd {
		return ErrNotAnEnvelope
	}
	if len(env) < 3 {
		return ErrShortEnvelope
	}
	if env[1] != ManufacturerID {
		return ErrWrongManufacturer
	}
	if len(env) < 4 {
		return ErrShortEnvelope
	}
	return nil
}

// Opcode returns the command byte of a validated envelope.
func Opcode(env []byte) byte { return env[2] }

// Payload returns the bytes between the opcode and the trailing F7.
func Payload(env []byte) []byte { return env[3 : len(env)-1] }
