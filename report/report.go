// Package report builds the node-to-host SysEx envelopes (C10, spec §7):
// HELLO, CONFIG_STATE, RUNNING_STATE, ERROR_REPORT, and the supplemented
// bridge receiver-table report. Every builder is a pure function from
// state to a complete envelope (F0 7D <cmd> ... F7); none of them touch
// the wire themselves, mirroring router.Dispatch's "return data, don't
// act" shape. Field layout and 7-bit-packing choices are taken directly
// from original_source/Nowde/src/sysex.cpp's send* functions.
package report

import (
	"time"

	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

// BootReasonProvider reports why the node last reset, for the HELLO
// envelope's bootReason byte (spec §7, original_source sysex.cpp's
// esp_reset_reason()). The value travels the wire already 7-bit safe
// (masked to 0x7F, per the original), so callers must not re-encode it.
type BootReasonProvider interface {
	BootReason() byte
}

// UnknownBootReason is what a host build reports: there is no reset-cause
// register to read outside the target MCU.
const UnknownBootReason byte = 0x00

func envelope(opcode byte, payload ...byte) []byte {
	env := make([]byte, 0, len(payload)+4)
	env = append(env, protocol.SysExStart, protocol.ManufacturerID, opcode)
	env = append(env, payload...)
	env = append(env, protocol.SysExEnd)
	return env
}

func be32(v uint32) [4]byte {
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// Hello builds the HELLO envelope (opcode 0x20) sent in reply to
// QUERY_CONFIG:
// F0 7D 20 [version(8,encoded:10)] [uptimeMs(4,encoded:5)] [bootReason(1)] F7.
func Hello(uptime time.Duration, bootReason byte) []byte {
	var version [protocol.MaxVersionLength]byte
	copy(version[:], protocol.NodeVersion)

	payload := make([]byte, 0, protocol.EncodedLen(protocol.MaxVersionLength)+protocol.EncodedLen(4)+1)
	payload = protocol.Encode7Bit(payload, version[:])

	raw := be32(uint32(uptime / time.Millisecond))
	payload = protocol.Encode7Bit(payload, raw[:])
	payload = append(payload, bootReason&0x7F)

	return envelope(protocol.OpHello, payload...)
}

// ConfigState builds the CONFIG_STATE envelope (opcode 0x21), replying to
// both QUERY_CONFIG and PUSH_FULL_CONFIG:
// F0 7D 21 [rfSimEnabled(1)] [maxDelayMs hi(7bit)] [maxDelayMs lo(7bit)] F7.
// The delay bytes are already 7-bit safe 7-bit halves of a 14-bit value
// (spec §4.5's PUSH_FULL_CONFIG payload shape), not an Encode7Bit group —
// original_source's sendConfigState writes them the same way.
func ConfigState(enabled bool, maxDelayMs uint16) []byte {
	var e byte
	if enabled {
		e = 1
	}
	hi := byte((maxDelayMs >> 7) & 0x7F)
	lo := byte(maxDelayMs & 0x7F)
	return envelope(protocol.OpConfigState, e, hi, lo)
}

// RunningState builds the RUNNING_STATE envelope (opcode 0x22):
// F0 7D 22 [uptimeMs(4,encoded:5)] [meshSynced(1)] [numReceivers(1)]
//
//	(per receiver: [mac(6)+layer(16)+version(8)+lastSeenMs(4)+active(1)+mediaIndex(1)=36 bytes, encoded:42]) F7
func RunningState(uptime time.Duration, meshSynced bool, receivers []peer.ReceiverEntry, now time.Time) []byte {
	payload := make([]byte, 0, protocol.EncodedLen(4)+2+len(receivers)*protocol.EncodedLen(36))

	rawUptime := be32(uint32(uptime / time.Millisecond))
	payload = protocol.Encode7Bit(payload, rawUptime[:])

	var synced byte
	if meshSynced {
		synced = 1
	}
	payload = append(payload, synced, byte(len(receivers)))

	for _, r := range receivers {
		raw := make([]byte, 0, 36)
		raw = append(raw, r.MAC[:]...)
		raw = append(raw, r.Layer[:]...)
		raw = append(raw, r.Version[:]...)
		lastSeen := be32(uint32(now.Sub(r.LastSeen) / time.Millisecond))
		raw = append(raw, lastSeen[:]...)
		raw = append(raw, 1) // active(1): RunningState only ever lists active rows
		raw = append(raw, r.MediaIndex)
		payload = protocol.Encode7Bit(payload, raw)
	}

	return envelope(protocol.OpRunningState, payload...)
}

// ErrorReport builds the ERROR_REPORT envelope (opcode 0x30):
// F0 7D 30 [errorCode(1)] [contextLength(1)] [context, up to 32 bytes] F7.
// context is carried raw, not 7-bit packed, as original_source's
// sendErrorReport does; router passes the offending opcode, payload, or
// target MAC bytes here.
func ErrorReport(code byte, context []byte) []byte {
	if len(context) > 32 {
		context = context[:32]
	}
	payload := make([]byte, 0, 2+len(context))
	payload = append(payload, code, byte(len(context)))
	payload = append(payload, context...)
	return envelope(protocol.OpErrorReport, payload...)
}

// receiverRowRaw is MAC(6) + layer(16) + version(8) + connected(1), the
// raw (non-7bit-encoded) per-receiver layout
// original_source/Nowde/src/sender_mode.cpp's reportReceiversToBridge
// builds for opcode 0x23 — unlike RunningState's opcode 0x22, this
// message's per-receiver fields are written unencoded, since every byte
// here (ASCII MAC/layer/version text and a 0/1 flag) is already
// MIDI-safe by construction.
const receiverRowRaw = 6 + protocol.MaxLayerLength + protocol.MaxVersionLength + 1

// ReceiverTableReport builds the bridge receiver-table envelope (opcode
// 0x23, supplemented from original_source's reportReceiversToBridge):
// F0 7D 23 [numReceivers(1)] (per receiver: mac[6]+layer[16]+version[8]+connected[1]) F7.
func ReceiverTableReport(receivers []peer.ReceiverEntry) []byte {
	payload := make([]byte, 0, 1+len(receivers)*receiverRowRaw)
	payload = append(payload, byte(len(receivers)))
	for _, r := range receivers {
		payload = append(payload, r.MAC[:]...)
		payload = append(payload, r.Layer[:]...)
		payload = append(payload, r.Version[:]...)
		var connected byte
		if r.Connected {
			connected = 1
		}
		payload = append(payload, connected)
	}
	return envelope(protocol.OpReceiverTable, payload...)
}
