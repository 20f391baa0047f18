// Package router implements the SysEx command dispatch table (C5, spec
// §4.5) as a pure function of an envelope, the node's mode, and a small
// read-only context. This realizes REDESIGN FLAG "Free function dispatch
// → tagged enums" (spec §9): Dispatch never touches the wire or any
// shared table itself, it only returns typed Reply values for the
// caller — node.WirelessTask, or a test — to execute.
package router

import (
	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

// Origin distinguishes a command arriving from the USB host versus one
// arriving over the wireless link, since opcode 0x11 means something
// different in each direction (spec §4.5).
type Origin int

const (
	OriginHost Origin = iota
	OriginWireless
)

// Envelope is a validated, opcode-identified SysEx command ready for
// dispatch: the manufacturer byte and F0/F7 delimiters have already been
// stripped by protocol.ValidateEnvelope/Opcode/Payload.
type Envelope struct {
	Opcode  byte
	Payload []byte
	Origin  Origin
}

// NodeMode carries the two independent mode booleans (spec §3); either,
// both, or neither may be true.
type NodeMode struct {
	SenderEnabled   bool
	ReceiverEnabled bool
}

// DispatchContext is the read-only state Dispatch needs to decide what to
// do, without ever mutating it directly.
type DispatchContext struct {
	// MeshNow is the mesh clock's current reading, used to stamp
	// outbound MediaSync packets before any fan-out delay (spec §4.6).
	MeshNow uint32

	// FindReceiver looks up an active receiver row by MAC, used by
	// CHANGE_RECEIVER_LAYER (host→sender) to resolve its target.
	FindReceiver func(mac protocol.MAC) (peer.ReceiverEntry, bool)
}

// Dispatch decodes env's payload for its opcode and returns the ordered
// list of actions the caller must perform. nil means "silently ignored"
// (the command does not apply in the current mode); an opcode outside the
// inbound table yields an EmitError with ErrCodeSysExParseError.
func Dispatch(env Envelope, mode NodeMode, ctx DispatchContext) []Reply {
	switch env.Opcode {
	case protocol.OpQueryConfig:
		return dispatchQueryConfig(mode)
	case protocol.OpPushFullConfig:
		return dispatchPushFullConfig(env.Payload)
	case protocol.OpQueryRunningState:
		return dispatchQueryRunningState(mode)
	case protocol.OpMediaSync:
		return dispatchMediaSync(env.Payload, mode, ctx)
	case protocol.OpChangeReceiverLayer:
		return dispatchChangeReceiverLayer(env, mode, ctx)
	default:
		return []Reply{EmitError{Code: protocol.ErrCodeSysExParseError, Context: []byte{env.Opcode}}}
	}
}

func dispatchQueryConfig(mode NodeMode) []Reply {
	replies := make([]Reply, 0, 3)
	if !mode.SenderEnabled {
		replies = append(replies, EnableSenderMode{})
	}
	replies = append(replies, EmitHello{}, EmitConfigState{})
	return replies
}

func dispatchPushFullConfig(payload []byte) []Reply {
	if len(payload) != 3 {
		return []Reply{EmitError{Code: protocol.ErrCodeConfigInvalid, Context: payload}}
	}
	enabled := payload[0] != 0
	delay := (uint16(payload[1]) << 7) | uint16(payload[2])
	return []Reply{
		ApplyRFSimConfig{Enabled: enabled, MaxDelayMs: delay},
		EmitConfigState{},
	}
}

func dispatchQueryRunningState(mode NodeMode) []Reply {
	if !mode.SenderEnabled {
		return nil
	}
	return []Reply{EmitRunningState{}}
}

func dispatchMediaSync(payload []byte, mode NodeMode, ctx DispatchContext) []Reply {
	if !mode.SenderEnabled {
		return nil
	}
	sync, err := decodeMediaSyncCommand(payload, ctx.MeshNow)
	if err != nil {
		return []Reply{EmitError{Code: protocol.ErrCodeSysExParseError, Context: payload}}
	}
	return []Reply{FanOutMediaSync{Layer: sync.Layer, Sync: sync}}
}

// mediaSyncPayloadSize is layer[16] + index[1] + position(MSB+4 raw)[5] +
// state[1], the packed form fixed by spec §9's Open Question.
const mediaSyncPayloadSize = protocol.MaxLayerLength + 1 + 5 + 1

func decodeMediaSyncCommand(payload []byte, meshNow uint32) (protocol.MediaSync, error) {
	var sync protocol.MediaSync
	if len(payload) != mediaSyncPayloadSize {
		return sync, protocol.ErrShortEnvelope
	}
	copy(sync.Layer[:], payload[:protocol.MaxLayerLength])
	pos := protocol.MaxLayerLength
	sync.MediaIndex = payload[pos]
	pos++

	raw := protocol.Decode7Bit(nil, payload[pos:pos+5])
	pos += 5
	sync.PositionMs = uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])

	sync.State = payload[pos]
	sync.MeshTS = meshNow
	return sync, nil
}

func dispatchChangeReceiverLayer(env Envelope, mode NodeMode, ctx DispatchContext) []Reply {
	if env.Origin == OriginWireless {
		if !mode.ReceiverEnabled {
			return nil
		}
		return dispatchChangeReceiverLayerFromPeer(env.Payload)
	}
	if !mode.SenderEnabled {
		return nil
	}
	return dispatchChangeReceiverLayerFromHost(env.Payload, ctx)
}

// changeReceiverLayerHostPayloadSize is MAC(6→7 encoded) + layer(16→19
// encoded), since this command travels the USB SysEx link (spec §4.1
// requires 7-bit packing there).
const changeReceiverLayerHostPayloadSize = 7 + 19

func dispatchChangeReceiverLayerFromHost(payload []byte, ctx DispatchContext) []Reply {
	if len(payload) != changeReceiverLayerHostPayloadSize {
		return []Reply{EmitError{Code: protocol.ErrCodeSysExParseError, Context: payload}}
	}
	rawMAC := protocol.Decode7Bit(nil, payload[:7])
	rawLayer := protocol.Decode7Bit(nil, payload[7:])

	var mac protocol.MAC
	copy(mac[:], rawMAC)
	var layer protocol.Layer
	copy(layer[:], rawLayer)

	if _, ok := ctx.FindReceiver(mac); !ok {
		return []Reply{EmitError{Code: protocol.ErrCodeReceiverTimeout, Context: mac[:]}}
	}
	return []Reply{ForwardLayerChangeToReceiver{MAC: mac, Layer: layer}}
}

func dispatchChangeReceiverLayerFromPeer(payload []byte) []Reply {
	if len(payload) != protocol.MaxLayerLength {
		return []Reply{EmitError{Code: protocol.ErrCodeSysExParseError, Context: payload}}
	}
	var layer protocol.Layer
	copy(layer[:], payload)
	return []Reply{ChangeSubscribedLayer{Layer: layer}}
}
