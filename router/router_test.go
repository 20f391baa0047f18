package router

import (
	"testing"

	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

func noReceivers(protocol.MAC) (peer.ReceiverEntry, bool) { return peer.ReceiverEntry{}, false }

func TestQueryConfigEnablesSenderAndRepliesHelloThenConfigState(t *testing.T) {
	env := Envelope{Opcode: protocol.OpQueryConfig, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{}, DispatchContext{FindReceiver: noReceivers})

	if len(replies) != 3 {
		t.Fatalf("replies = %#v, want 3", replies)
	}
	if _, ok := replies[0].(EnableSenderMode); !ok {
		t.Errorf("replies[0] = %#v, want EnableSenderMode", replies[0])
	}
	if _, ok := replies[1].(EmitHello); !ok {
		t.Errorf("replies[1] = %#v, want EmitHello", replies[1])
	}
	if _, ok := replies[2].(EmitConfigState); !ok {
		t.Errorf("replies[2] = %#v, want EmitConfigState", replies[2])
	}
}

func TestQueryConfigSkipsEnableWhenAlreadySender(t *testing.T) {
	env := Envelope{Opcode: protocol.OpQueryConfig, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{SenderEnabled: true}, DispatchContext{FindReceiver: noReceivers})
	if len(replies) != 2 {
		t.Fatalf("replies = %#v, want 2 (no EnableSenderMode)", replies)
	}
}

func TestPushFullConfigAppliesAndRepliesConfigState(t *testing.T) {
	env := Envelope{Opcode: protocol.OpPushFullConfig, Payload: []byte{0x01, 0x03, 0x14}, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{}, DispatchContext{FindReceiver: noReceivers})

	if len(replies) != 2 {
		t.Fatalf("replies = %#v, want 2", replies)
	}
	apply, ok := replies[0].(ApplyRFSimConfig)
	if !ok {
		t.Fatalf("replies[0] = %#v, want ApplyRFSimConfig", replies[0])
	}
	if !apply.Enabled || apply.MaxDelayMs != 404 {
		t.Errorf("apply = %+v, want {Enabled:true MaxDelayMs:404}", apply)
	}
	if _, ok := replies[1].(EmitConfigState); !ok {
		t.Errorf("replies[1] = %#v, want EmitConfigState", replies[1])
	}
}

func TestPushFullConfigRejectsBadLength(t *testing.T) {
	env := Envelope{Opcode: protocol.OpPushFullConfig, Payload: []byte{0x01}, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{}, DispatchContext{FindReceiver: noReceivers})
	if len(replies) != 1 {
		t.Fatalf("replies = %#v, want 1", replies)
	}
	e, ok := replies[0].(EmitError)
	if !ok || e.Code != protocol.ErrCodeConfigInvalid {
		t.Errorf("replies[0] = %#v, want EmitError{Code:ErrCodeConfigInvalid}", replies[0])
	}
}

func TestQueryRunningStateSilentWhenNotSender(t *testing.T) {
	env := Envelope{Opcode: protocol.OpQueryRunningState, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{}, DispatchContext{FindReceiver: noReceivers})
	if replies != nil {
		t.Errorf("replies = %#v, want nil", replies)
	}
}

func TestQueryRunningStateRepliesWhenSender(t *testing.T) {
	env := Envelope{Opcode: protocol.OpQueryRunningState, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{SenderEnabled: true}, DispatchContext{FindReceiver: noReceivers})
	if len(replies) != 1 {
		t.Fatalf("replies = %#v, want 1", replies)
	}
	if _, ok := replies[0].(EmitRunningState); !ok {
		t.Errorf("replies[0] = %#v, want EmitRunningState", replies[0])
	}
}

func encodeMediaSyncPayload(layer protocol.Layer, index byte, position uint32, state byte) []byte {
	payload := make([]byte, 0, mediaSyncPayloadSize)
	payload = append(payload, layer[:]...)
	payload = append(payload, index)
	raw := []byte{byte(position >> 24), byte(position >> 16), byte(position >> 8), byte(position)}
	payload = protocol.Encode7Bit(payload, raw)
	payload = append(payload, state)
	return payload
}

func TestMediaSyncFansOutWithStampedMeshTime(t *testing.T) {
	layer := protocol.NewLayer("A")
	payload := encodeMediaSyncPayload(layer, 7, 12345, 1)
	env := Envelope{Opcode: protocol.OpMediaSync, Payload: payload, Origin: OriginHost}

	replies := Dispatch(env, NodeMode{SenderEnabled: true}, DispatchContext{MeshNow: 99999, FindReceiver: noReceivers})
	if len(replies) != 1 {
		t.Fatalf("replies = %#v, want 1", replies)
	}
	fanout, ok := replies[0].(FanOutMediaSync)
	if !ok {
		t.Fatalf("replies[0] = %#v, want FanOutMediaSync", replies[0])
	}
	if fanout.Sync.MediaIndex != 7 || fanout.Sync.PositionMs != 12345 || fanout.Sync.State != 1 {
		t.Errorf("sync = %+v, want {MediaIndex:7 PositionMs:12345 State:1}", fanout.Sync)
	}
	if fanout.Sync.MeshTS != 99999 {
		t.Errorf("MeshTS = %d, want 99999", fanout.Sync.MeshTS)
	}
	if !fanout.Layer.Equal(layer) {
		t.Errorf("layer = %q, want %q", fanout.Layer.String(), layer.String())
	}
}

func TestMediaSyncSilentWhenNotSender(t *testing.T) {
	payload := encodeMediaSyncPayload(protocol.NewLayer("A"), 1, 0, 1)
	env := Envelope{Opcode: protocol.OpMediaSync, Payload: payload, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{}, DispatchContext{FindReceiver: noReceivers})
	if replies != nil {
		t.Errorf("replies = %#v, want nil", replies)
	}
}

func TestChangeReceiverLayerFromHostForwardsWhenFound(t *testing.T) {
	mac := protocol.MAC{1, 2, 3, 4, 5, 6}
	layer := protocol.NewLayer("BETA")

	payload := protocol.Encode7Bit(nil, mac[:])
	payload = protocol.Encode7Bit(payload, layer[:])
	env := Envelope{Opcode: protocol.OpChangeReceiverLayer, Payload: payload, Origin: OriginHost}

	find := func(m protocol.MAC) (peer.ReceiverEntry, bool) {
		if m == mac {
			return peer.ReceiverEntry{MAC: mac, Active: true}, true
		}
		return peer.ReceiverEntry{}, false
	}

	replies := Dispatch(env, NodeMode{SenderEnabled: true}, DispatchContext{FindReceiver: find})
	if len(replies) != 1 {
		t.Fatalf("replies = %#v, want 1", replies)
	}
	fwd, ok := replies[0].(ForwardLayerChangeToReceiver)
	if !ok {
		t.Fatalf("replies[0] = %#v, want ForwardLayerChangeToReceiver", replies[0])
	}
	if fwd.MAC != mac || !fwd.Layer.Equal(layer) {
		t.Errorf("fwd = %+v, want {MAC:%v Layer:%q}", fwd, mac, layer.String())
	}
}

func TestChangeReceiverLayerFromHostErrorsWhenNotFound(t *testing.T) {
	mac := protocol.MAC{1}
	layer := protocol.NewLayer("BETA")
	payload := protocol.Encode7Bit(nil, mac[:])
	payload = protocol.Encode7Bit(payload, layer[:])
	env := Envelope{Opcode: protocol.OpChangeReceiverLayer, Payload: payload, Origin: OriginHost}

	replies := Dispatch(env, NodeMode{SenderEnabled: true}, DispatchContext{FindReceiver: noReceivers})
	if len(replies) != 1 {
		t.Fatalf("replies = %#v, want 1", replies)
	}
	e, ok := replies[0].(EmitError)
	if !ok || e.Code != protocol.ErrCodeReceiverTimeout {
		t.Errorf("replies[0] = %#v, want EmitError{Code:ErrCodeReceiverTimeout}", replies[0])
	}
}

func TestChangeReceiverLayerFromPeerUpdatesSubscribedLayer(t *testing.T) {
	layer := protocol.NewLayer("BETA")
	env := Envelope{Opcode: protocol.OpChangeReceiverLayer, Payload: layer[:], Origin: OriginWireless}

	replies := Dispatch(env, NodeMode{ReceiverEnabled: true}, DispatchContext{FindReceiver: noReceivers})
	if len(replies) != 1 {
		t.Fatalf("replies = %#v, want 1", replies)
	}
	change, ok := replies[0].(ChangeSubscribedLayer)
	if !ok || !change.Layer.Equal(layer) {
		t.Errorf("replies[0] = %#v, want ChangeSubscribedLayer{Layer:%q}", replies[0], layer.String())
	}
}

func TestChangeReceiverLayerFromPeerSilentWhenNotReceiver(t *testing.T) {
	layer := protocol.NewLayer("BETA")
	env := Envelope{Opcode: protocol.OpChangeReceiverLayer, Payload: layer[:], Origin: OriginWireless}
	replies := Dispatch(env, NodeMode{}, DispatchContext{FindReceiver: noReceivers})
	if replies != nil {
		t.Errorf("replies = %#v, want nil", replies)
	}
}

func TestUnknownOpcodeReportsParseError(t *testing.T) {
	env := Envelope{Opcode: 0x7E, Origin: OriginHost}
	replies := Dispatch(env, NodeMode{}, DispatchContext{FindReceiver: noReceivers})
	if len(replies) != 1 {
		t.Fatalf("replies = %#v, want 1", replies)
	}
	if e, ok := replies[0].(EmitError); !ok || e.Code != protocol.ErrCodeSysExParseError {
		t.Errorf("replies[0] = %#v, want EmitError{Code:ErrCodeSysExParseError}", replies[0])
	}
}
