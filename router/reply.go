package router

import "github.com/nowde-project/nowde/protocol"

// Reply is the sealed set of actions Dispatch can ask a caller to
// perform. None of them touch the wire or a shared table directly; they
// are data the caller (node.WirelessTask, or tests) acts on explicitly.
type Reply interface {
	isReply()
}

// EnableSenderMode asks the caller to set NodeMode.SenderEnabled.
type EnableSenderMode struct{}

// EmitHello asks the caller to build and send a HELLO envelope (opcode
// 0x20) using the node's current version/uptime/boot-reason.
type EmitHello struct{}

// EmitConfigState asks the caller to build and send a CONFIG_STATE
// envelope (opcode 0x21) reflecting the current RF-simulation config.
type EmitConfigState struct{}

// EmitRunningState asks the caller to build and send a RUNNING_STATE
// envelope (opcode 0x22).
type EmitRunningState struct{}

// ApplyRFSimConfig asks the caller to update its RF-simulation state.
type ApplyRFSimConfig struct {
	Enabled    bool
	MaxDelayMs uint16
}

// FanOutMediaSync asks the caller to run the sender fan-out (C6) for sync
// against every receiver whose layer matches Layer.
type FanOutMediaSync struct {
	Layer protocol.Layer
	Sync  protocol.MediaSync
}

// ForwardLayerChangeToReceiver asks the caller to unicast a raw (not
// 7-bit-packed — the wireless link has no MIDI high-bit constraint)
// CHANGE_RECEIVER_LAYER envelope carrying Layer to MAC.
type ForwardLayerChangeToReceiver struct {
	MAC   protocol.MAC
	Layer protocol.Layer
}

// ChangeSubscribedLayer asks the caller (a receiver) to adopt Layer as
// its subscribed layer, persist it, and immediately unicast a fresh
// ReceiverInfo to every known sender.
type ChangeSubscribedLayer struct {
	Layer protocol.Layer
}

// EmitError asks the caller to send an ERROR_REPORT envelope (opcode
// 0x30) with Code and up to 32 bytes of Context.
type EmitError struct {
	Code    byte
	Context []byte
}

func (EnableSenderMode) isReply()             {}
func (EmitHello) isReply()                    {}
func (EmitConfigState) isReply()              {}
func (EmitRunningState) isReply()             {}
func (ApplyRFSimConfig) isReply()             {}
func (FanOutMediaSync) isReply()              {}
func (ForwardLayerChangeToReceiver) isReply() {}
func (ChangeSubscribedLayer) isReply()        {}
func (EmitError) isReply()                    {}
