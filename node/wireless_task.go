package node

import (
	"time"

	"github.com/nowde-project/nowde/protocol"
	"github.com/nowde-project/nowde/router"
)

// WirelessTask runs the wireless task loop (spec §4.8): C4's discovery
// timers on every tick, C6's delayed-queue drain, C7's freewheel/MTC
// generation, the mesh-clock service-tick, and periodic C10 reporting. It
// also drains commandInbox and wirelessInbox as they arrive, since this
// goroutine is the sole writer of every table and flag router.Dispatch
// touches. It returns when stop is closed, mirroring
// driver/wireless/stub.Link's stop-channel convention.
func (n *Node) WirelessTask(tick time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.wirelessTick(time.Now())
		case env := <-n.commandInbox:
			n.dispatch(env)
		case frame := <-n.wirelessInbox:
			n.handleWirelessFrame(frame)
		}
	}
}

func (n *Node) wirelessTick(now time.Time) {
	if n.mode.SenderEnabled {
		n.discSender.Tick(now)
		n.discSender.ExpireTimeouts(now)
		n.fanout.DrainDue(now)
	}
	if n.mode.ReceiverEnabled {
		n.discReceiver.Tick(now, n.subscribedLayer, n.version, n.engine.State().CurrentIndex)
		n.discReceiver.ExpireTimeouts(now)
		n.engine.Tick(now)
	}
	n.meshClock.Tick()

	if n.mode.SenderEnabled && now.Sub(n.lastBridgeReport) >= protocol.BridgeReportInterval {
		n.lastBridgeReport = now
		if env, changed := n.reporter.MaybeReceiverTableReport(n.receivers.Active()); changed {
			n.pushHost(env)
		}
	}
}

// handleWirelessFrame classifies one inbound wireless datagram and routes
// it to the discovery FSMs, the receiver engine, or Dispatch, depending on
// its first byte (spec §4.2's fourth datagram shape: a routed SysEx
// envelope distinguished by a leading SysExStart).
func (n *Node) handleWirelessFrame(f wirelessFrame) {
	dtype, err := protocol.DatagramType(f.data)
	if err != nil {
		return
	}

	if dtype == protocol.SysExStart {
		if err := protocol.ValidateEnvelope(f.data); err != nil {
			n.log.Warn("invalid wireless envelope", "src", f.src, "err", err)
			return
		}
		n.dispatch(router.Envelope{
			Opcode:  protocol.Opcode(f.data),
			Payload: protocol.Payload(f.data),
			Origin:  router.OriginWireless,
		})
		return
	}

	now := time.Now()
	switch dtype {
	case protocol.DatagramSenderBeacon:
		if n.mode.ReceiverEnabled {
			n.discReceiver.HandleSenderBeacon(f.src, now)
		}
	case protocol.DatagramReceiverInfo:
		if n.mode.SenderEnabled {
			info, err := protocol.DecodeReceiverInfo(f.data)
			if err != nil {
				n.log.Warn("malformed receiver info", "src", f.src, "err", err)
				return
			}
			n.discSender.HandleReceiverInfo(f.src, info, now)
		}
	case protocol.DatagramMediaSync:
		if n.mode.ReceiverEnabled {
			sync, err := protocol.DecodeMediaSync(f.data)
			if err != nil {
				n.log.Warn("malformed media sync", "src", f.src, "err", err)
				return
			}
			if sync.Layer.Equal(n.subscribedLayer) {
				n.engine.HandleMediaSync(sync, n.meshClock.Now(), now)
			}
		}
	default:
		n.log.Warn("unknown datagram type", "type", dtype, "src", f.src)
	}
}

// dispatch runs router.Dispatch and executes every reply it returns. This
// is the only place Dispatch is called, from either link, so ctx's reads
// of receivers/meshClock never race this goroutine's own writes to them.
func (n *Node) dispatch(env router.Envelope) {
	ctx := router.DispatchContext{
		MeshNow:      n.meshClock.Now(),
		FindReceiver: n.receivers.FindActive,
	}
	for _, r := range router.Dispatch(env, n.mode, ctx) {
		n.apply(r)
	}
}

func (n *Node) apply(r router.Reply) {
	switch reply := r.(type) {
	case router.EnableSenderMode:
		n.mode.SenderEnabled = true
	case router.EmitHello:
		n.pushHost(helloEnvelope(n))
	case router.EmitConfigState:
		n.pushHost(configStateEnvelope(n))
	case router.EmitRunningState:
		n.pushHost(runningStateEnvelope(n))
	case router.ApplyRFSimConfig:
		n.rfSimEnabled = reply.Enabled
		n.rfSimMaxDelayMs = reply.MaxDelayMs
		n.fanout.SimEnabled = reply.Enabled
		n.fanout.SimMaxDelay = time.Duration(reply.MaxDelayMs) * time.Millisecond
	case router.FanOutMediaSync:
		n.fanout.Dispatch(reply.Layer, reply.Sync, time.Now())
	case router.ForwardLayerChangeToReceiver:
		if err := n.radio.Send(reply.MAC, changeReceiverLayerDatagram(reply.Layer)); err != nil {
			n.log.Warn("layer change forward failed", "mac", reply.MAC, "err", err)
		}
	case router.ChangeSubscribedLayer:
		n.changeSubscribedLayer(reply.Layer)
	case router.EmitError:
		n.pushHost(errorReportEnvelope(reply))
	}
}

// changeSubscribedLayer adopts layer, persists it, and immediately
// re-announces to every known sender rather than waiting for the next
// beacon tick, per reply.ChangeSubscribedLayer's contract.
func (n *Node) changeSubscribedLayer(layer protocol.Layer) {
	n.subscribedLayer = layer
	if err := n.layerStore.Save(layer.String()); err != nil {
		n.log.Warn("layer store save failed", "err", err)
	}

	info := protocol.ReceiverInfo{Layer: layer, Version: n.version, MediaIndex: n.engine.State().CurrentIndex}
	data := protocol.EncodeReceiverInfo(info)
	for _, s := range n.senders.Active() {
		if err := n.radio.Send(s.MAC, data); err != nil {
			n.log.Warn("receiver info send failed", "mac", s.MAC, "err", err)
		}
	}
}

// changeReceiverLayerDatagram builds the raw (not 7-bit-packed — the
// wireless link has no MIDI high-bit constraint, per router's
// ForwardLayerChangeToReceiver doc) CHANGE_RECEIVER_LAYER envelope a
// sender unicasts to one receiver over the radio link.
func changeReceiverLayerDatagram(layer protocol.Layer) []byte {
	env := make([]byte, 0, 4+protocol.MaxLayerLength)
	env = append(env, protocol.SysExStart, protocol.ManufacturerID, protocol.OpChangeReceiverLayer)
	env = append(env, layer[:]...)
	env = append(env, protocol.SysExEnd)
	return env
}

// pushHost hands env to the MIDI task for USB emission. A full hostOutbox
// means the MIDI task is falling behind; the report is dropped rather
// than blocking WirelessTask, consistent with spec §5's no-reliable-
// delivery philosophy.
func (n *Node) pushHost(env []byte) {
	select {
	case n.hostOutbox <- env:
	default:
		n.log.Warn("host outbox full, dropping envelope", "opcode", env[2])
	}
}
