package node

import (
	"time"

	"github.com/nowde-project/nowde/protocol"
	"github.com/nowde-project/nowde/router"
)

// MIDITask runs the MIDI task loop (spec §4.8): poll USB MIDI on a tight
// cadence, feed bytes through the C1 parser, forward completed SysEx
// envelopes to the wireless task, and drain hostOutbox for USB emission.
// It is the only goroutine that calls midi.ReadPacket and the only one
// that writes SysEx envelopes; the receiver engine, run by WirelessTask,
// writes CC#100 and MTC packets to the same driver. It returns when stop
// is closed.
func (n *Node) MIDITask(pollInterval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.pollMIDI()
		case env := <-n.hostOutbox:
			n.writeEnvelope(env)
		}
	}
}

// pollMIDI drains every packet currently available from the USB-MIDI
// driver, reassembling SysEx envelopes through n.parser and handing
// completed ones to the wireless task. It must not block on wireless
// operations (spec §4.8).
func (n *Node) pollMIDI() {
	for {
		pkt, ok := n.midi.ReadPacket()
		if !ok {
			return
		}
		env, complete := n.parser.Feed(pkt)
		if !complete {
			continue
		}
		if err := protocol.ValidateEnvelope(env); err != nil {
			n.log.Warn("invalid host envelope", "err", err)
			continue
		}
		select {
		case n.commandInbox <- router.Envelope{
			Opcode:  protocol.Opcode(env),
			Payload: protocol.Payload(env),
			Origin:  router.OriginHost,
		}:
		default:
			n.log.Warn("command inbox full, dropping host envelope")
		}
	}
}

func (n *Node) writeEnvelope(env []byte) {
	for _, pkt := range protocol.EmitEnvelope(env) {
		if err := n.midi.WritePacket(pkt); err != nil {
			n.log.Warn("usb write failed", "err", err)
			return
		}
	}
}
