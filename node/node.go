// Package node wires the rest of the firmware together into the two
// cooperative tasks spec §4.8 describes (C8): a MIDI task that polls the
// USB-MIDI link and emits every SysEx envelope sent to the host, and a
// wireless task that owns every other piece of mutable state (C3's tables,
// RF-sim flags, MediaSyncState, the mode flags) and is their sole writer.
// The receiver engine, run by the wireless task, writes its CC#100 and MTC
// quarter-frame packets to the same USB-MIDI driver directly. The two
// tasks otherwise communicate only through three bounded, single-producer
// channels,
// generalizing the "driver callback hands off to a small inbound queue"
// design note (spec §5) to every cross-task handoff this firmware needs.
package node

import (
	"log/slog"
	"time"

	"github.com/nowde-project/nowde/clock"
	"github.com/nowde-project/nowde/discovery"
	"github.com/nowde-project/nowde/driver/usbmidi"
	"github.com/nowde-project/nowde/driver/wireless"
	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
	"github.com/nowde-project/nowde/receiver"
	"github.com/nowde-project/nowde/report"
	"github.com/nowde-project/nowde/router"
	"github.com/nowde-project/nowde/sender"
	"github.com/nowde-project/nowde/store"
)

// inboxCapacity bounds every cross-task channel: host SysEx commands,
// inbound wireless datagrams (beacons, receiver info, and MediaSync), and
// host-bound reports. Overflow is dropped and logged rather than blocking
// a task, per
// spec §5's "no reliable delivery" philosophy applied to task handoff.
const inboxCapacity = 8

// wirelessFrame is one inbound datagram queued by the radio driver's recv
// handler for the wireless task to process (spec §5: "that callback must
// complete quickly and hand off ... via a small inbound queue").
type wirelessFrame struct {
	src  protocol.MAC
	data []byte
}

// Node holds every piece of state a Nowde firmware instance needs, split
// by which task owns it (see field group comments). Only WirelessTask and
// MIDITask, run as separate goroutines by the caller, ever touch a Node's
// fields; nothing else should reach into it directly.
type Node struct {
	log *slog.Logger

	// MIDI-task owned: USB-MIDI polling and its SysEx reassembly buffer.
	// The receiver engine holds the same midi driver for its CC/MTC writes.
	midi   usbmidi.MIDIDriver
	parser *protocol.Parser

	// Wireless-task owned: everything else. peer tables, discovery FSMs,
	// fan-out/engine state, RF-sim flags, and the mode booleans are all
	// read and written exclusively from WirelessTask's goroutine.
	radio      wireless.RadioDriver
	meshClock  clock.MeshClock
	layerStore store.LayerStore
	bootReason report.BootReasonProvider

	mode router.NodeMode

	senders   peer.SenderTable
	receivers peer.ReceiverTable

	discSender   *discovery.SenderSide
	discReceiver *discovery.ReceiverSide
	fanout       *sender.FanOut
	engine       *receiver.Engine
	reporter     *report.Reporter

	subscribedLayer protocol.Layer
	version         [protocol.MaxVersionLength]byte

	rfSimEnabled    bool
	rfSimMaxDelayMs uint16

	startedAt        time.Time
	lastBridgeReport time.Time

	// Cross-task handoff. commandInbox carries SysEx commands from the USB
	// link into the wireless task, which is the only place router.Dispatch
	// ever runs (so it can read ctx.FindReceiver and ctx.MeshNow without
	// racing WirelessTask's own writes); envelopes arriving over the radio
	// come in through wirelessInbox and are dispatched by the same task.
	// hostOutbox carries built envelopes back out to the MIDI task, which
	// emits every host-bound SysEx envelope (spec §4.8), per SPEC_FULL's
	// node.hostOutbox.
	commandInbox  chan router.Envelope
	wirelessInbox chan wirelessFrame
	hostOutbox    chan []byte
}

// New returns a Node with receiver mode auto-activated on a persisted or
// default layer (spec §3) and sender mode off until QUERY_CONFIG enables
// it. local is this node's own wireless address.
func New(
	midi usbmidi.MIDIDriver,
	radio wireless.RadioDriver,
	meshClock clock.MeshClock,
	layerStore store.LayerStore,
	bootReason report.BootReasonProvider,
	local protocol.MAC,
	log *slog.Logger,
) *Node {
	n := &Node{
		log:        log,
		midi:       midi,
		parser:     protocol.NewParser(),
		radio:      radio,
		meshClock:  meshClock,
		layerStore: layerStore,
		bootReason: bootReason,
		mode:       router.NodeMode{ReceiverEnabled: true},
		reporter:   report.NewReporter(log),
		startedAt:  time.Now(),

		commandInbox:  make(chan router.Envelope, inboxCapacity),
		wirelessInbox: make(chan wirelessFrame, inboxCapacity),
		hostOutbox:    make(chan []byte, inboxCapacity),
	}
	copy(n.version[:], protocol.NodeVersion)

	if saved, err := layerStore.Load(); err != nil {
		n.log.Warn("layer store load failed, using default", "err", err)
		n.subscribedLayer = protocol.DefaultLayerValue()
	} else {
		n.subscribedLayer = protocol.NewLayer(saved)
	}

	n.discSender = discovery.NewSenderSide(radio, &n.receivers, log)
	n.discReceiver = discovery.NewReceiverSide(radio, &n.senders, log)
	n.fanout = sender.NewFanOut(radio, &n.receivers, log)
	n.engine = receiver.NewEngine(midi, log)

	radio.SetRecvHandler(n.onWirelessFrame)
	if err := radio.Init(local); err != nil {
		n.log.Warn("radio init failed", "err", err)
	}

	return n
}

// onWirelessFrame is installed as the radio driver's recv handler. It must
// return quickly (spec §5), so it only enqueues.
func (n *Node) onWirelessFrame(src protocol.MAC, data []byte) {
	select {
	case n.wirelessInbox <- wirelessFrame{src: src, data: data}:
	default:
		n.log.Warn("wireless inbox full, dropping frame", "src", src)
	}
}

// SubscribedLayer returns a copy of the receiver's current subscribed
// layer. Intended for tests and startup logging; WirelessTask is the only
// goroutine that should call this while the task loops are running.
func (n *Node) SubscribedLayer() protocol.Layer { return n.subscribedLayer }

// Mode returns a copy of the current mode flags.
func (n *Node) Mode() router.NodeMode { return n.mode }
