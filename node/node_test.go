package node

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nowde-project/nowde/clock"
	"github.com/nowde-project/nowde/protocol"
	"github.com/nowde-project/nowde/report"
	"github.com/nowde-project/nowde/router"
	"github.com/nowde-project/nowde/store"

	usbmidistub "github.com/nowde-project/nowde/driver/usbmidi/stub"
	wirelessstub "github.com/nowde-project/nowde/driver/wireless/stub"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNode(t *testing.T) (*Node, *usbmidistub.Driver, *wirelessstub.Driver) {
	t.Helper()
	midi := usbmidistub.New()
	radio := wirelessstub.New()
	local := protocol.MAC{0, 0, 0, 0, 0, 1}
	n := New(midi, radio, clock.NewStubClock(), store.NewMemStore(), report.NewHostBootReason(), local, discardLogger())
	return n, midi.(*usbmidistub.Driver), radio.(*wirelessstub.Driver)
}

// injectHostEnvelope feeds env's USB-MIDI packets through the stub midi
// driver and the C1 parser, exactly as MIDITask's pollMIDI would, and
// returns the reassembled router.Envelope.
func injectHostEnvelope(n *Node, midi *usbmidistub.Driver, env []byte) router.Envelope {
	for _, pkt := range protocol.EmitEnvelope(env) {
		midi.InjectInbound(pkt)
	}
	n.pollMIDI()
	select {
	case e := <-n.commandInbox:
		return e
	default:
		panic("injectHostEnvelope: no envelope reached commandInbox")
	}
}

func hostSysEx(opcode byte, payload ...byte) []byte {
	env := make([]byte, 0, 4+len(payload))
	env = append(env, protocol.SysExStart, protocol.ManufacturerID, opcode)
	env = append(env, payload...)
	env = append(env, protocol.SysExEnd)
	return env
}

func TestHelloHandshakeEnablesSenderAndEmitsHelloThenConfigState(t *testing.T) {
	n, midi, _ := newTestNode(t)

	env := injectHostEnvelope(n, midi, hostSysEx(protocol.OpQueryConfig))
	n.dispatch(env)

	if !n.mode.SenderEnabled {
		t.Fatal("SenderEnabled = false, want true after QUERY_CONFIG")
	}

	first := <-n.hostOutbox
	if protocol.Opcode(first) != protocol.OpHello {
		t.Errorf("first outbox envelope opcode = %#x, want OpHello", protocol.Opcode(first))
	}
	second := <-n.hostOutbox
	if protocol.Opcode(second) != protocol.OpConfigState {
		t.Errorf("second outbox envelope opcode = %#x, want OpConfigState", protocol.Opcode(second))
	}

	select {
	case extra := <-n.hostOutbox:
		t.Errorf("unexpected extra outbox envelope: %#v", extra)
	default:
	}
}

func TestPushFullConfigUpdatesRFSimAndEmitsConfigState(t *testing.T) {
	n, midi, _ := newTestNode(t)

	env := injectHostEnvelope(n, midi, hostSysEx(protocol.OpPushFullConfig, 0x01, 0x03, 0x14))
	n.dispatch(env)

	if !n.rfSimEnabled || n.rfSimMaxDelayMs != 404 {
		t.Fatalf("rfSimEnabled=%v rfSimMaxDelayMs=%d, want true/404", n.rfSimEnabled, n.rfSimMaxDelayMs)
	}
	if !n.fanout.SimEnabled || n.fanout.SimMaxDelay != 404*time.Millisecond {
		t.Errorf("fanout not updated: SimEnabled=%v SimMaxDelay=%v", n.fanout.SimEnabled, n.fanout.SimMaxDelay)
	}

	got := <-n.hostOutbox
	want := hostSysEx(protocol.OpConfigState, 0x01, 0x03, 0x14)
	if string(got) != string(want) {
		t.Errorf("CONFIG_STATE envelope = % X, want % X", got, want)
	}
}

func TestChangeReceiverLayerFromPeerUpdatesSubscribedLayerAndPersists(t *testing.T) {
	n, _, radio := newTestNode(t)

	layer := protocol.NewLayer("BETA")
	wireEnv := append([]byte{protocol.SysExStart, protocol.ManufacturerID, protocol.OpChangeReceiverLayer}, layer[:]...)
	wireEnv = append(wireEnv, protocol.SysExEnd)

	radio.InjectRx(protocol.MAC{9, 9, 9, 9, 9, 9}, wireEnv)

	select {
	case f := <-n.wirelessInbox:
		n.handleWirelessFrame(f)
	default:
		t.Fatal("no frame reached wirelessInbox")
	}

	if !n.subscribedLayer.Equal(layer) {
		t.Errorf("subscribedLayer = %q, want %q", n.subscribedLayer.String(), layer.String())
	}
	saved, err := n.layerStore.Load()
	if err != nil || saved != "BETA" {
		t.Errorf("layerStore.Load() = (%q, %v), want (\"BETA\", nil)", saved, err)
	}
}

func TestMediaSyncFansOutOnlyToMatchingLayer(t *testing.T) {
	n, midi, radio := newTestNode(t)
	n.mode.SenderEnabled = true

	macA := protocol.MAC{1, 1, 1, 1, 1, 1}
	macB := protocol.MAC{2, 2, 2, 2, 2, 2}
	var version [protocol.MaxVersionLength]byte
	n.receivers.Upsert(macA, protocol.NewLayer("A"), version, 0, time.Now())
	n.receivers.Upsert(macB, protocol.NewLayer("B"), version, 0, time.Now())

	layer := protocol.NewLayer("A")
	payload := make([]byte, 0, 16+1+8+1)
	payload = append(payload, layer[:]...)
	payload = append(payload, 7)
	raw := []byte{0, 0, 0x30, 0x39} // 12345
	payload = protocol.Encode7Bit(payload, raw)
	payload = append(payload, 1)

	env := injectHostEnvelope(n, midi, hostSysEx(protocol.OpMediaSync, payload...))
	n.dispatch(env)
	n.fanout.DrainDue(time.Now())

	if got := radio.SentTo(macA); len(got) != 1 {
		t.Errorf("SentTo(macA) = %d frames, want 1", len(got))
	}
	if got := radio.SentTo(macB); len(got) != 0 {
		t.Errorf("SentTo(macB) = %d frames, want 0", len(got))
	}
}

func TestBridgeReportOnlyPushedOnChange(t *testing.T) {
	n, _, _ := newTestNode(t)
	n.mode.SenderEnabled = true

	var version [protocol.MaxVersionLength]byte
	n.receivers.Upsert(protocol.MAC{1}, protocol.NewLayer("A"), version, 0, time.Now())

	now := time.Now()
	n.wirelessTick(now)
	select {
	case <-n.hostOutbox:
	default:
		t.Fatal("expected a bridge report on first tick with a receiver present")
	}

	now = now.Add(2 * protocol.BridgeReportInterval)
	n.wirelessTick(now)
	select {
	case env := <-n.hostOutbox:
		t.Errorf("unexpected second bridge report with unchanged table: %#v", env)
	default:
	}
}

func TestUnknownOpcodeEmitsErrorReport(t *testing.T) {
	n, midi, _ := newTestNode(t)

	env := injectHostEnvelope(n, midi, hostSysEx(0x7E))
	n.dispatch(env)

	got := <-n.hostOutbox
	if protocol.Opcode(got) != protocol.OpErrorReport {
		t.Errorf("opcode = %#x, want OpErrorReport", protocol.Opcode(got))
	}
	if len(got) < 4 || got[3] != protocol.ErrCodeSysExParseError {
		t.Errorf("error code = % X, want ErrCodeSysExParseError", got)
	}
}
