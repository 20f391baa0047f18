package discovery

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nowde-project/nowde/driver/wireless/stub"
	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSenderSideTicksBroadcastAtInterval(t *testing.T) {
	radio := stub.New().(*stub.Driver)
	var table peer.ReceiverTable
	s := NewSenderSide(radio, &table, discardLogger())

	base := time.Now()
	s.Tick(base)
	if n := len(radio.SentTo(protocol.BroadcastMAC)); n != 1 {
		t.Fatalf("beacon count after first tick = %d, want 1", n)
	}

	s.Tick(base.Add(500 * time.Millisecond))
	if n := len(radio.SentTo(protocol.BroadcastMAC)); n != 1 {
		t.Fatalf("beacon count before interval elapsed = %d, want 1", n)
	}

	s.Tick(base.Add(1100 * time.Millisecond))
	if n := len(radio.SentTo(protocol.BroadcastMAC)); n != 2 {
		t.Fatalf("beacon count after interval elapsed = %d, want 2", n)
	}
}

func TestSenderSideRegistersReceiverAndAddsPeer(t *testing.T) {
	radio := stub.New().(*stub.Driver)
	var table peer.ReceiverTable
	s := NewSenderSide(radio, &table, discardLogger())

	mac := protocol.MAC{1, 2, 3, 4, 5, 6}
	info := protocol.ReceiverInfo{Layer: protocol.NewLayer("A"), MediaIndex: 1}
	res := s.HandleReceiverInfo(mac, info, time.Now())
	if !res.Created {
		t.Fatalf("first HandleReceiverInfo: Created = false, want true")
	}
	if _, ok := table.FindActive(mac); !ok {
		t.Errorf("receiver table does not contain %v after registration", mac)
	}
}

func TestSenderSideExpireTimeoutsMarksDisconnectedThenFrees(t *testing.T) {
	radio := stub.New().(*stub.Driver)
	var table peer.ReceiverTable
	s := NewSenderSide(radio, &table, discardLogger())

	mac := protocol.MAC{9}
	base := time.Now()
	s.HandleReceiverInfo(mac, protocol.ReceiverInfo{Layer: protocol.NewLayer("A")}, base)

	s.ExpireTimeouts(base.Add(6 * time.Second))
	row, ok := table.FindActive(mac)
	if !ok || row.Connected {
		t.Fatalf("after ReceiverTimeout: row = %+v, ok = %v, want active && !connected", row, ok)
	}

	s.ExpireTimeouts(base.Add(11 * time.Second))
	if _, ok := table.FindActive(mac); ok {
		t.Errorf("row still active after ExtendedSilence, want freed")
	}
}

func TestReceiverSideSkipsEmptyLayer(t *testing.T) {
	radio := stub.New().(*stub.Driver)
	var table peer.SenderTable
	r := NewReceiverSide(radio, &table, discardLogger())

	senderMAC := protocol.MAC{1}
	table.Upsert(senderMAC, time.Now())

	r.Tick(time.Now().Add(2*time.Second), protocol.Layer{}, [protocol.MaxVersionLength]byte{}, 0)
	if n := len(radio.SentTo(senderMAC)); n != 0 {
		t.Errorf("sent %d ReceiverInfo with empty layer, want 0", n)
	}
}

func TestReceiverSideUnicastsToKnownSenders(t *testing.T) {
	radio := stub.New().(*stub.Driver)
	var table peer.SenderTable
	r := NewReceiverSide(radio, &table, discardLogger())

	senderMAC := protocol.MAC{1}
	base := time.Now()
	table.Upsert(senderMAC, base)

	r.Tick(base.Add(2*time.Second), protocol.NewLayer("A"), [protocol.MaxVersionLength]byte{}, 0)
	if n := len(radio.SentTo(senderMAC)); n != 1 {
		t.Fatalf("sent %d ReceiverInfo, want 1", n)
	}
}
