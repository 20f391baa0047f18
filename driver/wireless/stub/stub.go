//go:build !tinygo && !baremetal

// Package stub provides an in-memory wireless.RadioDriver for host-side
// testing, following the driver/stub pattern in
// _examples/ystepanoff-nrfcomm/driver/stub/stub_driver.go: a mutex-guarded
// buffer plus InjectRx/GetTxLog test hooks, generalized here from a single
// link to a MAC-addressed peer table.
package stub

import (
	"sync"
	"time"

	"github.com/nowde-project/nowde/driver/wireless"
	"github.com/nowde-project/nowde/protocol"
)

type txEntry struct {
	dst  protocol.MAC
	data []byte
}

// Driver is a mock radio: sends land in a tx log, and a registered recv
// handler fires synchronously for anything delivered via InjectRx or
// relayed by Link. Per spec §5 the handler must hand off quickly; here it
// simply invokes whatever callback SetRecvHandler installed, which in
// practice is node.WirelessTask's inbox enqueue.
type Driver struct {
	mu      sync.Mutex
	local   protocol.MAC
	peers   map[protocol.MAC]bool
	txLog   []txEntry
	handler func(src protocol.MAC, data []byte)
}

// New returns a wireless.RadioDriver backed by an in-memory peer table.
func New() wireless.RadioDriver { return &Driver{peers: make(map[protocol.MAC]bool)} }

func (d *Driver) Init(local protocol.MAC) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.local = local
	return nil
}

func (d *Driver) AddPeer(mac protocol.MAC) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peers[mac] = true
	return nil
}

func (d *Driver) RemovePeer(mac protocol.MAC) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.peers, mac)
	return nil
}

func (d *Driver) Send(mac protocol.MAC, data []byte) error {
	cp := append([]byte(nil), data...)
	d.mu.Lock()
	d.txLog = append(d.txLog, txEntry{dst: mac, data: cp})
	d.mu.Unlock()
	return nil
}

func (d *Driver) Broadcast(data []byte) error {
	return d.Send(protocol.BroadcastMAC, data)
}

func (d *Driver) SetRecvHandler(handler func(src protocol.MAC, data []byte)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

// InjectRx delivers data as if it arrived from src, invoking the
// registered recv handler directly (test-only, simulates the driver's ISR
// context calling back into the firmware).
func (d *Driver) InjectRx(src protocol.MAC, data []byte) {
	d.mu.Lock()
	handler := d.handler
	d.mu.Unlock()
	if handler != nil {
		handler(src, append([]byte(nil), data...))
	}
}

// DrainTxLog returns and clears every frame sent since the last drain.
func (d *Driver) DrainTxLog() []txEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.txLog
	d.txLog = nil
	return out
}

// SentTo returns a copy of every payload Send/Broadcast has queued for
// dst since the last drain, without clearing the log. Useful for
// assertions in fan-out tests.
func (d *Driver) SentTo(dst protocol.MAC) [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out [][]byte
	for _, e := range d.txLog {
		if e.dst == dst {
			out = append(out, append([]byte(nil), e.data...))
		}
	}
	return out
}

// Pump relays one round of queued frames between a and b: anything a sent
// to bMAC or broadcast is delivered to b as if it arrived from aMAC, and
// symmetrically for b. A single synchronous pass keeps tests deterministic.
func Pump(a, b *Driver, aMAC, bMAC protocol.MAC) {
	for _, e := range a.DrainTxLog() {
		if e.dst == bMAC || e.dst == protocol.BroadcastMAC {
			b.InjectRx(aMAC, e.data)
		}
	}
	for _, e := range b.DrainTxLog() {
		if e.dst == aMAC || e.dst == protocol.BroadcastMAC {
			a.InjectRx(bMAC, e.data)
		}
	}
}

// Link wires two stub drivers together with a background goroutine that
// repeatedly calls Pump, following the ConnectDrivers relay pattern from
// transport/transport_test.go. Intended for longer-running integration
// tests that drive both nodes' task loops concurrently.
func Link(a, b *Driver, aMAC, bMAC protocol.MAC, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				Pump(a, b, aMAC, bMAC)
			}
		}
	}()
}
