// Package sender implements the sender sync fan-out (C6, spec §4.6):
// layer-filtered forwarding of MediaSync packets to every active
// receiver subscribed to the target layer, with an optional RF-simulation
// delay ring for testing fan-out behavior under induced latency.
package sender

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nowde-project/nowde/driver/wireless"
	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

// delayedPacket is one entry in the RF-simulation ring: a fan-out
// datagram whose delivery is deferred until Release.
type delayedPacket struct {
	mac     protocol.MAC
	data    []byte
	release time.Time
}

// FanOut owns the RF-simulation state (spec §3, sender-only debug aid)
// and drives C6's layer-filtered forwarding.
type FanOut struct {
	radio     wireless.RadioDriver
	receivers *peer.ReceiverTable
	log       *slog.Logger

	SimEnabled  bool
	SimMaxDelay time.Duration

	ring    [protocol.MaxDelayedPackets]delayedPacket
	ringLen int
}

// NewFanOut returns a FanOut that sends through radio and reads the
// candidate receiver set from receivers.
func NewFanOut(radio wireless.RadioDriver, receivers *peer.ReceiverTable, log *slog.Logger) *FanOut {
	return &FanOut{radio: radio, receivers: receivers, log: log}
}

// Dispatch sends sync to every active receiver whose layer equals layer,
// regardless of Connected (spec §4.6: "connected is not required — this
// guarantees 'stopped' transitions reach receivers that have fallen
// silent"). If RF simulation is enabled, delivery is deferred into the
// delayed ring instead of sent immediately.
func (f *FanOut) Dispatch(layer protocol.Layer, sync protocol.MediaSync, now time.Time) {
	data := protocol.EncodeMediaSync(sync)
	for _, r := range f.receivers.MatchingLayer(layer) {
		if f.SimEnabled {
			f.enqueue(r.MAC, data, now)
			continue
		}
		f.send(r.MAC, data)
	}
}

func (f *FanOut) enqueue(mac protocol.MAC, data []byte, now time.Time) {
	if f.ringLen >= len(f.ring) {
		f.log.Warn("rf-sim ring full, dropping packet", "mac", mac)
		return
	}
	var delay time.Duration
	if f.SimMaxDelay > 0 {
		delay = time.Duration(rand.Int64N(int64(f.SimMaxDelay)))
	}
	f.ring[f.ringLen] = delayedPacket{mac: mac, data: data, release: now.Add(delay)}
	f.ringLen++
}

func (f *FanOut) send(mac protocol.MAC, data []byte) {
	if err := f.radio.Send(mac, data); err != nil {
		f.log.Warn("fan-out send failed", "mac", mac, "err", err)
	}
}

// DrainDue sends every ring entry whose release time has passed, called
// by the wireless task on its 10ms tick (spec §4.6: "the wireless task
// drains entries whose release time has passed on each tick").
func (f *FanOut) DrainDue(now time.Time) {
	var kept [protocol.MaxDelayedPackets]delayedPacket
	keptLen := 0
	for i := 0; i < f.ringLen; i++ {
		p := f.ring[i]
		if !now.Before(p.release) {
			f.send(p.mac, p.data)
			continue
		}
		kept[keptLen] = p
		keptLen++
	}
	f.ring = kept
	f.ringLen = keptLen
}

// Pending returns the number of entries currently queued in the
// RF-simulation ring.
func (f *FanOut) Pending() int { return f.ringLen }
