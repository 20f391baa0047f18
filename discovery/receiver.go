package discovery

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nowde-project/nowde/driver/wireless"
	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

// ReceiverSide runs the receiver half of the discovery FSM (spec §4.4): it
// unicasts ReceiverInfo to every known sender every
// ReceiverBeaconInterval plus uniform jitter, and maintains the sender
// table from inbound SenderBeacons. Jitter de-correlates collisions when
// many receivers answer the same sender beacon.
type ReceiverSide struct {
	radio      wireless.RadioDriver
	senders    *peer.SenderTable
	log        *slog.Logger
	lastBeacon time.Time
	nextJitter time.Duration
}

// NewReceiverSide returns a ReceiverSide that unicasts through radio and
// records senders into senders.
func NewReceiverSide(radio wireless.RadioDriver, senders *peer.SenderTable, log *slog.Logger) *ReceiverSide {
	r := &ReceiverSide{radio: radio, senders: senders, log: log}
	r.rollJitter()
	return r
}

func (r *ReceiverSide) rollJitter() {
	r.nextJitter = time.Duration(rand.Int64N(int64(protocol.ReceiverBeaconJitter)))
}

// Tick unicasts ReceiverInfo (carrying layer, version, and mediaIndex) to
// every active sender once ReceiverBeaconInterval plus this round's jitter
// has elapsed. Per spec §7 supplemented feature 4, nothing is sent if
// layer is empty.
func (r *ReceiverSide) Tick(now time.Time, layer protocol.Layer, version [protocol.MaxVersionLength]byte, mediaIndex byte) {
	if !r.lastBeacon.IsZero() && now.Sub(r.lastBeacon) < protocol.ReceiverBeaconInterval+r.nextJitter {
		return
	}
	r.lastBeacon = now
	r.rollJitter()

	if layer.String() == "" {
		return
	}

	info := protocol.ReceiverInfo{Layer: layer, Version: version, MediaIndex: mediaIndex}
	data := protocol.EncodeReceiverInfo(info)
	for _, s := range r.senders.Active() {
		if err := r.radio.Send(s.MAC, data); err != nil {
			r.log.Warn("receiver info send failed", "mac", s.MAC, "err", err)
		}
	}
}

// HandleSenderBeacon upserts the row for mac and, on first sight, adds it
// to the driver's peer list.
func (r *ReceiverSide) HandleSenderBeacon(mac protocol.MAC, now time.Time) {
	if r.senders.Upsert(mac, now) {
		if err := r.radio.AddPeer(mac); err != nil {
			r.log.Warn("add peer failed", "mac", mac, "err", err)
		}
		r.log.Info("sender registered", "mac", mac)
	}
}

// ExpireTimeouts removes senders silent for longer than SenderTimeout and
// drops them from the driver's peer list.
func (r *ReceiverSide) ExpireTimeouts(now time.Time) {
	for _, mac := range r.senders.RemoveTimedOut(now, protocol.SenderTimeout) {
		if err := r.radio.RemovePeer(mac); err != nil {
			r.log.Warn("remove peer failed", "mac", mac, "err", err)
		}
	}
}
