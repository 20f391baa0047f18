// Package discovery implements the beacon/registration/timeout state
// machines (C4) for both node roles. Both FSMs are driven once per
// wireless-task tick (spec §4.8) and are the sole writers of the peer
// tables and driver peer list they touch, per the single-writer
// discipline in spec §9.
package discovery

import (
	"log/slog"
	"time"

	"github.com/nowde-project/nowde/driver/wireless"
	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

// SenderSide runs the sender half of the discovery FSM (spec §4.4): it
// broadcasts a SenderBeacon every SenderBeaconInterval and maintains the
// receiver table from inbound ReceiverInfo.
type SenderSide struct {
	radio      wireless.RadioDriver
	receivers  *peer.ReceiverTable
	log        *slog.Logger
	lastBeacon time.Time
}

// NewSenderSide returns a SenderSide that broadcasts through radio and
// records receivers into receivers.
func NewSenderSide(radio wireless.RadioDriver, receivers *peer.ReceiverTable, log *slog.Logger) *SenderSide {
	return &SenderSide{radio: radio, receivers: receivers, log: log}
}

// Tick broadcasts a SenderBeacon if SenderBeaconInterval has elapsed since
// the last one.
func (s *SenderSide) Tick(now time.Time) {
	if !s.lastBeacon.IsZero() && now.Sub(s.lastBeacon) < protocol.SenderBeaconInterval {
		return
	}
	s.lastBeacon = now
	if err := s.radio.Broadcast(protocol.EncodeSenderBeacon()); err != nil {
		s.log.Warn("sender beacon broadcast failed", "err", err)
	}
}

// HandleReceiverInfo upserts the row for mac and, on first sight, adds it
// to the driver's peer list (spec §4.4: "on first insert, add the peer to
// the driver's peer list"). Reconnect/layer-change are logged; steady
// beacons are not (spec §7 supplemented feature 3).
func (s *SenderSide) HandleReceiverInfo(mac protocol.MAC, info protocol.ReceiverInfo, now time.Time) peer.UpsertResult {
	res := s.receivers.Upsert(mac, info.Layer, info.Version, info.MediaIndex, now)
	switch {
	case res.Created:
		if err := s.radio.AddPeer(mac); err != nil {
			s.log.Warn("add peer failed", "mac", mac, "err", err)
		}
		s.log.Info("receiver registered", "mac", mac, "layer", info.Layer.String())
	case res.Reconnected:
		s.log.Info("receiver reconnected", "mac", mac, "layer", info.Layer.String())
	case res.LayerChange:
		s.log.Info("receiver changed layer", "mac", mac, "layer", info.Layer.String())
	}
	return res
}

// ExpireTimeouts marks silent receivers disconnected after ReceiverTimeout
// (retaining the row so stopped packets still fan out) and frees rows
// silent for ExtendedSilence, removing them from the driver's peer list.
func (s *SenderSide) ExpireTimeouts(now time.Time) {
	s.receivers.MarkTimedOut(now, protocol.ReceiverTimeout)
	for _, mac := range s.receivers.FreeStale(now, protocol.ExtendedSilence) {
		if err := s.radio.RemovePeer(mac); err != nil {
			s.log.Warn("remove peer failed", "mac", mac, "err", err)
		}
	}
}
