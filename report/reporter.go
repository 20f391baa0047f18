package report

import (
	"log/slog"

	"github.com/nowde-project/nowde/peer"
	"github.com/nowde-project/nowde/protocol"
)

// Reporter holds the change-gating state for the bridge receiver-table
// report (supplemented feature 1, SPEC_FULL §7): the count of active
// receivers and each one's connected flag, as last reported, so that
// ReceiverTableReport is only rebuilt and handed to the caller when the
// roster has actually moved — grounded on
// original_source/Nowde/src/sender_mode.cpp's reportReceiversToBridge
// static lastCount/lastConnectedStates guard, but applied to the
// transmission itself rather than only to a debug print, per SPEC_FULL's
// stated intent to avoid spamming the host link.
type Reporter struct {
	log *slog.Logger

	lastCount     int
	lastConnected map[protocol.MAC]bool
}

// NewReporter returns a Reporter with no prior report state, so the first
// call to MaybeReceiverTableReport always reports (count 0 -> len(receivers)
// is a change unless the roster is empty both times).
func NewReporter(log *slog.Logger) *Reporter {
	return &Reporter{
		log:           log,
		lastConnected: make(map[protocol.MAC]bool),
	}
}

// MaybeReceiverTableReport returns a freshly built ReceiverTableReport
// envelope and true if the active receiver count or any receiver's
// connected flag has changed since the last call that returned true;
// otherwise it returns (nil, false) without allocating an envelope.
func (r *Reporter) MaybeReceiverTableReport(receivers []peer.ReceiverEntry) ([]byte, bool) {
	changed := len(receivers) != r.lastCount
	for _, rec := range receivers {
		if r.lastConnected[rec.MAC] != rec.Connected {
			changed = true
			break
		}
	}
	if !changed {
		return nil, false
	}

	r.lastCount = len(receivers)
	r.lastConnected = make(map[protocol.MAC]bool, len(receivers))
	for _, rec := range receivers {
		r.lastConnected[rec.MAC] = rec.Connected
	}

	r.log.Debug("receiver table changed", "count", len(receivers))
	return ReceiverTableReport(receivers), true
}
