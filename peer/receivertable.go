package peer

import (
	"time"

	"github.com/nowde-project/nowde/protocol"
)

// ReceiverEntry is one row of the receiver table (spec §3). Invariants:
// Connected implies Active; a row may be Active && !Connected ("known but
// silent") and remains a fan-out candidate until it is freed.
type ReceiverEntry struct {
	MAC        protocol.MAC
	Layer      protocol.Layer
	Version    [protocol.MaxVersionLength]byte
	LastSeen   time.Time
	Active     bool
	Connected  bool
	MediaIndex byte
}

// ReceiverTable is the bounded (capacity MaxReceivers) table a sender keeps
// of the receivers that have announced themselves.
type ReceiverTable struct {
	rows [protocol.MaxReceivers]ReceiverEntry
}

// UpsertResult reports what Upsert did, so callers can decide whether to
// log and/or touch the driver's peer list, following the original's
// log-on-reconnect-or-layer-change-only discipline (sender_mode.cpp
// handleReceiverInfo).
type UpsertResult struct {
	Created     bool
	Reconnected bool
	LayerChange bool
}

// Upsert applies one ReceiverInfo observation from mac at now.
func (t *ReceiverTable) Upsert(mac protocol.MAC, layer protocol.Layer, version [protocol.MaxVersionLength]byte, mediaIndex byte, now time.Time) UpsertResult {
	freeSlot := -1
	for i := range t.rows {
		r := &t.rows[i]
		if r.Active && r.MAC == mac {
			r.LastSeen = now
			r.MediaIndex = mediaIndex

			var res UpsertResult
			if !r.Connected {
				r.Connected = true
				res.Reconnected = true
			}
			if !r.Layer.Equal(layer) {
				r.Layer = layer
				res.LayerChange = true
			}
			r.Version = version
			return res
		}
		if !r.Active && freeSlot == -1 {
			freeSlot = i
		}
	}
	if freeSlot == -1 {
		return UpsertResult{} // table full, overflow dropped
	}
	t.rows[freeSlot] = ReceiverEntry{
		MAC:        mac,
		Layer:      layer,
		Version:    version,
		LastSeen:   now,
		Active:     true,
		Connected:  true,
		MediaIndex: mediaIndex,
	}
	return UpsertResult{Created: true}
}

// MarkTimedOut clears Connected on every active row silent for longer than
// timeout, without freeing the row: a "stopped" MediaSync must still reach
// it (spec §4.4, §8 scenario 6).
func (t *ReceiverTable) MarkTimedOut(now time.Time, timeout time.Duration) []protocol.MAC {
	var changed []protocol.MAC
	for i := range t.rows {
		r := &t.rows[i]
		if r.Active && r.Connected && now.Sub(r.LastSeen) > timeout {
			r.Connected = false
			changed = append(changed, r.MAC)
		}
	}
	return changed
}

// FreeStale frees every row silent for longer than silence (spec §3,
// "freed after an extended silence (>=10s)"), returning the freed MACs so
// the caller can also remove the driver peer.
func (t *ReceiverTable) FreeStale(now time.Time, silence time.Duration) []protocol.MAC {
	var freed []protocol.MAC
	for i := range t.rows {
		r := &t.rows[i]
		if r.Active && now.Sub(r.LastSeen) > silence {
			freed = append(freed, r.MAC)
			t.rows[i] = ReceiverEntry{}
		}
	}
	return freed
}

// FindActive returns a copy of the active row for mac, if any.
func (t *ReceiverTable) FindActive(mac protocol.MAC) (ReceiverEntry, bool) {
	for _, r := range t.rows {
		if r.Active && r.MAC == mac {
			return r, true
		}
	}
	return ReceiverEntry{}, false
}

// MatchingLayer returns a copy of every active row (regardless of
// Connected) whose Layer equals layer — the fan-out candidate set for C6
// (spec §4.6: "connected is not required").
func (t *ReceiverTable) MatchingLayer(layer protocol.Layer) []ReceiverEntry {
	var out []ReceiverEntry
	for _, r := range t.rows {
		if r.Active && r.Layer.Equal(layer) {
			out = append(out, r)
		}
	}
	return out
}

// Active returns a copy of every active row.
func (t *ReceiverTable) Active() []ReceiverEntry {
	out := make([]ReceiverEntry, 0, protocol.MaxReceivers)
	for _, r := range t.rows {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of active rows.
func (t *ReceiverTable) Count() int {
	n := 0
	for _, r := range t.rows {
		if r.Active {
			n++
		}
	}
	return n
}
