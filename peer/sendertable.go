// Package peer implements the bounded sender/receiver tables (C3). Tables
// are plain value types owned by the wireless task; the single-writer
// discipline from spec §4.3/§9 means readers on other goroutines must copy
// a row out before using it rather than holding a reference into the
// table.
package peer

import (
	"time"

	"github.com/nowde-project/nowde/protocol"
)

// SenderEntry is one row of the sender table (spec §3).
type SenderEntry struct {
	MAC      protocol.MAC
	LastSeen time.Time
	Active   bool
}

// SenderTable is the bounded (capacity MaxSenders) table a receiver keeps
// of the senders it has heard from. Lookup is linear; insert uses the
// first inactive slot; overflow is dropped silently (spec §4.3).
type SenderTable struct {
	rows [protocol.MaxSenders]SenderEntry
}

// Upsert records a beacon from mac at now. It returns true if this created
// a new row (the caller should then add the peer to the driver's peer
// list), false if it refreshed an existing one.
func (t *SenderTable) Upsert(mac protocol.MAC, now time.Time) bool {
	freeSlot := -1
	for i := range t.rows {
		if t.rows[i].Active && t.rows[i].MAC == mac {
			t.rows[i].LastSeen = now
			return false
		}
		if !t.rows[i].Active && freeSlot == -1 {
			freeSlot = i
		}
	}
	if freeSlot == -1 {
		return false // table full, overflow dropped
	}
	t.rows[freeSlot] = SenderEntry{MAC: mac, LastSeen: now, Active: true}
	return true
}

// RemoveTimedOut clears every row whose LastSeen is older than timeout and
// returns the MACs removed, so the caller can also remove the driver peer.
func (t *SenderTable) RemoveTimedOut(now time.Time, timeout time.Duration) []protocol.MAC {
	var removed []protocol.MAC
	for i := range t.rows {
		if t.rows[i].Active && now.Sub(t.rows[i].LastSeen) > timeout {
			removed = append(removed, t.rows[i].MAC)
			t.rows[i] = SenderEntry{}
		}
	}
	return removed
}

// Active returns a copy of every active row, safe for a reader on another
// goroutine to retain.
func (t *SenderTable) Active() []SenderEntry {
	out := make([]SenderEntry, 0, protocol.MaxSenders)
	for _, r := range t.rows {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of active rows.
func (t *SenderTable) Count() int {
	n := 0
	for _, r := range t.rows {
		if r.Active {
			n++
		}
	}
	return n
}
