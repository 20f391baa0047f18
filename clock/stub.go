//go:build !tinygo && !baremetal

package clock

import (
	"sync"
	"time"
)

// StubClock is a host-side MeshClock backed by a local monotonic clock. It
// lets tests drive mesh time directly instead of depending on wall-clock
// timing, following the injectable-driver pattern used throughout this
// module for every external collaborator.
type StubClock struct {
	mu     sync.Mutex
	start  time.Time
	offset uint32
	synced bool
	manual bool
}

// NewStubClock returns a StubClock whose Now() tracks wall-clock elapsed
// time from construction, already marked synced.
func NewStubClock() *StubClock {
	return &StubClock{start: time.Now(), synced: true}
}

func (c *StubClock) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.manual {
		return c.offset
	}
	return uint32(time.Since(c.start).Milliseconds()) + c.offset
}

func (c *StubClock) Tick() {}

func (c *StubClock) Synced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced
}

// SetSynced lets tests simulate the mesh layer losing/regaining consensus.
func (c *StubClock) SetSynced(synced bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.synced = synced
}

// Set freezes Now() at ms, useful for deterministic clock-desync tests.
func (c *StubClock) Set(ms uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manual = true
	c.offset = ms
}

// Advance moves a frozen clock forward by delta milliseconds.
func (c *StubClock) Advance(delta uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += delta
}
