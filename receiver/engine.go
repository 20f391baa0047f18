// Package receiver implements the receiver sync engine (C7, spec §4.7):
// clock-compensated acceptance of inbound MediaSync packets, freewheel
// position tracking, and MTC quarter-frame emission toward the locally
// attached MIDI device.
package receiver

import (
	"log/slog"
	"time"

	"github.com/nowde-project/nowde/driver/usbmidi"
	"github.com/nowde-project/nowde/midiwire"
	"github.com/nowde-project/nowde/protocol"
)

// sentinelLastSentIndex marks "nothing sent yet" (spec §3: "sentinel 255").
const sentinelLastSentIndex = 255

// mtcQuarterFrameInterval is how often Tick advances to the next of the
// eight quarter-frame pieces so that a full timecode is covered once per
// MTC frame period (spec §4.7: "Eight quarter-frames cover a full
// timecode").
const mtcQuarterFrameInterval = time.Second / (protocol.MTCFrameRate * 8)

// State is the receiver-local sync state (spec §3 MediaSyncState). It is
// owned exclusively by the wireless task, per the single-writer
// discipline in spec §9 ("MediaSyncState is strictly wireless-task-owned").
type State struct {
	CurrentIndex      byte
	CurrentPositionMs uint32
	CurrentState      byte // 0 stopped, 1 playing
	LastSyncTime      time.Time
	LocalClockStart   time.Time
	LastMTCUpdate     time.Time
	LinkLost          bool
	StopOnLinkLost    bool
	LastSentIndex     byte
	LastCCSend        time.Time
}

// Engine drives the receiver sync state machine and MIDI output.
type Engine struct {
	midi  usbmidi.MIDIDriver
	log   *slog.Logger
	state State
	piece int

	lastDesyncLog time.Time
}

// NewEngine returns an Engine with StopOnLinkLost defaulted true and
// LastSentIndex at its sentinel (spec §3).
func NewEngine(midi usbmidi.MIDIDriver, log *slog.Logger) *Engine {
	return &Engine{
		midi: midi,
		log:  log,
		state: State{
			StopOnLinkLost: true,
			LastSentIndex:  sentinelLastSentIndex,
		},
	}
}

// State returns a copy of the current sync state.
func (e *Engine) State() State { return e.state }

// HandleMediaSync applies one inbound MediaSync addressed to this
// receiver's subscribed layer (the caller has already filtered on layer),
// given the local mesh clock reading meshNow and the local wall-clock
// instant localNow. It returns false if the packet was rejected for
// clock desync.
func (e *Engine) HandleMediaSync(sync protocol.MediaSync, meshNow uint32, localNow time.Time) bool {
	delta := int32(meshNow) - int32(sync.MeshTS)
	if abs32(delta) > int32(protocol.ClockDesyncThreshold/time.Millisecond) {
		e.logDesyncRateLimited(delta, localNow)
		return false
	}

	var compensated uint32
	if sync.State == 1 {
		comp := delta
		if comp < 0 {
			comp = 0
		}
		compensated = sync.PositionMs + uint32(comp)
	} else {
		compensated = sync.PositionMs
	}

	wasPlaying := e.state.CurrentState == 1
	nowPlaying := sync.State == 1

	if !wasPlaying && nowPlaying {
		e.log.Info("media sync: stopped -> playing", "index", sync.MediaIndex)
	}
	if wasPlaying && !nowPlaying {
		e.sendCC(0, localNow)
		e.state.LastSentIndex = 0
	} else if sync.MediaIndex != e.state.LastSentIndex && sync.MediaIndex != 0 {
		e.sendCC(sync.MediaIndex, localNow)
		e.state.LastSentIndex = sync.MediaIndex
	}

	e.state.CurrentState = sync.State
	e.state.CurrentIndex = sync.MediaIndex
	e.state.CurrentPositionMs = compensated
	e.state.LastSyncTime = localNow
	e.state.LinkLost = false
	if nowPlaying {
		e.state.LocalClockStart = localNow
	}
	return true
}

func (e *Engine) logDesyncRateLimited(delta int32, now time.Time) {
	if !e.lastDesyncLog.IsZero() && now.Sub(e.lastDesyncLog) < time.Second {
		return
	}
	e.lastDesyncLog = now
	e.log.Warn("media sync rejected: clock desync", "delta_ms", delta)
}

// Tick runs the freewheel position update, MTC quarter-frame emission,
// the CC#100 repeat, and the link-lost timeout, once per wireless-task
// cycle. now is the local wall-clock instant.
func (e *Engine) Tick(now time.Time) {
	if e.state.CurrentState != 1 {
		return
	}

	if now.Sub(e.state.LastSyncTime) > protocol.LinkLostTimeout {
		e.state.LinkLost = true
		if e.state.StopOnLinkLost {
			e.state.CurrentState = 0
			e.sendCC(0, now)
			e.state.LastSentIndex = 0
			return
		}
	}

	if protocol.CC100RepeatInterval > 0 && now.Sub(e.state.LastCCSend) >= protocol.CC100RepeatInterval {
		e.sendCC(e.state.CurrentIndex, now)
	}

	if e.state.LastMTCUpdate.IsZero() || now.Sub(e.state.LastMTCUpdate) >= mtcQuarterFrameInterval {
		e.emitQuarterFrame(now)
		e.state.LastMTCUpdate = now
	}
}

// CurrentPosition returns the freewheel position: the last accepted
// position plus local elapsed time since LocalClockStart, per spec §4.7
// ("now_position := current_position_ms + (local_now - local_clock_start)").
func (e *Engine) CurrentPosition(now time.Time) uint32 {
	elapsed := now.Sub(e.state.LocalClockStart)
	if elapsed < 0 {
		elapsed = 0
	}
	return e.state.CurrentPositionMs + uint32(elapsed/time.Millisecond)
}

func (e *Engine) emitQuarterFrame(now time.Time) {
	msg := midiwire.QuarterFrame(e.piece, e.CurrentPosition(now))
	if err := e.midi.WritePacket(protocol.PackMessage(msg)); err != nil {
		e.log.Warn("mtc quarter-frame write failed", "err", err)
	}
	e.piece = (e.piece + 1) % 8
}

func (e *Engine) sendCC(index byte, now time.Time) {
	msg := midiwire.SyncControlChange(index)
	if err := e.midi.WritePacket(protocol.PackMessage(msg)); err != nil {
		e.log.Warn("cc100 write failed", "err", err)
	}
	e.state.LastCCSend = now
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
