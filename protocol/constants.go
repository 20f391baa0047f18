// Package protocol implements the wire formats shared by every Nowde node:
// the SysEx envelope codec used on the USB-MIDI link, the 7-bit packing
// scheme SysEx payloads require, and the fixed-layout datagrams exchanged
// over the wireless mesh. All higher layers depend on this package and
// nothing in this package depends on them.
package protocol

import "time"

// Build-time configuration, fixed per §6 of the specification. There is no
// command-line surface; every tunable here is a compile-time constant.
const (
	MaxSenders   = 10
	MaxReceivers = 10

	MaxLayerLength   = 16
	MaxVersionLength = 8

	MaxDelayedPackets = 20

	ReceiverTimeout        = 5000 * time.Millisecond
	SenderTimeout          = 5000 * time.Millisecond
	ReceiverBeaconInterval = 1000 * time.Millisecond
	SenderBeaconInterval   = 1000 * time.Millisecond
	BridgeReportInterval   = 500 * time.Millisecond
	LinkLostTimeout        = 3000 * time.Millisecond
	ClockDesyncThreshold   = 200 * time.Millisecond

	// ReceiverBeaconJitter is the upper bound (exclusive) of the uniform
	// jitter added to every receiver beacon, to de-correlate collisions
	// when many receivers answer the same sender beacon.
	ReceiverBeaconJitter = 200 * time.Millisecond

	// ExtendedSilence is how long a receiver row may go without traffic
	// (measured from its last sighting, not from being marked
	// disconnected) before it is freed and the driver peer removed.
	ExtendedSilence = 10 * time.Second

	MTCFrameRate = 30

	// DefaultLayer is the layer every receiver subscribes to before its
	// persisted value (or any CHANGE_RECEIVER_LAYER command) overrides it.
	DefaultLayer = "-"

	// CC100RepeatInterval re-sends CC#100 while playing so late-joining
	// downstream devices catch up. Zero disables the repeat.
	CC100RepeatInterval = 2000 * time.Millisecond

	// SysExStart, SysExEnd, and ManufacturerID frame every SysEx message:
	// F0 7D <cmd> ... F7.
	SysExStart     byte = 0xF0
	SysExEnd       byte = 0xF7
	ManufacturerID byte = 0x7D

	// MaxSysExBuffer bounds the parser's per-stream accumulation buffer.
	MaxSysExBuffer = 128
)

// NodeVersion is the firmware version string reported in HELLO, padded to
// MaxVersionLength with trailing nulls on the wire.
const NodeVersion = "1.0"
