// Package midiwire builds the two outbound USB-MIDI message families the
// receiver emits toward its locally attached device: the sync CC#100 and
// MIDI Time Code quarter-frames (spec §4.7). Message construction leans
// on gitlab.com/gomidi/midi/v2, the same library
// _examples/chase3718-lou-guitar and
// _examples/james-see-synthtribe2midi use for MIDI message handling,
// rather than hand-assembling status bytes.
package midiwire

import "gitlab.com/gomidi/midi/v2"

// SyncCC is the control-change number the receiver sync engine sends
// media-index changes on (spec §4.7: "send CC#100").
const SyncCC = 100

// SyncChannel is the MIDI channel spec §4.7 names ("channel 1"), which in
// midi/v2's 0-indexed channel parameter is channel 0.
const SyncChannel = 0

// SyncControlChange builds the CC#100 message carrying value (the media
// index, or 0 to signal stop) on SyncChannel.
func SyncControlChange(value byte) midi.Message {
	return midi.ControlChange(SyncChannel, SyncCC, value)
}

// Quarter-frame piece selectors, per the MTC quarter-frame spec (SMPTE
// association) and mirrored by the original firmware's generateMTC.
const (
	pieceFrameLow  = 0x00
	pieceFrameHigh = 0x01
	pieceSecLow    = 0x02
	pieceSecHigh   = 0x03
	pieceMinLow    = 0x04
	pieceMinHigh   = 0x05
	pieceHourLow   = 0x06
	pieceHourHigh  = 0x07
)

// mtcFrameRate30 encodes SMPTE 30fps non-drop (rate code 3) in bits 1-2 of
// the hour-high nibble, above the hour's bit 4 in bit 0; it is the only
// frame rate the bridge emits (spec §6).
const mtcFrameRate30 = 0x03 << 1

// QuarterFrame builds the single MTC quarter-frame message (0xF1 <data>)
// for piece index piece (0-7) of the given timecode, in milliseconds at
// 30fps. The eight pieces together encode one complete SMPTE timecode
// across eight consecutive quarter-frames, exactly as generateMTC in the
// original firmware walks piece 0..7 once per 10ms wireless tick.
func QuarterFrame(piece int, positionMs uint32) midi.Message {
	totalFrames := (positionMs * 30) / 1000
	frame := totalFrames % 30
	totalSeconds := totalFrames / 30
	sec := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	min := totalMinutes % 60
	hour := (totalMinutes / 60) % 24

	var data byte
	switch piece {
	case 0:
		data = byte(frame & 0x0F)
	case 1:
		data = byte((frame >> 4) & 0x01)
	case 2:
		data = byte(sec & 0x0F)
	case 3:
		data = byte((sec >> 4) & 0x03)
	case 4:
		data = byte(min & 0x0F)
	case 5:
		data = byte((min >> 4) & 0x03)
	case 6:
		data = byte(hour & 0x0F)
	case 7:
		data = byte((hour>>4)&0x01) | mtcFrameRate30
	}

	nibble := byte(piece&0x07) << 4
	return midi.Message{0xF1, nibble | data}
}
