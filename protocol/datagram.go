package protocol

import "encoding/binary"

// Wireless datagram shapes (C2, spec §4.2). The on-air struct layouts are
// packed; this rewrite fixes big-endian for the 32-bit position/timestamp
// fields to keep cross-implementation interop, per spec §4.2.

const (
	senderBeaconSize = 1
	receiverInfoSize = 1 + MaxLayerLength + MaxVersionLength + 1
	mediaSyncSize    = 1 + MaxLayerLength + 1 + 4 + 1 + 4
)

// SenderBeacon is the empty announcement a sender broadcasts every
// SenderBeaconInterval.
type SenderBeacon struct{}

// EncodeSenderBeacon returns the one-byte wire form of a SenderBeacon.
func EncodeSenderBeacon() []byte {
	return []byte{DatagramSenderBeacon}
}

// ReceiverInfo is the unicast announcement a receiver sends to every known
// sender, carrying its subscribed layer, firmware version, and the media
// index it is currently playing (0 = stopped).
type ReceiverInfo struct {
	Layer      Layer
	Version    [MaxVersionLength]byte
	MediaIndex byte
}

// EncodeReceiverInfo serializes info to its wire form.
func EncodeReceiverInfo(info ReceiverInfo) []byte {
	buf := make([]byte, receiverInfoSize)
	buf[0] = DatagramReceiverInfo
	copy(buf[1:1+MaxLayerLength], info.Layer[:])
	copy(buf[1+MaxLayerLength:1+MaxLayerLength+MaxVersionLength], info.Version[:])
	buf[1+MaxLayerLength+MaxVersionLength] = info.MediaIndex
	return buf
}

// DecodeReceiverInfo parses a ReceiverInfo datagram. It returns
// ErrShortDatagram if data is shorter than the fixed struct size, per
// spec §4.2 ("A receiver MUST reject packets shorter than the fixed
// struct size").
func DecodeReceiverInfo(data []byte) (ReceiverInfo, error) {
	var info ReceiverInfo
	if len(data) < receiverInfoSize {
		return info, ErrShortDatagram
	}
	copy(info.Layer[:], data[1:1+MaxLayerLength])
	copy(info.Version[:], data[1+MaxLayerLength:1+MaxLayerLength+MaxVersionLength])
	info.MediaIndex = data[1+MaxLayerLength+MaxVersionLength]
	return info, nil
}

// MediaSync is the layer-targeted sync packet a sender fans out on every
// MEDIA_SYNC host command.
type MediaSync struct {
	Layer      Layer
	MediaIndex byte
	PositionMs uint32
	State      byte // 0 = stopped, 1 = playing
	MeshTS     uint32
}

// EncodeMediaSync serializes sync to its wire form.
func EncodeMediaSync(sync MediaSync) []byte {
	buf := make([]byte, mediaSyncSize)
	buf[0] = DatagramMediaSync
	pos := 1
	copy(buf[pos:pos+MaxLayerLength], sync.Layer[:])
	pos += MaxLayerLength
	buf[pos] = sync.MediaIndex
	pos++
	binary.BigEndian.PutUint32(buf[pos:pos+4], sync.PositionMs)
	pos += 4
	buf[pos] = sync.State
	pos++
	binary.BigEndian.PutUint32(buf[pos:pos+4], sync.MeshTS)
	return buf
}

// DecodeMediaSync parses a MediaSync datagram, rejecting anything shorter
// than the fixed struct size.
func DecodeMediaSync(data []byte) (MediaSync, error) {
	var sync MediaSync
	if len(data) < mediaSyncSize {
		return sync, ErrShortDatagram
	}
	pos := 1
	copy(sync.Layer[:], data[pos:pos+MaxLayerLength])
	pos += MaxLayerLength
	sync.MediaIndex = data[pos]
	pos++
	sync.PositionMs = binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	sync.State = data[pos]
	pos++
	sync.MeshTS = binary.BigEndian.Uint32(data[pos : pos+4])
	return sync, nil
}

// DatagramType returns the first byte of a wireless payload, which
// distinguishes SenderBeacon/ReceiverInfo/MediaSync from a fourth shape: a
// routed SysEx envelope (first byte SysExStart) carrying
// CHANGE_RECEIVER_LAYER to a specific receiver (§4.2).
func DatagramType(data []byte) (byte, error) {
	if len(data) == 0 {
		return 0, ErrShortDatagram
	}
	return data[0], nil
}
