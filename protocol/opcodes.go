package protocol

// SysEx opcodes, all under ManufacturerID. Opcodes above 0x7F are illegal
// by construction (they cannot be represented as a single SysEx data byte).
const (
	// Host -> node, direct.
	OpQueryConfig       byte = 0x01
	OpPushFullConfig    byte = 0x02
	OpQueryRunningState byte = 0x03

	// Host -> sender, forwarded to receivers.
	OpMediaSync           byte = 0x10
	OpChangeReceiverLayer byte = 0x11

	// Node -> host.
	OpHello         byte = 0x20
	OpConfigState   byte = 0x21
	OpRunningState  byte = 0x22
	OpReceiverTable byte = 0x23
	OpErrorReport   byte = 0x30
)

// Wireless datagram type bytes (§4.2). A SysEx envelope may also appear on
// the wireless link; it is distinguished by its first byte being SysExStart
// rather than one of these.
const (
	DatagramSenderBeacon byte = 0x01
	DatagramReceiverInfo byte = 0x02
	DatagramMediaSync    byte = 0x03
)

// Error codes reported in ERROR_REPORT envelopes (§7).
const (
	ErrCodeConfigInvalid     byte = 0x01
	ErrCodeSysExParseError   byte = 0x02
	ErrCodeEspNowSendFailed  byte = 0x03
	ErrCodeMeshClockLostSync byte = 0x04
	ErrCodeReceiverTimeout   byte = 0x05
	ErrCodeUnknown           byte = 0xFF
)
