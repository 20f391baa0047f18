package protocol

import "errors"

// Sentinel errors returned by the codecs in this package. Callers compare
// with errors.Is; none of these carry dynamic context, matching
// ystepanoff-nrfcomm/protocol/errors.go's plain var-block style.
var (
	ErrShortEnvelope     = errors.New("sysex envelope too short")
	ErrNotAnEnvelope     = errors.New("not a sysex envelope")
	ErrWrongManufacturer = errors.New("sysex manufacturer byte mismatch")
	ErrShortDatagram     = errors.New("wireless datagram shorter than fixed struct size")
	ErrUnknownDatagram   = errors.New("unknown wireless datagram type")
)
