package protocol

// SysEx payloads must keep the high bit clear on every byte, so any
// multi-byte binary field (MAC, layer, version, 32-bit position/uptime) is
// packed with a classic 7-to-8 scheme: each group of up to 7 raw bytes is
// preceded by one MSB byte whose bit i carries the original MSB of raw
// byte i, followed by those raw bytes with their MSB cleared. The encoded
// length for a given raw length is fixed, so no length prefix travels on
// the wire; callers that know the raw length also know the encoded length
// via EncodedLen/DecodedLen.

// EncodedLen returns the number of encoded bytes produced by Encode7Bit
// for a raw payload of rawLen bytes.
func EncodedLen(rawLen int) int {
	if rawLen == 0 {
		return 0
	}
	groups := (rawLen + 6) / 7
	return rawLen + groups
}

// DecodedLen returns the number of raw bytes recovered by Decode7Bit from
// an encoded payload of encLen bytes.
func DecodedLen(encLen int) int {
	if encLen == 0 {
		return 0
	}
	groups := (encLen + 7) / 8
	return encLen - groups
}

// Encode7Bit packs raw into MIDI-safe 7-bit groups, appending to dst and
// returning the extended slice.
func Encode7Bit(dst []byte, raw []byte) []byte {
	for i := 0; i < len(raw); i += 7 {
		chunk := raw[i:min(i+7, len(raw))]
		var msb byte
		for j, b := range chunk {
			if b&0x80 != 0 {
				msb |= 1 << uint(j)
			}
		}
		dst = append(dst, msb)
		for _, b := range chunk {
			dst = append(dst, b&0x7F)
		}
	}
	return dst
}

// Decode7Bit is the inverse of Encode7Bit: it consumes groups of (1 MSB
// byte + up to 7 data bytes) from enc, appending the reconstructed raw
// bytes to dst.
func Decode7Bit(dst []byte, enc []byte) []byte {
	for i := 0; i < len(enc); {
		msb := enc[i]
		i++
		chunk := enc[i:min(i+7, len(enc))]
		for j, b := range chunk {
			if msb&(1<<uint(j)) != 0 {
				b |= 0x80
			}
			dst = append(dst, b)
		}
		i += len(chunk)
	}
	return dst
}
