package protocol

import (
	"bytes"
	"testing"
)

func feedAll(t *testing.T, p *Parser, packets []Packet) [][]byte {
	t.Helper()
	var got [][]byte
	for _, pkt := range packets {
		if env, ok := p.Feed(pkt); ok {
			got = append(got, env)
		}
	}
	return got
}

func TestEmitParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		env  []byte
	}{
		{name: "minimal hello query", env: []byte{SysExStart, ManufacturerID, OpQueryConfig, SysExEnd}},
		{name: "config state", env: []byte{SysExStart, ManufacturerID, OpConfigState, 0x01, 0x03, 0x14, SysExEnd}},
		{name: "exact multiple of three", env: []byte{SysExStart, ManufacturerID, OpHello, 0x01, 0x02, SysExEnd}},
		{name: "long layer change", env: append([]byte{SysExStart, ManufacturerID, OpChangeReceiverLayer}, append(bytes.Repeat([]byte{0x41}, 19), SysExEnd)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packets := EmitEnvelope(tt.env)
			for _, pkt := range packets {
				if pkt.CIN() < 0x4 || pkt.CIN() > 0x7 {
					t.Fatalf("packet has non-sysex CIN %#x", pkt.CIN())
				}
			}

			p := NewParser()
			got := feedAll(t, p, packets)
			if len(got) != 1 {
				t.Fatalf("got %d envelopes, want 1", len(got))
			}
			if !bytes.Equal(got[0], tt.env) {
				t.Errorf("round trip = %v, want %v", got[0], tt.env)
			}
		})
	}
}

func TestParserDiscardsOutsideEnvelope(t *testing.T) {
	p := NewParser()

	junk := Packet{Header: cinControlChange, B1: 0xB0, B2: 0x64, B3: 0x01}
	if env, ok := p.Feed(junk); ok {
		t.Fatalf("got envelope %v from non-sysex packet", env)
	}

	env := []byte{SysExStart, ManufacturerID, OpQueryConfig, SysExEnd}
	got := feedAll(t, p, EmitEnvelope(env))
	if len(got) != 1 || !bytes.Equal(got[0], env) {
		t.Fatalf("got %v, want single envelope %v", got, env)
	}
}

func TestParserResetsOnNewStart(t *testing.T) {
	p := NewParser()

	// A dangling F0 with no F7 should be discarded when a fresh F0 arrives.
	p.Feed(Packet{Header: cinSysExStartOrContinue, B1: SysExStart, B2: ManufacturerID, B3: OpHello})

	env := []byte{SysExStart, ManufacturerID, OpQueryConfig, SysExEnd}
	got := feedAll(t, p, EmitEnvelope(env))
	if len(got) != 1 || !bytes.Equal(got[0], env) {
		t.Fatalf("got %v, want single envelope %v", got, env)
	}
}

func TestValidateEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		env     []byte
		wantErr error
	}{
		{name: "valid", env: []byte{SysExStart, ManufacturerID, OpHello, SysExEnd}, wantErr: nil},
		{name: "too short", env: []byte{SysExStart, SysExEnd}, wantErr: ErrShortEnvelope},
		{name: "not an envelope", env: []byte{0x90, 0x40, 0x7F}, wantErr: ErrNotAnEnvelope},
		{name: "wrong manufacturer", env: []byte{SysExStart, 0x7E, 0x01, SysExEnd}, wantErr: ErrWrongManufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEnvelope(tt.env)
			if err != tt.wantErr {
				t.Errorf("ValidateEnvelope() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
