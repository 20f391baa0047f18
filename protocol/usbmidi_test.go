package protocol

import "testing"

func TestPackMessageControlChange(t *testing.T) {
	pkt := PackMessage([]byte{0xB0, 100, 42})
	if pkt.CIN() != cinControlChange {
		t.Fatalf("CIN = %#x, want %#x", pkt.CIN(), cinControlChange)
	}
	if pkt.B1 != 0xB0 || pkt.B2 != 100 || pkt.B3 != 42 {
		t.Errorf("pkt = %+v, want {B1:0xB0 B2:100 B3:42}", pkt)
	}
}

func TestPackMessageQuarterFrame(t *testing.T) {
	pkt := PackMessage([]byte{0xF1, 0x35})
	if pkt.CIN() != cinTwoByteSystemCommon {
		t.Fatalf("CIN = %#x, want %#x", pkt.CIN(), cinTwoByteSystemCommon)
	}
	if pkt.B1 != 0xF1 || pkt.B2 != 0x35 {
		t.Errorf("pkt = %+v, want {B1:0xF1 B2:0x35}", pkt)
	}
}

func TestDataByteCountMatchesCINTable(t *testing.T) {
	cases := map[byte]int{
		cinSysExStartOrContinue: 3,
		cinSysExEnd1:            1,
		cinSysExEnd2:            2,
		cinSysExEnd3:            3,
		cinTwoByteSystemCommon:  2,
		cinControlChange:        3,
	}
	for cin, want := range cases {
		if got := dataByteCount(cin); got != want {
			t.Errorf("dataByteCount(%#x) = %d, want %d", cin, got, want)
		}
	}
}
