//go:build tinygo || baremetal

// Package espnow backs wireless.RadioDriver on the embedded target. The
// original firmware this spec distills used ESP-NOW, a connectionless
// peer-addressed layer over WiFi; the register-level radio bring-up here
// is carried over from _examples/ystepanoff-nrfcomm's nRF driver
// (driver/nrf/radio.go), retargeted from a single fixed-address link to a
// peer table addressed per send, which is the shape ESP-NOW's
// esp_now_send(mac, ...) exposes. Actual WiFi/radio driver initialization
// is out of scope (spec §1); this file only shows the register sequencing
// the teacher already established for starting the clock and configuring
// one address.
package espnow

import (
	"device/nrf"
)

const (
	maxFrameSize = 250 // ESP-NOW's payload ceiling

	defaultChannel = 1
	defaultTxPower = nrf.RADIO_TXPOWER_TXPOWER_0dBm
	defaultMode    = nrf.RADIO_MODE_MODE_Nrf_1Mbit
)

// startHFCLK starts the high-frequency clock, exactly as
// driver/nrf/radio.go's StartHFCLK.
func startHFCLK() {
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
	for nrf.CLOCK.EVENTS_HFCLKSTARTED.Get() == 0 {
	}
}

// configureAddress points the radio's base+prefix registers at mac's
// low 4+1 bytes. ESP-NOW multiplexes many peers over one physical
// channel by address matching in the driver; on this register-level
// stand-in we approximate that by reprogramming BASE0/PREFIX0 before each
// send/receive, which is the same sequence driver/nrf/radio.go used for
// its one fixed peer.
func configureAddress(mac [6]byte, channel uint8) {
	nrf.RADIO.BASE0.Set(uint32(mac[1])<<24 | uint32(mac[2])<<16 | uint32(mac[3])<<8 | uint32(mac[4]))
	nrf.RADIO.PREFIX0.Set(uint32(mac[0]))
	nrf.RADIO.FREQUENCY.Set(uint32(channel))
}

func configureRadio() {
	nrf.RADIO.POWER.Set(1)
	nrf.RADIO.MODE.Set(defaultMode)
	nrf.RADIO.TXPOWER.Set(defaultTxPower)
	nrf.RADIO.FREQUENCY.Set(defaultChannel)
	nrf.RADIO.TXADDRESS.Set(0)
	nrf.RADIO.RXADDRESSES.Set(1)

	nrf.RADIO.PCNF0.Set(
		(8 << nrf.RADIO_PCNF0_LFLEN_Pos) |
			(0 << nrf.RADIO_PCNF0_S0LEN_Pos) |
			(0 << nrf.RADIO_PCNF0_S1LEN_Pos))

	nrf.RADIO.PCNF1.Set(
		(maxFrameSize << nrf.RADIO_PCNF1_MAXLEN_Pos) |
			(0 << nrf.RADIO_PCNF1_STATLEN_Pos) |
			(3 << nrf.RADIO_PCNF1_BALEN_Pos) |
			(nrf.RADIO_PCNF1_ENDIAN_Little << nrf.RADIO_PCNF1_ENDIAN_Pos))

	nrf.RADIO.CRCCNF.Set(1)
	nrf.RADIO.CRCINIT.Set(0xFF)
	nrf.RADIO.CRCPOLY.Set(0x107)
}
