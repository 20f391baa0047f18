//go:build tinygo || baremetal

package report

import "device/nrf"

// nrfBootReason reads the POWER peripheral's RESETREAS register, the
// platform's reset-cause source on the nRF52 targets this firmware runs
// on, mirroring how ystepanoff-nrfcomm/driver/nrf/radio.go accesses RADIO
// registers directly rather than through an abstraction layer.
type nrfBootReason struct{}

// NewPlatformBootReason returns the embedded-build BootReasonProvider.
func NewPlatformBootReason() BootReasonProvider { return nrfBootReason{} }

func (nrfBootReason) BootReason() byte {
	reason := nrf.POWER.RESETREAS.Get()
	nrf.POWER.RESETREAS.Set(reason) // clear by writing back, per datasheet
	return byte(reason) & 0x7F
}
