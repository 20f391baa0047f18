//go:build tinygo || baremetal

// This file is built only for the embedded target, mirroring
// _examples/ystepanoff-nrfcomm/constructors_nrf.go: real drivers instead
// of stubs. usbEndpoint and flashBackend are left as nil package
// variables for a board-specific file to set before main runs, the same
// boundary driver/usbmidi/usb.Endpoint's doc comment already draws: USB
// and flash peripheral bring-up are board support package concerns
// outside this module's scope (spec §1).
package main

import (
	"log/slog"
	"os"

	"github.com/nowde-project/nowde/clock"
	"github.com/nowde-project/nowde/driver/usbmidi/usb"
	"github.com/nowde-project/nowde/driver/wireless/espnow"
	"github.com/nowde-project/nowde/node"
	"github.com/nowde-project/nowde/protocol"
	"github.com/nowde-project/nowde/report"
	"github.com/nowde-project/nowde/store"
)

// nrfLocalMAC is a fixed placeholder address, the same constant-address
// approach _examples/ystepanoff-nrfcomm/device.go's newDevice takes
// (Address: 0xE7E7E7E7, Prefix: 0xE7) rather than reading a real
// hardware-provisioned identity.
var nrfLocalMAC = protocol.MAC{0xE7, 0xE7, 0xE7, 0xE7, 0xE7, 0x01}

// usbEndpoint, flashBackend, and meshClock must be assigned by
// board-specific bring-up code before main runs: USB peripheral bring-up,
// flash storage, and the mesh-clock consensus algorithm are all external
// collaborators nowde has no board support package for (spec §1
// Non-goals).
var (
	usbEndpoint  usb.Endpoint
	flashBackend store.KVBackend
	meshClock    clock.MeshClock
)

func newNode(log *slog.Logger) *node.Node {
	return node.New(
		usb.New(usbEndpoint),
		espnow.New(),
		meshClock,
		store.NewFlashStore(flashBackend),
		report.NewPlatformBootReason(),
		nrfLocalMAC,
		log,
	)
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if usbEndpoint == nil || flashBackend == nil || meshClock == nil {
		panic("nowde: usbEndpoint/flashBackend/meshClock not wired by board-specific init")
	}

	n := newNode(log)
	stop := make(chan struct{})
	runTasks(n, stop, log)
}
