//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based
// development and testing), mirroring
// _examples/ystepanoff-nrfcomm/constructors_host.go: every collaborator
// is a stub/in-memory implementation rather than real hardware.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nowde-project/nowde/clock"
	usbmidistub "github.com/nowde-project/nowde/driver/usbmidi/stub"
	wirelessstub "github.com/nowde-project/nowde/driver/wireless/stub"
	"github.com/nowde-project/nowde/node"
	"github.com/nowde-project/nowde/protocol"
	"github.com/nowde-project/nowde/report"
	"github.com/nowde-project/nowde/store"
)

// hostLocalMAC is a placeholder address for the host build, standing in
// for whatever address a real radio's factory-programmed identity would
// supply on the embedded target.
var hostLocalMAC = protocol.MAC{0xE7, 0xE7, 0xE7, 0xE7, 0xE7, 0x01}

func newNode(log *slog.Logger) *node.Node {
	return node.New(
		usbmidistub.New(),
		wirelessstub.New(),
		clock.NewStubClock(),
		store.NewMemStore(),
		report.NewHostBootReason(),
		hostLocalMAC,
		log,
	)
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	n := newNode(log)

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	runTasks(n, stop, log)
}
