// Command nowde is the firmware entrypoint: it wires a node.Node from
// whichever drivers the build target supplies and runs its two
// cooperative tasks (spec §4.8).
//
// The actual driver wiring is split into build-tag specific files,
// mirroring _examples/ystepanoff-nrfcomm's facade.go:
//   - constructors_host.go - stub drivers, for development/testing
//   - constructors_nrf.go  - real nRF52 drivers, for the embedded target
package main

import (
	"log/slog"
	"time"

	"github.com/nowde-project/nowde/node"
)

// pollInterval and tickInterval match spec §4.8's stated cadences: the
// MIDI task polls tightly since it must not miss USB frames, the
// wireless task runs on a coarser 10ms cadence.
const (
	pollInterval = time.Millisecond
	tickInterval = 10 * time.Millisecond
)

// runTasks starts n's two task loops as goroutines and blocks until stop
// is closed.
func runTasks(n *node.Node, stop <-chan struct{}, log *slog.Logger) {
	log.Info("nowde running", "layer", n.SubscribedLayer().String())
	go n.MIDITask(pollInterval, stop)
	go n.WirelessTask(tickInterval, stop)
	<-stop
}
