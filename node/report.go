package node

import (
	"time"

	"github.com/nowde-project/nowde/report"
	"github.com/nowde-project/nowde/router"
)

// These four thin adapters exist only because report's builders are pure
// functions of explicit arguments (so they can be unit-tested without a
// Node), while WirelessTask holds the live state those arguments come
// from. Keeping them here rather than inlined in apply keeps
// wireless_task.go's dispatch table readable.

func helloEnvelope(n *Node) []byte {
	return report.Hello(time.Since(n.startedAt), n.bootReason.BootReason())
}

func configStateEnvelope(n *Node) []byte {
	return report.ConfigState(n.rfSimEnabled, n.rfSimMaxDelayMs)
}

func runningStateEnvelope(n *Node) []byte {
	return report.RunningState(time.Since(n.startedAt), n.meshClock.Synced(), n.receivers.Active(), time.Now())
}

func errorReportEnvelope(r router.EmitError) []byte {
	return report.ErrorReport(r.Code, r.Context)
}
