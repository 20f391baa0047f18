//go:build !tinygo && !baremetal

package report

// hostBootReason is the BootReasonProvider used on host builds (C10,
// SPEC_FULL §7 item 2): there is nothing to read, so it always reports
// UnknownBootReason.
type hostBootReason struct{}

// NewHostBootReason returns the host-build BootReasonProvider stub.
func NewHostBootReason() BootReasonProvider { return hostBootReason{} }

func (hostBootReason) BootReason() byte { return UnknownBootReason }
