//go:build windows

package spooler

// DefaultDescriptor is the INF file printui installs from.
const DefaultDescriptor = "OEMSETUP.INF"

// New returns the Windows spooler client.
func New(runner Runner) Client {
	return NewPrintUI(runner, enumPrinters)
}
