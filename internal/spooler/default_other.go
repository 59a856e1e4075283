//go:build !windows

package spooler

// DefaultDescriptor is the PPD file lpadmin installs from.
const DefaultDescriptor = "driver.ppd"

// New returns the CUPS spooler client.
func New(runner Runner) Client {
	return NewCUPS(runner)
}
