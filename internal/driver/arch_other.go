//go:build !windows

package driver

import "runtime"

// DefaultRoot is the driver repository used when none is configured.
const DefaultRoot = "/var/lib/printsync/drivers"

// DetectArchitecture reports the architecture of the running binary.
func DetectArchitecture() Architecture {
	return fromGOARCH(runtime.GOARCH)
}
