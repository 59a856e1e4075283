//go:build windows

package driver

import (
	"runtime"

	"golang.org/x/sys/windows"
)

// DefaultRoot is the driver repository used when none is configured.
const DefaultRoot = `C:\temp\printers`

// IMAGE_FILE_MACHINE_* values reported by IsWow64Process2.
const (
	machineI386  = 0x014c
	machineAMD64 = 0x8664
	machineARM64 = 0xaa64
)

// DetectArchitecture reports the native machine type, so a 32-bit build
// running under WOW64 still picks 64-bit drivers.
func DetectArchitecture() Architecture {
	var processMachine, nativeMachine uint16
	if err := windows.IsWow64Process2(windows.CurrentProcess(), &processMachine, &nativeMachine); err != nil {
		return fromGOARCH(runtime.GOARCH)
	}
	switch nativeMachine {
	case machineAMD64:
		return ArchX64
	case machineI386:
		return ArchX86
	case machineARM64:
		return ArchARM64
	}
	return fromGOARCH(runtime.GOARCH)
}
