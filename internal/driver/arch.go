package driver

import (
	"fmt"
	"strconv"
	"strings"
)

// Architecture selects which driver subfolder matches the host.
type Architecture int

const (
	ArchX64 Architecture = iota
	ArchX86
	ArchARM64
)

func (a Architecture) String() string {
	switch a {
	case ArchX86:
		return "x86"
	case ArchARM64:
		return "arm64"
	default:
		return "x64"
	}
}

// Folder returns the repository subfolder name for the architecture.
func (a Architecture) Folder() string {
	switch a {
	case ArchX86:
		return "32bit"
	case ArchARM64:
		return "arm64"
	default:
		return "64bit"
	}
}

// ParseArchitecture accepts the enum names, Go arch names and folder names.
func ParseArchitecture(s string) (Architecture, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x64", "amd64", "64bit":
		return ArchX64, nil
	case "x86", "386", "32bit":
		return ArchX86, nil
	case "arm64", "aarch64":
		return ArchARM64, nil
	}
	return ArchX64, fmt.Errorf("unknown architecture %q", s)
}

func fromGOARCH(goarch string) Architecture {
	if a, err := ParseArchitecture(goarch); err == nil {
		return a
	}
	if strconv.IntSize == 32 {
		return ArchX86
	}
	return ArchX64
}
