//go:build windows

package spooler

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	printerEnumLocal       = 0x00000002
	printerEnumConnections = 0x00000004
)

var (
	modWinspool       = windows.NewLazySystemDLL("winspool.drv")
	procEnumPrintersW = modWinspool.NewProc("EnumPrintersW")
)

// printerInfo4 mirrors PRINTER_INFO_4W.
type printerInfo4 struct {
	PrinterName *uint16
	ServerName  *uint16
	Attributes  uint32
}

// enumPrinters lists local printers and printer connections.
func enumPrinters(_ context.Context) ([]string, error) {
	if err := procEnumPrintersW.Find(); err != nil {
		return nil, fmt.Errorf("winspool unavailable: %w", err)
	}

	const flags = printerEnumLocal | printerEnumConnections
	var needed, returned uint32

	// First call sizes the buffer.
	r1, _, callErr := procEnumPrintersW.Call(flags, 0, 4, 0, 0,
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r1 == 0 && !errors.Is(callErr, windows.ERROR_INSUFFICIENT_BUFFER) {
		return nil, fmt.Errorf("EnumPrintersW: %w", callErr)
	}
	if needed == 0 {
		return []string{}, nil
	}

	buf := make([]byte, needed)
	r1, _, callErr = procEnumPrintersW.Call(flags, 0, 4,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed),
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r1 == 0 {
		return nil, fmt.Errorf("EnumPrintersW: %w", callErr)
	}

	infos := unsafe.Slice((*printerInfo4)(unsafe.Pointer(&buf[0])), returned)
	names := make([]string, 0, returned)
	for _, info := range infos {
		if info.PrinterName != nil {
			names = append(names, windows.UTF16PtrToString(info.PrinterName))
		}
	}
	return names, nil
}
