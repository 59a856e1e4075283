// Package workererrors turns reconciliation errors into the short messages
// shown on the presence feed.
package workererrors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adcondev/print-sync/internal/driver"
	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/spooler"
)

// Kind is a coarse error category.
type Kind string

const (
	KindNetwork    Kind = "NETWORK"
	KindDriver     Kind = "DRIVER"
	KindInstall    Kind = "INSTALL"
	KindRemove     Kind = "REMOVE"
	KindSpooler    Kind = "SPOOLER"
	KindFilesystem Kind = "FILESYSTEM"
	KindCancelled  Kind = "CANCELLED"
	KindUnknown    Kind = "ERROR"
)

// Classify maps err onto the error taxonomy.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, network.ErrNetworkUnavailable):
		return KindNetwork
	case errors.Is(err, driver.ErrDriverMissing):
		return KindDriver
	case errors.Is(err, spooler.ErrInstallFailed):
		return KindInstall
	case errors.Is(err, spooler.ErrRemoveFailed):
		return KindRemove
	case errors.Is(err, spooler.ErrListFailed):
		return KindSpooler
	case errors.Is(err, driver.ErrFilesystem):
		return KindFilesystem
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	}
	return KindUnknown
}

// Describe creates a clean error message for the UI
func Describe(err error) string {
	if err == nil {
		return ""
	}

	kind := Classify(err)
	var (
		missing *driver.MissingError
		op      *spooler.OpError
	)
	switch {
	case kind == KindNetwork:
		return fmt.Sprintf("%s: No IPv4 network detected", kind)
	case errors.As(err, &missing):
		return fmt.Sprintf("%s: No driver for %s in %s", kind, missing.Printer, missing.Dir)
	case errors.As(err, &op) && op.Printer != "":
		return fmt.Sprintf("%s: %s - %s", kind, op.Printer, extractInnerError(op.Err))
	case kind == KindCancelled:
		return fmt.Sprintf("%s: Operation interrupted", kind)
	}
	return fmt.Sprintf("%s: %s", kind, cleanErrorMessage(err.Error()))
}

// extractInnerError gets the innermost error message
func extractInnerError(err error) string {
	if err == nil {
		return "failed"
	}
	parts := strings.Split(err.Error(), ": ")
	return parts[len(parts)-1]
}

// cleanErrorMessage removes verbose prefixes
func cleanErrorMessage(errStr string) string {
	prefixes := []string{
		"listing installed printers: ",
		"network unavailable: ",
	}
	result := errStr
	for _, prefix := range prefixes {
		result = strings.TrimPrefix(result, prefix)
	}
	return result
}
