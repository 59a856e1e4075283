// Package spooler wraps the OS print subsystem behind a narrow interface so
// the reconciler never shells out directly and tests can simulate the OS.
package spooler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Operation names carried by OpError.
const (
	OpList    = "list"
	OpInstall = "install"
	OpRemove  = "remove"
)

// Sentinels matched by OpError according to its Op.
var (
	ErrListFailed    = errors.New("printer enumeration failed")
	ErrInstallFailed = errors.New("printer install failed")
	ErrRemoveFailed  = errors.New("printer remove failed")
)

// Client manages printers registered with the OS.
type Client interface {
	// List returns every registered printer name, managed or not.
	List(ctx context.Context) ([]string, error)
	// Install registers a printer; installing an existing name is a no-op to the OS.
	Install(ctx context.Context, req InstallRequest) error
	// Remove unregisters a printer.
	Remove(ctx context.Context, name string) error
}

// InstallRequest carries everything the OS installer needs.
type InstallRequest struct {
	Name       string
	Descriptor string
	Model      string
	Port       string
}

// OpError is a failed spooler operation.
type OpError struct {
	Op      string
	Printer string
	Output  string
	Err     error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Printer != "" {
		fmt.Fprintf(&b, " %q", e.Printer)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, " (output: %s)", out)
	}
	return b.String()
}

func (e *OpError) Unwrap() error { return e.Err }

// Is matches the sentinel for the operation.
func (e *OpError) Is(target error) bool {
	switch e.Op {
	case OpList:
		return target == ErrListFailed
	case OpInstall:
		return target == ErrInstallFailed
	case OpRemove:
		return target == ErrRemoveFailed
	}
	return false
}

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. A zero Timeout means no limit
// beyond the caller's context.
type ExecRunner struct {
	Timeout time.Duration
}

// Run executes the command, killing it when the context or timeout expires.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return out, fmt.Errorf("%s timed out after %v: %w", name, r.Timeout, ctx.Err())
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
