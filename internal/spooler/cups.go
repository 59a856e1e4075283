package spooler

import (
	"bufio"
	"bytes"
	"context"
	"strings"
)

// CUPS manages printers with the lpstat and lpadmin tools.
type CUPS struct {
	runner Runner
}

var _ Client = (*CUPS)(nil)

// NewCUPS creates a CUPS client.
func NewCUPS(runner Runner) *CUPS {
	return &CUPS{runner: runner}
}

// List parses "lpstat -e", one destination per line.
func (c *CUPS) List(ctx context.Context) ([]string, error) {
	out, err := c.runner.Run(ctx, "lpstat", "-e")
	if err != nil {
		// lpstat exits non-zero when nothing is configured
		if bytes.Contains(out, []byte("No destinations added")) {
			return []string{}, nil
		}
		return nil, &OpError{Op: OpList, Output: string(out), Err: err}
	}

	names := []string{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &OpError{Op: OpList, Err: err}
	}
	return names, nil
}

// Install runs: lpadmin -p name -E [-v uri] -P ppd
// Ports that are not device URIs are ignored.
func (c *CUPS) Install(ctx context.Context, req InstallRequest) error {
	args := []string{"-p", req.Name, "-E"}
	if strings.Contains(req.Port, "://") {
		args = append(args, "-v", req.Port)
	}
	args = append(args, "-P", req.Descriptor)

	if out, err := c.runner.Run(ctx, "lpadmin", args...); err != nil {
		return &OpError{Op: OpInstall, Printer: req.Name, Output: string(out), Err: err}
	}
	return nil
}

// Remove runs: lpadmin -x name
func (c *CUPS) Remove(ctx context.Context, name string) error {
	if out, err := c.runner.Run(ctx, "lpadmin", "-x", name); err != nil {
		return &OpError{Op: OpRemove, Printer: name, Output: string(out), Err: err}
	}
	return nil
}
