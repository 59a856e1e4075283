package spooler

import (
	"context"
)

// PrintUI drives the Windows printer installer (printui.dll) through rundll32.
type PrintUI struct {
	runner    Runner
	enumerate func(ctx context.Context) ([]string, error)
}

var _ Client = (*PrintUI)(nil)

// NewPrintUI creates a client; enumerate lists registered printers.
func NewPrintUI(runner Runner, enumerate func(ctx context.Context) ([]string, error)) *PrintUI {
	return &PrintUI{runner: runner, enumerate: enumerate}
}

// List enumerates registered printers.
func (p *PrintUI) List(ctx context.Context) ([]string, error) {
	names, err := p.enumerate(ctx)
	if err != nil {
		return nil, &OpError{Op: OpList, Err: err}
	}
	return names, nil
}

// Install runs: rundll32 printui.dll,PrintUIEntry /if /b name /f inf /r port /m model /q
func (p *PrintUI) Install(ctx context.Context, req InstallRequest) error {
	args := []string{
		"printui.dll,PrintUIEntry", "/if",
		"/b", req.Name,
		"/f", req.Descriptor,
		"/r", req.Port,
		"/m", req.Model,
		"/q",
	}
	if out, err := p.runner.Run(ctx, "rundll32", args...); err != nil {
		return &OpError{Op: OpInstall, Printer: req.Name, Output: string(out), Err: err}
	}
	return nil
}

// Remove runs: rundll32 printui.dll,PrintUIEntry /dl /n name /q
func (p *PrintUI) Remove(ctx context.Context, name string) error {
	args := []string{"printui.dll,PrintUIEntry", "/dl", "/n", name, "/q"}
	if out, err := p.runner.Run(ctx, "rundll32", args...); err != nil {
		return &OpError{Op: OpRemove, Printer: name, Output: string(out), Err: err}
	}
	return nil
}
