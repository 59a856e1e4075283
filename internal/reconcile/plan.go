package reconcile

import (
	"fmt"
	"strings"

	"github.com/adcondev/print-sync/internal/printer"
)

// Scope decides which installed printers a pass may remove.
type Scope string

const (
	// ScopeCatalog removes only printers listed somewhere in the catalog.
	ScopeCatalog Scope = "catalog"
	// ScopeAll removes every installed printer not desired on the subnet.
	ScopeAll Scope = "all"
)

// ParseScope accepts "catalog" (also the empty string) or "all".
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeCatalog:
		return ScopeCatalog, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return ScopeCatalog, fmt.Errorf("unknown remove scope %q (use %q or %q)", s, ScopeCatalog, ScopeAll)
}

// Plan is the computed difference between desired and installed printers.
type Plan struct {
	Subnet    printer.SubnetKey `json:"subnet"`
	Desired   []string          `json:"desired"`
	Installed []string          `json:"installed"`
	Install   []printer.Spec    `json:"install"`
	Remove    []string          `json:"remove"`
	Ignored   []string          `json:"ignored,omitempty"`
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Install) == 0 && len(p.Remove) == 0
}

// Diff returns desired printers missing from installed (desired order) and
// installed printers absent from desired (installed order). Surplus
// printers rejected by manages are returned as ignored.
func Diff(desired []printer.Spec, installed []string, manages func(string) bool) (install []printer.Spec, remove, ignored []string) {
	have := make(map[string]struct{}, len(installed))
	for _, name := range installed {
		have[name] = struct{}{}
	}
	want := make(map[string]struct{}, len(desired))
	for _, spec := range desired {
		want[spec.Name] = struct{}{}
		if _, ok := have[spec.Name]; !ok {
			install = append(install, spec)
		}
	}

	seen := make(map[string]struct{}, len(installed))
	for _, name := range installed {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := want[name]; ok {
			continue
		}
		if manages(name) {
			remove = append(remove, name)
		} else {
			ignored = append(ignored, name)
		}
	}
	return install, remove, ignored
}
