// Package catalog holds the static subnet to printer mapping.
//
// A Catalog is built once at startup and never mutated afterwards, so the
// reconciliation loop and the presence surfaces share it without locking.
// Accessors return copies.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/printer"
)

// Entry is the configured printer list for one subnet.
type Entry struct {
	Subnet   printer.SubnetKey
	Printers []printer.Spec
}

// Catalog maps subnet keys to their expected printers.
type Catalog struct {
	order    []printer.SubnetKey
	entries  map[printer.SubnetKey][]printer.Spec
	universe map[string]struct{}
}

// New validates entries and builds an immutable catalog.
// Subnet keys must be x.y.z.0 and printer names unique within one subnet.
// Entries repeating a subnet are merged in order.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries:  make(map[printer.SubnetKey][]printer.Spec),
		universe: make(map[string]struct{}),
	}

	var errs []error
	seen := make(map[printer.SubnetKey]map[string]struct{})
	for _, e := range entries {
		key, err := network.ParseKey(string(e.Subnet))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		names, ok := seen[key]
		if !ok {
			names = make(map[string]struct{})
			seen[key] = names
			c.order = append(c.order, key)
			c.entries[key] = []printer.Spec{}
		}
		for _, p := range e.Printers {
			p.Name = strings.TrimSpace(p.Name)
			if p.Name == "" {
				errs = append(errs, fmt.Errorf("subnet %s: empty printer name", key))
				continue
			}
			if !validName(p.Name) {
				errs = append(errs, fmt.Errorf("subnet %s: printer name %q cannot be used as a folder name", key, p.Name))
				continue
			}
			if _, dup := names[p.Name]; dup {
				errs = append(errs, fmt.Errorf("subnet %s: duplicate printer %q", key, p.Name))
				continue
			}
			names[p.Name] = struct{}{}
			c.entries[key] = append(c.entries[key], p)
			c.universe[p.Name] = struct{}{}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return c, nil
}

// Printers returns the expected printers for a subnet, empty if unknown.
func (c *Catalog) Printers(key printer.SubnetKey) []printer.Spec {
	specs := c.entries[key]
	out := make([]printer.Spec, len(specs))
	copy(out, specs)
	return out
}

// Names returns the expected printer names for a subnet.
func (c *Catalog) Names(key printer.SubnetKey) []string {
	specs := c.entries[key]
	out := make([]string, len(specs))
	for i, p := range specs {
		out[i] = p.Name
	}
	return out
}

// Has reports whether the subnet has a catalog entry.
func (c *Catalog) Has(key printer.SubnetKey) bool {
	_, ok := c.entries[key]
	return ok
}

// Manages reports whether the printer appears under any subnet.
func (c *Catalog) Manages(name string) bool {
	_, ok := c.universe[name]
	return ok
}

// Subnets returns subnet keys in configuration order.
func (c *Catalog) Subnets() []printer.SubnetKey {
	out := make([]printer.SubnetKey, len(c.order))
	copy(out, c.order)
	return out
}

// Entries returns a deep copy of the catalog in configuration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, Entry{Subnet: key, Printers: c.Printers(key)})
	}
	return out
}

// Len returns the number of distinct managed printer names.
func (c *Catalog) Len() int {
	return len(c.universe)
}

// SubnetCount returns the number of configured subnets.
func (c *Catalog) SubnetCount() int {
	return len(c.order)
}

// validName rejects names that would escape their subnet folder in the
// driver repository.
func validName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
