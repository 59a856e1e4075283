// Package presence answers "which printers belong here" for the user-facing
// surfaces. It only reads; reconciliation state is never touched.
package presence

import (
	"context"

	"github.com/adcondev/print-sync/internal/catalog"
	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/printer"
)

// Lister enumerates installed printers.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// View is the expected printer list for the current subnet.
type View struct {
	Subnet   printer.SubnetKey   `json:"subnet"`
	Known    bool                `json:"known"`
	Printers []printer.DetailDTO `json:"printers"`
	// ListErr is set when installed state could not be read; Installed
	// flags are then all false.
	ListErr error `json:"-"`
}

// Installed counts expected printers that are registered.
func (v View) Installed() int {
	n := 0
	for _, p := range v.Printers {
		if p.Installed {
			n++
		}
	}
	return n
}

// Provider recomputes the view on every call, independently of the loop.
type Provider struct {
	detector network.Detector
	catalog  *catalog.Catalog
	lister   Lister
}

// NewProvider creates a provider. lister may be nil to skip install state.
func NewProvider(d network.Detector, c *catalog.Catalog, l Lister) *Provider {
	return &Provider{detector: d, catalog: c, lister: l}
}

// Current detects the subnet and returns its expected printers.
func (p *Provider) Current(ctx context.Context) (View, error) {
	subnet, err := p.detector.Detect(ctx)
	if err != nil {
		return View{}, err
	}
	return p.For(ctx, subnet), nil
}

// For returns the view for a known subnet.
func (p *Provider) For(ctx context.Context, subnet printer.SubnetKey) View {
	v := View{Subnet: subnet, Known: p.catalog.Has(subnet)}

	installed := map[string]struct{}{}
	if p.lister != nil {
		names, err := p.lister.List(ctx)
		if err != nil {
			v.ListErr = err
		}
		for _, n := range names {
			installed[n] = struct{}{}
		}
	}

	for _, spec := range p.catalog.Printers(subnet) {
		_, ok := installed[spec.Name]
		v.Printers = append(v.Printers, printer.DetailDTO{
			Name:      spec.Name,
			Model:     spec.InstallModel(),
			Installed: ok,
		})
	}
	return v
}
