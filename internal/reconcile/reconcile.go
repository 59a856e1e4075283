// Package reconcile brings the OS printer list in line with the catalog
// entry of the current subnet.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/adcondev/print-sync/internal/catalog"
	"github.com/adcondev/print-sync/internal/printer"
	"github.com/adcondev/print-sync/internal/spooler"
)

// DriverLocator resolves the descriptor to install a printer from.
type DriverLocator interface {
	Locate(subnet printer.SubnetKey, name string) (string, error)
}

// Reconciler installs missing printers and removes surplus ones.
// It is not safe for concurrent passes; the loop is its only caller.
type Reconciler struct {
	catalog *catalog.Catalog
	spooler spooler.Client
	drivers DriverLocator
	scope   Scope
}

// New creates a reconciler.
func New(c *catalog.Catalog, s spooler.Client, d DriverLocator, scope Scope) *Reconciler {
	return &Reconciler{catalog: c, spooler: s, drivers: d, scope: scope}
}

// Plan lists installed printers and computes the changes for subnet
// without touching the OS.
func (r *Reconciler) Plan(ctx context.Context, subnet printer.SubnetKey) (Plan, error) {
	installed, err := r.spooler.List(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("listing installed printers: %w", err)
	}

	desired := r.catalog.Printers(subnet)
	plan := Plan{
		Subnet:    subnet,
		Desired:   r.catalog.Names(subnet),
		Installed: installed,
	}
	plan.Install, plan.Remove, plan.Ignored = Diff(desired, installed, r.manages)
	return plan, nil
}

// Reconcile runs one pass for subnet: installs first, then removals.
// Per-printer failures are recorded in the report and never abort the
// batch. The returned error is non-nil only when the pass could not start
// or the context was cancelled midway.
func (r *Reconciler) Reconcile(ctx context.Context, subnet printer.SubnetKey) (Report, error) {
	report := Report{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}

	plan, err := r.Plan(ctx, subnet)
	if err != nil {
		report.Plan = Plan{Subnet: subnet}
		report.FinishedAt = time.Now()
		return report, err
	}
	report.Plan = plan

	log.Printf("[RECONCILE] 🔄 Pass %s for %s: desired=%d installed=%d install=%d remove=%d",
		shortID(report.ID), subnet, len(plan.Desired), len(plan.Installed), len(plan.Install), len(plan.Remove))
	if len(plan.Ignored) > 0 {
		log.Printf("[RECONCILE] Leaving %d unmanaged printer(s) in place: %v", len(plan.Ignored), plan.Ignored)
	}

	for _, spec := range plan.Install {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}
		report.Outcomes = append(report.Outcomes, r.install(ctx, subnet, spec))
	}

	for _, name := range plan.Remove {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}
		report.Outcomes = append(report.Outcomes, r.remove(ctx, name))
	}

	report.FinishedAt = time.Now()
	log.Printf("[RECONCILE] ✅ Pass %s finished in %v (ok: %d, failed: %d)",
		shortID(report.ID), report.Duration().Round(time.Millisecond), report.Succeeded(), len(report.Failures()))
	return report, nil
}

func (r *Reconciler) install(ctx context.Context, subnet printer.SubnetKey, spec printer.Spec) Outcome {
	out := Outcome{Action: ActionInstall, Printer: spec.Name}

	path, err := r.drivers.Locate(subnet, spec.Name)
	if err != nil {
		out.Err = err
		log.Printf("[RECONCILE] ⚠️ %v", err)
		return out
	}
	out.Driver = path

	err = r.spooler.Install(ctx, spooler.InstallRequest{
		Name:       spec.Name,
		Descriptor: path,
		Model:      spec.InstallModel(),
		Port:       spec.InstallPort(),
	})
	if err != nil {
		out.Err = err
		log.Printf("[RECONCILE] ❌ Error installing printer %s: %v", spec.Name, err)
		return out
	}
	log.Printf("[RECONCILE] ➕ Installed %s from %s", spec.Name, path)
	return out
}

func (r *Reconciler) remove(ctx context.Context, name string) Outcome {
	out := Outcome{Action: ActionRemove, Printer: name}
	if err := r.spooler.Remove(ctx, name); err != nil {
		out.Err = err
		log.Printf("[RECONCILE] ❌ Error removing printer %s: %v", name, err)
		return out
	}
	log.Printf("[RECONCILE] ➖ Removed %s", name)
	return out
}

func (r *Reconciler) manages(name string) bool {
	if r.scope == ScopeAll {
		return true
	}
	return r.catalog.Manages(name)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
