package daemon

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/adcondev/print-sync/internal/presence"
	"github.com/adcondev/print-sync/internal/printer"
	workererrors "github.com/adcondev/print-sync/internal/worker/errors"
)

// ViewSource computes the presence view for the current subnet.
type ViewSource interface {
	Current(ctx context.Context) (presence.View, error)
}

// PrinterDiscovery caches the presence view for the UI surfaces
type PrinterDiscovery struct {
	source      ViewSource
	cache       *presence.View
	lastRefresh time.Time
	cacheTTL    time.Duration
	mu          sync.RWMutex
}

// NewPrinterDiscovery creates a new discovery service
func NewPrinterDiscovery(source ViewSource, ttl time.Duration) *PrinterDiscovery {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &PrinterDiscovery{
		source:   source,
		cacheTTL: ttl,
	}
}

// GetView returns the cached view or refreshes it if stale
func (pd *PrinterDiscovery) GetView(ctx context.Context, forceRefresh bool) (presence.View, error) {
	pd.mu.RLock()
	if !forceRefresh && pd.fresh() {
		result := copyView(*pd.cache)
		pd.mu.RUnlock()
		return result, nil
	}
	pd.mu.RUnlock()

	pd.mu.Lock()
	defer pd.mu.Unlock()

	// Double-check after acquiring write lock
	if !forceRefresh && pd.fresh() {
		return copyView(*pd.cache), nil
	}

	view, err := pd.source.Current(ctx)
	if err != nil {
		if pd.cache != nil {
			return copyView(*pd.cache), err // stale copy on error
		}
		return presence.View{}, err
	}

	pd.cache = &view
	pd.lastRefresh = time.Now()
	return copyView(view), nil
}

// Invalidate drops the cache so the next read recomputes.
func (pd *PrinterDiscovery) Invalidate() {
	pd.mu.Lock()
	pd.cache = nil
	pd.mu.Unlock()
}

func (pd *PrinterDiscovery) fresh() bool {
	return pd.cache != nil && time.Since(pd.lastRefresh) < pd.cacheTTL
}

func copyView(v presence.View) presence.View {
	out := v
	out.Printers = make([]printer.DetailDTO, len(v.Printers))
	copy(out.Printers, v.Printers)
	return out
}

// GetSummary returns a lightweight summary for health checks
func (pd *PrinterDiscovery) GetSummary(ctx context.Context) printer.Summary {
	view, err := pd.GetView(ctx, false)
	if err != nil {
		return printer.Summary{Status: "error", Error: workererrors.Describe(err)}
	}
	return summarize(view)
}

func summarize(view presence.View) printer.Summary {
	s := printer.Summary{
		Status:         "ok",
		Subnet:         view.Subnet,
		ExpectedCount:  len(view.Printers),
		InstalledCount: view.Installed(),
	}
	switch {
	case view.ListErr != nil:
		s.Status = "warning"
		s.Error = workererrors.Describe(view.ListErr)
	case s.InstalledCount < s.ExpectedCount:
		s.Status = "warning"
	}
	return s
}

// LogStartupDiagnostics logs the expected printers at service start
func (pd *PrinterDiscovery) LogStartupDiagnostics(ctx context.Context) {
	view, err := pd.GetView(ctx, true)
	if err != nil {
		log.Printf("[PRINTERS] ⚠️ Could not determine current network: %v", err)
		return
	}

	log.Println("[PRINTERS] ══════════════════════════════════════════════════")
	if !view.Known {
		log.Printf("[PRINTERS] 🌐 Subnet %s has no catalog entry", view.Subnet)
	} else {
		log.Printf("[PRINTERS] 🌐 Subnet %s expects %d printer(s), %d installed",
			view.Subnet, len(view.Printers), view.Installed())
		for _, p := range view.Printers {
			mark := "❌"
			if p.Installed {
				mark = "✅"
			}
			log.Printf("[PRINTERS]    %s %s", mark, p.Name)
		}
	}
	if view.ListErr != nil {
		log.Printf("[PRINTERS] ⚠️ Installed printers unavailable: %v", view.ListErr)
	}
	log.Println("[PRINTERS] ══════════════════════════════════════════════════")
}
