package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/presence"
	"github.com/adcondev/print-sync/internal/printer"
)

type countingSource struct {
	calls atomic.Int32
	view  presence.View
	err   error
}

func (s *countingSource) Current(context.Context) (presence.View, error) {
	s.calls.Add(1)
	return s.view, s.err
}

func sampleView() presence.View {
	return presence.View{
		Subnet: "192.168.1.0",
		Known:  true,
		Printers: []printer.DetailDTO{
			{Name: "Takalfa 4002i", Model: "Takalfa 4002i"},
			{Name: "HP LaserJet Pro", Model: "HP LaserJet Pro", Installed: true},
		},
	}
}

func TestNewPrinterDiscovery(t *testing.T) {
	ttl := 10 * time.Second
	pd := NewPrinterDiscovery(&countingSource{}, ttl)
	if pd.cacheTTL != ttl {
		t.Errorf("expected cacheTTL %v, got %v", ttl, pd.cacheTTL)
	}

	pd = NewPrinterDiscovery(&countingSource{}, 0)
	if pd.cacheTTL != 30*time.Second {
		t.Errorf("zero TTL should default to 30s, got %v", pd.cacheTTL)
	}
}

func TestPrinterDiscovery_Caching(t *testing.T) {
	src := &countingSource{view: sampleView()}
	pd := NewPrinterDiscovery(src, time.Minute)
	ctx := context.Background()

	v1, err := pd.GetView(ctx, false)
	if err != nil {
		t.Fatalf("GetView() error: %v", err)
	}
	if _, err := pd.GetView(ctx, false); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}

	// Callers get copies
	v1.Printers[0].Installed = true
	v2, _ := pd.GetView(ctx, false)
	if v2.Printers[0].Installed {
		t.Error("mutating a returned view changed the cache")
	}

	if _, err := pd.GetView(ctx, true); err != nil {
		t.Fatal(err)
	}
	pd.Invalidate()
	if _, err := pd.GetView(ctx, false); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 3 {
		t.Errorf("source called %d times, want 3", got)
	}
}

func TestPrinterDiscovery_StaleOnError(t *testing.T) {
	src := &countingSource{view: sampleView()}
	pd := NewPrinterDiscovery(src, time.Minute)
	ctx := context.Background()

	if _, err := pd.GetView(ctx, false); err != nil {
		t.Fatal(err)
	}

	src.err = network.ErrNetworkUnavailable
	v, err := pd.GetView(ctx, true)
	if !errors.Is(err, network.ErrNetworkUnavailable) {
		t.Fatalf("expected network error, got %v", err)
	}
	if v.Subnet != "192.168.1.0" {
		t.Errorf("expected stale view, got %+v", v)
	}
}

func TestPrinterDiscovery_GetSummary(t *testing.T) {
	tests := []struct {
		name       string
		view       presence.View
		err        error
		wantStatus string
		wantCounts [2]int
	}{
		{
			name:       "missing printer is a warning",
			view:       sampleView(),
			wantStatus: "warning",
			wantCounts: [2]int{2, 1},
		},
		{
			name: "all installed",
			view: presence.View{Subnet: "10.0.0.0", Known: true, Printers: []printer.DetailDTO{
				{Name: "A", Installed: true},
			}},
			wantStatus: "ok",
			wantCounts: [2]int{1, 1},
		},
		{
			name:       "unknown subnet",
			view:       presence.View{Subnet: "172.16.0.0"},
			wantStatus: "ok",
		},
		{
			name: "list failure",
			view: presence.View{Subnet: "10.0.0.0", Known: true, ListErr: errors.New("spooler down"),
				Printers: []printer.DetailDTO{{Name: "A"}}},
			wantStatus: "warning",
			wantCounts: [2]int{1, 0},
		},
		{
			name:       "detection failure",
			err:        network.ErrNetworkUnavailable,
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := NewPrinterDiscovery(&countingSource{view: tt.view, err: tt.err}, time.Minute)
			s := pd.GetSummary(context.Background())
			if s.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", s.Status, tt.wantStatus)
			}
			if s.ExpectedCount != tt.wantCounts[0] || s.InstalledCount != tt.wantCounts[1] {
				t.Errorf("counts = %d/%d, want %d/%d", s.ExpectedCount, s.InstalledCount, tt.wantCounts[0], tt.wantCounts[1])
			}
			if tt.err != nil && s.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}
