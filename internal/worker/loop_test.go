package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/printer"
	"github.com/adcondev/print-sync/internal/reconcile"
	"github.com/adcondev/print-sync/internal/spooler"
)

// scriptedDetector returns keys in order, repeating the last one.
type scriptedDetector struct {
	mu    sync.Mutex
	steps []detectStep
	i     int
}

type detectStep struct {
	key printer.SubnetKey
	err error
}

func (d *scriptedDetector) Detect(context.Context) (printer.SubnetKey, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.steps[d.i]
	if d.i < len(d.steps)-1 {
		d.i++
	}
	return s.key, s.err
}

// mockReconciler records calls and can fail them.
type mockReconciler struct {
	mu      sync.Mutex
	calls   []printer.SubnetKey
	err     error
	outcome []reconcile.Outcome
}

func (m *mockReconciler) Reconcile(_ context.Context, subnet printer.SubnetKey) (reconcile.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, subnet)
	if m.err != nil {
		return reconcile.Report{}, m.err
	}
	return reconcile.Report{
		ID:         "pass",
		Plan:       reconcile.Plan{Subnet: subnet},
		Outcomes:   m.outcome,
		FinishedAt: time.Now(),
	}, nil
}

func (m *mockReconciler) Calls() []printer.SubnetKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]printer.SubnetKey(nil), m.calls...)
}

func steps(keys ...printer.SubnetKey) []detectStep {
	out := make([]detectStep, len(keys))
	for i, k := range keys {
		out[i] = detectStep{key: k}
	}
	return out
}

func TestCycle_ReconcilesOnlyOnSubnetChange(t *testing.T) {
	det := &scriptedDetector{steps: steps("192.168.1.0", "192.168.1.0", "192.168.1.0", "10.0.1.0", "10.0.1.0", "192.168.1.0")}
	rec := &mockReconciler{}
	w := NewWorker(det, rec, Config{})
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		w.cycle(ctx)
	}

	want := []printer.SubnetKey{"192.168.1.0", "10.0.1.0", "192.168.1.0"}
	got := rec.Calls()
	if len(got) != len(want) {
		t.Fatalf("Reconcile calls = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s; want %s", i, got[i], want[i])
		}
	}

	stats := w.Stats()
	if stats.Cycles != 6 || stats.Passes != 3 || stats.LastSubnet != "192.168.1.0" {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCycle_PartialFailureStillAdvancesSubnet(t *testing.T) {
	det := &scriptedDetector{steps: steps("192.168.0.0")}
	rec := &mockReconciler{outcome: []reconcile.Outcome{
		{Action: reconcile.ActionInstall, Printer: "A", Err: errors.New("driver not found")},
		{Action: reconcile.ActionRemove, Printer: "B"},
	}}
	w := NewWorker(det, rec, Config{})
	ctx := context.Background()

	w.cycle(ctx)
	w.cycle(ctx)
	w.cycle(ctx)

	if n := len(rec.Calls()); n != 1 {
		t.Errorf("Reconcile called %d times; want 1", n)
	}
	if stats := w.Stats(); stats.LastError != "driver not found" {
		t.Errorf("LastError = %q", stats.LastError)
	}
}

func TestCycle_NetworkUnavailableSkips(t *testing.T) {
	det := &scriptedDetector{steps: []detectStep{
		{err: network.ErrNetworkUnavailable},
		{key: "192.168.1.0"},
	}}
	rec := &mockReconciler{}
	w := NewWorker(det, rec, Config{})
	ctx := context.Background()

	if w.cycle(ctx) {
		t.Error("cycle() attempted a pass without a network")
	}
	if !w.cycle(ctx) {
		t.Error("cycle() did not reconcile once the network came back")
	}
	if stats := w.Stats(); stats.DetectFailures != 1 || stats.Passes != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCycle_AbortedPassRetriesNextCycle(t *testing.T) {
	det := &scriptedDetector{steps: steps("192.168.1.0")}
	rec := &mockReconciler{err: &spooler.OpError{Op: spooler.OpList, Err: errors.New("spooler stopped")}}
	w := NewWorker(det, rec, Config{})
	ctx := context.Background()

	w.cycle(ctx)
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()
	w.cycle(ctx)
	w.cycle(ctx)

	if n := len(rec.Calls()); n != 2 {
		t.Errorf("Reconcile called %d times; want 2 (failed pass then retry)", n)
	}
	if stats := w.Stats(); stats.PassesFailed != 1 || stats.Passes != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCycle_RecoversFromPanic(t *testing.T) {
	w := NewWorker(&scriptedDetector{steps: steps("192.168.1.0")}, panicReconciler{}, Config{})
	w.cycle(context.Background())
	if stats := w.Stats(); stats.PassesFailed != 1 || stats.LastSubnet != "" {
		t.Errorf("Stats() = %+v", stats)
	}
}

type panicReconciler struct{}

func (panicReconciler) Reconcile(context.Context, printer.SubnetKey) (reconcile.Report, error) {
	panic("boom")
}

func TestWorker_StartStop(t *testing.T) {
	det := &scriptedDetector{steps: steps("192.168.1.0")}
	rec := &mockReconciler{}
	w := NewWorker(det, rec, Config{Interval: 5 * time.Millisecond})

	reports := make(chan reconcile.Report, 4)
	w.OnReport(func(r reconcile.Report) { reports <- r })

	w.Start(context.Background())
	w.Start(context.Background()) // second Start is a no-op

	select {
	case r := <-reports:
		if r.Plan.Subnet != "192.168.1.0" {
			t.Errorf("report subnet = %s", r.Plan.Subnet)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first pass")
	}

	// let several more cycles run on the same subnet
	deadline := time.Now().Add(2 * time.Second)
	for w.Stats().Cycles < 5 {
		if time.Now().After(deadline) {
			t.Fatalf("loop stalled: %+v", w.Stats())
		}
		time.Sleep(5 * time.Millisecond)
	}

	w.Stop()
	w.Stop()

	if n := len(rec.Calls()); n != 1 {
		t.Errorf("Reconcile called %d times; want 1", n)
	}
	if w.Stats().IsRunning {
		t.Error("worker still running after Stop")
	}
}

func TestWorker_StopsWithParentContext(t *testing.T) {
	w := NewWorker(&scriptedDetector{steps: steps("192.168.1.0")}, &mockReconciler{}, Config{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after parent cancellation")
	}
	w.Stop()
}
