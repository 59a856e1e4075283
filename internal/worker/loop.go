// Package worker runs the background reconciliation loop.
package worker

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/printer"
	"github.com/adcondev/print-sync/internal/reconcile"
)

// DefaultInterval is the pause between two subnet checks.
const DefaultInterval = 10 * time.Second

// Config holds worker configuration
type Config struct {
	Interval time.Duration
}

// Detector resolves the current subnet key.
type Detector interface {
	Detect(ctx context.Context) (printer.SubnetKey, error)
}

// Reconciler applies the catalog for a subnet.
type Reconciler interface {
	Reconcile(ctx context.Context, subnet printer.SubnetKey) (reconcile.Report, error)
}

// ReportFunc receives every finished pass.
type ReportFunc func(reconcile.Report)

// Worker polls the subnet and reconciles when it changes. The last seen
// subnet is its only mutable state; it is advanced after every pass that
// ran, even when single printers failed, so a partially failing network
// does not cause a retry storm.
type Worker struct {
	detector   Detector
	reconciler Reconciler
	config     Config
	onReport   ReportFunc

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	isRunning      bool
	lastSubnet     printer.SubnetKey
	cycles         int64
	passes         int64
	passesFailed   int64
	detectFailures int64
	lastPassTime   time.Time
	lastError      string
}

// NewWorker creates a new reconciliation worker
func NewWorker(detector Detector, reconciler Reconciler, config Config) *Worker {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Worker{
		detector:   detector,
		reconciler: reconciler,
		config:     config,
	}
}

// OnReport registers a callback for finished passes. Call before Start.
func (w *Worker) OnReport(fn ReportFunc) {
	w.onReport = fn
}

// Start begins the worker goroutine. It stops when ctx is cancelled or
// Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Printf("[LOOP] ✅ Reconciliation loop started (interval: %v)", w.config.Interval)
}

// Stop cancels the loop, including a pass in flight, and waits for it.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	cancel := w.cancel
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	stats := w.Stats()
	log.Printf("[LOOP] 🛑 Reconciliation loop stopped (passes: %d, failed: %d)", stats.Passes, stats.PassesFailed)
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[LOOP] 📴 Received stop signal")
			return
		case <-timer.C:
			w.cycle(ctx)
			timer.Reset(w.config.Interval)
		}
	}
}

// cycle runs one detection and, on a subnet change, one pass. It reports
// whether a pass was attempted.
func (w *Worker) cycle(ctx context.Context) (attempted bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LOOP] 💥 Panic in cycle: %v\nStack:  %s", r, debug.Stack())
			w.recordFailure("panic during reconciliation")
		}
	}()

	w.mu.Lock()
	w.cycles++
	previous := w.lastSubnet
	w.mu.Unlock()

	current, err := w.detector.Detect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		w.mu.Lock()
		w.detectFailures++
		w.mu.Unlock()
		if errors.Is(err, network.ErrNetworkUnavailable) {
			log.Printf("[LOOP] ⚠️ Network unavailable, skipping cycle: %v", err)
		} else {
			log.Printf("[LOOP] ⚠️ Subnet detection failed, skipping cycle: %v", err)
		}
		return false
	}

	if current == previous {
		return false
	}

	log.Printf("[LOOP] 🌐 Detected new subnet: %s (previous: %s)", current, displaySubnet(previous))

	report, err := w.reconciler.Reconcile(ctx, current)
	if err != nil {
		if ctx.Err() != nil {
			log.Printf("[LOOP] 📴 Pass for %s interrupted by shutdown", current)
			return true
		}
		// Nothing was applied; keep the old subnet so the next cycle retries.
		log.Printf("[LOOP] ❌ Pass for %s could not run: %v", current, err)
		w.recordFailure(err.Error())
		return true
	}

	w.mu.Lock()
	w.lastSubnet = current
	w.passes++
	w.lastPassTime = report.FinishedAt
	if failures := report.Failures(); len(failures) > 0 {
		w.lastError = failures[len(failures)-1].Err.Error()
	} else {
		w.lastError = ""
	}
	w.mu.Unlock()

	if w.onReport != nil {
		w.onReport(report)
	}
	return true
}

func (w *Worker) recordFailure(msg string) {
	w.mu.Lock()
	w.passesFailed++
	w.lastError = msg
	w.mu.Unlock()
}

func displaySubnet(k printer.SubnetKey) string {
	if k == "" {
		return "none"
	}
	return string(k)
}

// Stats returns current worker statistics
func (w *Worker) Stats() Statistics {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Statistics{
		IsRunning:      w.isRunning,
		Interval:       w.config.Interval.String(),
		LastSubnet:     w.lastSubnet,
		Cycles:         w.cycles,
		Passes:         w.passes,
		PassesFailed:   w.passesFailed,
		DetectFailures: w.detectFailures,
		LastPassTime:   w.lastPassTime,
		LastError:      w.lastError,
	}
}

// Statistics holds worker runtime statistics
type Statistics struct {
	IsRunning      bool              `json:"is_running"`
	Interval       string            `json:"interval"`
	LastSubnet     printer.SubnetKey `json:"last_subnet,omitempty"`
	Cycles         int64             `json:"cycles"`
	Passes         int64             `json:"passes"`
	PassesFailed   int64             `json:"passes_failed"`
	DetectFailures int64             `json:"detect_failures"`
	LastPassTime   time.Time         `json:"last_pass_time,omitempty"`
	LastError      string            `json:"last_error,omitempty"`
}
