package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/judwhite/go-svc"

	"github.com/adcondev/print-sync/internal/auth"
	"github.com/adcondev/print-sync/internal/config"
	"github.com/adcondev/print-sync/internal/driver"
	"github.com/adcondev/print-sync/internal/reconcile"
	"github.com/adcondev/print-sync/internal/server"
	"github.com/adcondev/print-sync/internal/worker"
)

// Program implements svc.Service interface
type Program struct {
	// ConfigPath is the optional YAML configuration file.
	ConfigPath string
	// Console mirrors the log to stdout.
	Console bool

	wg               sync.WaitGroup
	ctx              context.Context
	cancel           context.CancelFunc
	components       *Components
	httpServer       *http.Server
	wsServer         *server.Server
	loop             *worker.Worker
	authMgr          *auth.Manager
	startTime        time.Time
	printerDiscovery *PrinterDiscovery
}

// Context is cancelled when the service should exit: on Stop or after an
// authenticated exit request from the presence feed.
func (p *Program) Context() context.Context {
	return p.ctx
}

// Init initializes the service
func (p *Program) Init(_ svc.Environment) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	components, err := Setup(p.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	p.components = components
	env := components.Env

	if err := initLogging(env, p.Console); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║   🖨️  PRINTSYNC - Network Printer Reconciliation           ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")
	log.Printf("[INIT] 🚀 Starting service - Environment: %s", env.Name)
	log.Printf("[INIT] 📅 Build: %s %s", config.BuildDate, config.BuildTime)
	if env.CatalogPath != "" {
		log.Printf("[INIT] 📄 Config file: %s", env.CatalogPath)
	} else {
		log.Println("[INIT] 📄 No config file, using built-in catalog")
	}
	log.Printf("[INIT] 📚 Catalog: %d subnet(s), remove scope: %s", components.Catalog.SubnetCount(), env.RemoveScope)
	log.Printf("[INIT] 💻 Driver root: %s (arch: %s)", env.DriverRoot, components.Locator.Architecture())

	return nil
}

// Start starts the service
func (p *Program) Start() error {
	p.startTime = time.Now()
	env := p.components.Env

	if _, err := driver.Bootstrap(env.DriverRoot, p.components.Catalog); err != nil {
		// Missing folders only surface later as missing drivers.
		log.Printf("[BOOTSTRAP] ⚠️ Driver repository incomplete: %v", err)
	}

	// Auth cleanup is bound to the service context
	p.authMgr = auth.NewManager(p.ctx, config.ControlTokenHashB64)

	p.printerDiscovery = NewPrinterDiscovery(p.components.Presence, env.PollInterval)
	p.printerDiscovery.LogStartupDiagnostics(p.ctx)

	p.loop = worker.NewWorker(
		p.components.Detector,
		p.components.Reconciler,
		worker.Config{Interval: env.PollInterval},
	)

	p.wsServer = server.NewServer(
		server.Config{AllowedOrigins: env.AllowedOrigins},
		p.printerDiscovery,
		p.loop,
		p.authMgr,
	)
	p.wsServer.OnExit(p.cancel)

	p.loop.OnReport(func(r reconcile.Report) {
		p.printerDiscovery.Invalidate()
		p.wsServer.BroadcastReport(r)
	})
	p.loop.Start(p.ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", p.wsServer.HandleWebSocket)
	mux.HandleFunc("/health", newHealthHandler(healthSources{
		started:  p.startTime,
		loop:     p.loop,
		printers: p.printerDiscovery,
		clients:  p.wsServer.ClientCount,
		arch:     p.components.Locator.Architecture().String(),
	}))

	p.httpServer = &http.Server{
		Addr:         env.ListenAddr,
		Handler:      mux,
		ReadTimeout:  env.ReadTimeout,
		WriteTimeout: env.WriteTimeout,
		IdleTimeout:  env.IdleTimeout,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		log.Println("┌─────────────────────────────────────────────────────────────┐")
		log.Printf("│ 🖨️  PRINTSYNC READY - Environment: %-24s│", env.Name)
		log.Printf("│ 🔌 WebSocket: ws://%s/ws%-25s│", env.ListenAddr, "")
		log.Printf("│ 💚 Health:     http://%s/health%-20s│", env.ListenAddr, "")
		log.Printf("│ 🔐 Remote exit: %-42v│", p.authMgr.Enabled())
		log.Println("└─────────────────────────────────────────────────────────────┘")

		if err := p.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[HTTP] ❌ Error starting HTTP server: %v", err)
		}
	}()

	return nil
}

// Stop stops the service gracefully
func (p *Program) Stop() error {
	log.Println("[STOP] 🛑 Service shutting down...")

	// 1. Cancel context (stops auth cleanup and in-flight commands)
	if p.cancel != nil {
		p.cancel()
	}

	// 2. Stop reconciliation loop
	if p.loop != nil {
		p.loop.Stop()
	}

	// 3. Graceful HTTP shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if p.httpServer != nil {
		if err := p.httpServer.Shutdown(ctx); err != nil {
			log.Printf("[STOP] ⚠️ HTTP shutdown error: %v", err)
		}
	}

	// 4. Shutdown WebSocket server
	if p.wsServer != nil {
		p.wsServer.Shutdown()
	}

	p.wg.Wait()

	uptime := time.Since(p.startTime)
	log.Printf("[STOP] ✅ Service stopped (uptime: %v)", uptime.Round(time.Second))
	CloseLogger()
	return nil
}

type healthSources struct {
	started  time.Time
	loop     server.LoopStats
	printers server.PrinterLister
	clients  func() int
	arch     string
}

func newHealthHandler(src healthSources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:   "ok",
			Loop:     src.loop.Stats(),
			Printers: src.printers.GetSummary(r.Context()),
			Build: BuildInfo{
				Env:  config.BuildEnvironment,
				Date: config.BuildDate,
				Time: config.BuildTime,
				Arch: src.arch,
			},
			Uptime: int(time.Since(src.started).Seconds()),
		}
		if src.clients != nil {
			response.Clients = src.clients()
		}

		switch {
		case !response.Loop.IsRunning:
			response.Status = "stopped"
		case response.Printers.Status == "error":
			response.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

func initLogging(env config.Environment, console bool) error {
	logPath := env.LogPath(programDataDir())
	logDir := filepath.Dir(logPath)

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	if err := InitLogger(logPath, env.Verbose); err != nil {
		return err
	}
	if console {
		EnableConsole(os.Stdout)
	}

	log.Printf("[INIT] 📁 Log file: %s (verbose: %v)", logPath, GetVerbose())
	return nil
}

// programDataDir is %PROGRAMDATA% on Windows and the user cache dir elsewhere.
func programDataDir() string {
	if dir := os.Getenv("PROGRAMDATA"); dir != "" {
		return dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}

// LogFilePath returns the log location used by the service.
func LogFilePath(env config.Environment) string {
	return env.LogPath(programDataDir())
}
