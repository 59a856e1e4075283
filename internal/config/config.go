// Package config defines environment-specific settings for the PrintSync service.
package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/adcondev/print-sync/internal/driver"
	"github.com/adcondev/print-sync/internal/spooler"
)

// Build variables, injected at compile time
var (
	BuildEnvironment = "local"
	BuildDate        = "unknown"
	BuildTime        = "unknown"
	// ServiceName is used for logging and as part of the log file path.
	ServiceName = "PrintSync"
	// ControlTokenHashB64 is a base64-encoded bcrypt hash of the token that
	// authorizes the "exit" action on the presence feed. If empty, remote
	// exit is disabled.
	ControlTokenHashB64 = ""
	// ServerPort is the default port for the presence feed.
	ServerPort = "8767"
	// AllowedOrigins is a comma-separated list of allowed origin host patterns.
	// Example: "localhost:*,tray.example.com"
	AllowedOrigins = ""
)

// Environment holds environment-specific settings
type Environment struct {
	// Identity
	Name        string
	ServiceName string

	// Network
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Reconciliation
	PollInterval   time.Duration
	CommandTimeout time.Duration
	RemoveScope    string

	// Drivers
	DriverRoot     string
	DescriptorName string
	Architecture   string // empty = detect

	// Catalog
	CatalogPath string // empty = built-in catalog

	// Logging
	Verbose bool

	// Security
	AllowedOrigins []string
}

// LogPath returns the full log file path for this environment.
// Uses the convention: <programData>/<ServiceName>/<ServiceName>.log
func (e Environment) LogPath(programData string) string {
	return filepath.Join(programData, e.ServiceName, e.ServiceName+".log")
}

// environments defines available deployment configurations
var environments = map[string]Environment{
	"remote": {
		Name:           "REMOTE",
		ServiceName:    ServiceName,
		ListenAddr:     "0.0.0.0:" + ServerPort,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		PollInterval:   10 * time.Second,
		CommandTimeout: 2 * time.Minute,
		RemoveScope:    "catalog",
		DriverRoot:     driver.DefaultRoot,
		DescriptorName: spooler.DefaultDescriptor,
		Verbose:        false,
		// By default, restrict to localhost
		AllowedOrigins: []string{"localhost:*", "127.0.0.1:*"},
	},
	"local": {
		Name:           "LOCAL",
		ServiceName:    ServiceName,
		ListenAddr:     "localhost:" + ServerPort,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		PollInterval:   10 * time.Second,
		CommandTimeout: 2 * time.Minute,
		RemoveScope:    "catalog",
		DriverRoot:     driver.DefaultRoot,
		DescriptorName: spooler.DefaultDescriptor,
		Verbose:        true,
		// Allow all in local dev mode for convenience, but can be overridden
		AllowedOrigins: []string{"*"},
	},
}

// GetEnvironment returns config for the specified environment.
func GetEnvironment(env string) Environment {
	cfg, ok := environments[env]
	if !ok {
		log.Printf("[!] Unknown environment '%s', defaulting to 'local'", env)
		cfg = environments["local"]
	}

	// Override allowed origins from ldflags if provided
	if AllowedOrigins != "" {
		cfg.AllowedOrigins = strings.Split(AllowedOrigins, ",")
	}

	return cfg
}
