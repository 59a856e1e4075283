package daemon

import (
	"os"
	"path/filepath"

	"github.com/adcondev/print-sync/internal/catalog"
	"github.com/adcondev/print-sync/internal/config"
	"github.com/adcondev/print-sync/internal/driver"
	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/presence"
	"github.com/adcondev/print-sync/internal/reconcile"
	"github.com/adcondev/print-sync/internal/spooler"
)

// ConfigEnvVar overrides the configuration file location.
const ConfigEnvVar = "PRINTSYNC_CONFIG"

// ResolveConfigPath picks the configuration file: the explicit path, then
// $PRINTSYNC_CONFIG, then printsync.yaml next to the executable. An empty
// result means built-in settings and catalog.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(filepath.Dir(exe), config.DefaultFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Components are the wired domain services shared by the service and the
// one-shot commands.
type Components struct {
	Env        config.Environment
	Catalog    *catalog.Catalog
	Locator    *driver.Locator
	Spooler    spooler.Client
	Detector   network.Detector
	Reconciler *reconcile.Reconciler
	Presence   *presence.Provider
}

// Setup loads configuration from configPath (may be empty) and wires the
// components for the running host.
func Setup(configPath string) (*Components, error) {
	env := config.GetEnvironment(config.BuildEnvironment)

	var file *config.File
	if configPath != "" {
		f, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		file = f
		env.CatalogPath = configPath
	}
	env = file.Apply(env)

	cat, err := catalog.New(file.CatalogEntries())
	if err != nil {
		return nil, err
	}

	arch := driver.DetectArchitecture()
	if env.Architecture != "" {
		if arch, err = driver.ParseArchitecture(env.Architecture); err != nil {
			return nil, err
		}
	}

	scope, err := reconcile.ParseScope(env.RemoveScope)
	if err != nil {
		return nil, err
	}

	locator := driver.NewLocator(env.DriverRoot, env.DescriptorName, arch)
	client := spooler.New(spooler.ExecRunner{Timeout: env.CommandTimeout})
	detector := network.NewHostDetector()

	return &Components{
		Env:        env,
		Catalog:    cat,
		Locator:    locator,
		Spooler:    client,
		Detector:   detector,
		Reconciler: reconcile.New(cat, client, locator, scope),
		Presence:   presence.NewProvider(detector, cat, client),
	}, nil
}
