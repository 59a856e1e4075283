// Package main is the entry point of PrintSync.
// PrintSync keeps the printers installed on this machine in line with the
// network it is connected to.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/judwhite/go-svc"
	"github.com/spf13/cobra"

	"github.com/adcondev/print-sync/internal/config"
	"github.com/adcondev/print-sync/internal/daemon"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var consoleMode bool

	cmd := &cobra.Command{
		Use:          "PrintSync",
		Short:        "Install the printers that belong to the current network",
		Version:      fmt.Sprintf("%s (%s %s)", config.BuildEnvironment, config.BuildDate, config.BuildTime),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			prg := &daemon.Program{ConfigPath: daemon.ResolveConfigPath(configPath)}

			if consoleMode || isInteractive() {
				prg.Console = true
				return runConsole(prg)
			}
			// Run as Windows Service
			return svc.Run(prg, syscall.SIGINT, syscall.SIGTERM)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default $"+daemon.ConfigEnvVar+" or "+config.DefaultFileName+" next to the executable)")
	cmd.Flags().BoolVar(&consoleMode, "console", false, "Run in console mode (not as service)")

	cmd.AddCommand(showCmd(&configPath))
	cmd.AddCommand(bootstrapCmd(&configPath))
	cmd.AddCommand(reconcileCmd(&configPath))
	cmd.AddCommand(logsCmd(&configPath))
	return cmd
}

// runConsole runs the program in console mode
func runConsole(prg *daemon.Program) error {
	if err := prg.Init(nil); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	if err := prg.Start(); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	log.Println("═══════════════════════════════════════════════════════")
	log.Println("  🖨️  PRINTSYNC - Console mode")
	log.Println("  Press Ctrl+C to stop...")
	log.Println("═══════════════════════════════════════════════════════")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		log.Println("🛑 Interrupt received, shutting down...")
	case <-prg.Context().Done():
		log.Println("🛑 Exit requested, shutting down...")
	}

	return prg.Stop()
}

// isInteractive checks if running from a terminal (not as service)
func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	// If stdin is a character device (terminal), we're interactive
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
