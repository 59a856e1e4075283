package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adcondev/print-sync/internal/daemon"
)

func logsCmd(configPath *string) *cobra.Command {
	var flush bool

	c := &cobra.Command{
		Use:   "logs",
		Short: "Show the service log location, optionally trimming it",
		RunE: func(_ *cobra.Command, _ []string) error {
			comps, err := daemon.Setup(daemon.ResolveConfigPath(*configPath))
			if err != nil {
				return err
			}
			path := daemon.LogFilePath(comps.Env)

			if flush {
				if err := daemon.InitLogger(path, comps.Env.Verbose); err != nil {
					return err
				}
				defer daemon.CloseLogger()
				if err := daemon.FlushLogFile(); err != nil {
					return err
				}
			}

			fmt.Printf("%s (%d bytes)\n", path, fileSize(path))
			return nil
		},
	}

	c.Flags().BoolVar(&flush, "flush", false, "Keep only the last 50 lines")
	return c
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
