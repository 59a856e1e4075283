package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adcondev/print-sync/internal/daemon"
	"github.com/adcondev/print-sync/internal/driver"
)

func bootstrapCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the driver folder for every catalog printer",
		RunE: func(_ *cobra.Command, _ []string) error {
			comps, err := daemon.Setup(daemon.ResolveConfigPath(*configPath))
			if err != nil {
				return err
			}

			res, err := driver.Bootstrap(comps.Env.DriverRoot, comps.Catalog)
			for _, dir := range res.Created {
				fmt.Println("created", dir)
			}
			fmt.Printf("%d created, %d already present under %s\n", len(res.Created), res.Existing, comps.Env.DriverRoot)
			return err
		},
	}
}
