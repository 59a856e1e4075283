package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adcondev/print-sync/internal/daemon"
	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/presence"
)

func showCmd(configPath *string) *cobra.Command {
	var subnet string
	var asJSON bool

	c := &cobra.Command{
		Use:   "show",
		Short: "Show the printers expected on the current network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := daemon.Setup(daemon.ResolveConfigPath(*configPath))
			if err != nil {
				return err
			}

			var view presence.View
			if subnet != "" {
				key, err := network.ParseKey(subnet)
				if err != nil {
					return err
				}
				view = comps.Presence.For(cmd.Context(), key)
			} else {
				if view, err = comps.Presence.Current(cmd.Context()); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			fmt.Println(presence.Render(view))
			return nil
		},
	}

	c.Flags().StringVar(&subnet, "subnet", "", "Show another subnet instead of the detected one (e.g. 192.168.1.0)")
	c.Flags().BoolVar(&asJSON, "json", false, "Print the view as JSON")
	return c
}
