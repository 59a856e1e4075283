package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/adcondev/print-sync/internal/daemon"
	"github.com/adcondev/print-sync/internal/network"
	"github.com/adcondev/print-sync/internal/printer"
	"github.com/adcondev/print-sync/internal/reconcile"
	workererrors "github.com/adcondev/print-sync/internal/worker/errors"
)

var (
	addStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	delStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func reconcileCmd(configPath *string) *cobra.Command {
	var subnet string
	var dryRun bool

	c := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := daemon.Setup(daemon.ResolveConfigPath(*configPath))
			if err != nil {
				return err
			}

			var key printer.SubnetKey
			if subnet != "" {
				key, err = network.ParseKey(subnet)
			} else {
				key, err = comps.Detector.Detect(cmd.Context())
			}
			if err != nil {
				return err
			}

			if dryRun {
				plan, err := comps.Reconciler.Plan(cmd.Context(), key)
				if err != nil {
					return err
				}
				fmt.Println(renderPlan(plan))
				return nil
			}

			report, err := comps.Reconciler.Reconcile(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Println(renderReport(report))
			if n := len(report.Failures()); n > 0 {
				return fmt.Errorf("%d action(s) failed", n)
			}
			return nil
		},
	}

	c.Flags().StringVar(&subnet, "subnet", "", "Reconcile for this subnet instead of the detected one")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Only print what would change")
	return c
}

func renderPlan(p reconcile.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subnet %s: %d desired, %d installed\n", p.Subnet, len(p.Desired), len(p.Installed))
	if p.Empty() {
		b.WriteString(skipStyle.Render("nothing to do"))
		return b.String()
	}
	for _, s := range p.Install {
		fmt.Fprintln(&b, addStyle.Render("+ "+s.Name))
	}
	for _, name := range p.Remove {
		fmt.Fprintln(&b, delStyle.Render("- "+name))
	}
	for _, name := range p.Ignored {
		fmt.Fprintln(&b, skipStyle.Render("  "+name+" (not managed)"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderReport(r reconcile.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pass %s for %s in %v\n", r.ID, r.Plan.Subnet, r.Duration().Round(time.Millisecond))
	if len(r.Outcomes) == 0 {
		b.WriteString(skipStyle.Render("nothing to do"))
		return b.String()
	}
	for _, o := range r.Outcomes {
		sign, style := "+", addStyle
		if o.Action == reconcile.ActionRemove {
			sign, style = "-", delStyle
		}
		line := sign + " " + o.Printer
		if !o.OK() {
			line += "  " + workererrors.Describe(o.Err)
			style = skipStyle
		}
		fmt.Fprintln(&b, style.Render(line))
	}
	return strings.TrimRight(b.String(), "\n")
}
