package presence

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	green = lipgloss.Color("76")
	red   = lipgloss.Color("204")
	dim   = lipgloss.Color("243")

	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(dim)
	okStyle     = lipgloss.NewStyle().Foreground(green)
	missStyle   = lipgloss.NewStyle().Foreground(red)
	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 2)
)

// Render draws the printer list window for a terminal.
func Render(v View) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Available Printers"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Network %s", v.Subnet)))
	b.WriteString("\n\n")

	switch {
	case !v.Known:
		b.WriteString(mutedStyle.Render("No printers configured for this network"))
	case len(v.Printers) == 0:
		b.WriteString(mutedStyle.Render("This network expects no printers"))
	default:
		for i, p := range v.Printers {
			mark := missStyle.Render("○")
			state := mutedStyle.Render("not installed")
			if p.Installed {
				mark = okStyle.Render("●")
				state = mutedStyle.Render("installed")
			}
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s %s  %s", mark, p.Name, state)
		}
	}

	if v.ListErr != nil {
		b.WriteString("\n\n")
		b.WriteString(missStyle.Render("! installed printers unavailable: " + v.ListErr.Error()))
	}

	return windowStyle.Render(b.String())
}
