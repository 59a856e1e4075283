package catalog

import "github.com/adcondev/print-sync/internal/printer"

// DefaultEntries is the mapping used when no catalog file is configured.
func DefaultEntries() []Entry {
	return []Entry{
		{Subnet: "192.168.1.0", Printers: specs("Takalfa 4002i", "HP LaserJet Pro")},
		{Subnet: "192.168.0.0", Printers: specs("Canon Pixma MG2525", "Brother HL-L2350DW")},
		{Subnet: "10.0.1.0", Printers: specs("Kyocera 4004i", "Brother HL-L2350DW")},
	}
}

func specs(names ...string) []printer.Spec {
	out := make([]printer.Spec, len(names))
	for i, n := range names {
		out[i] = printer.Spec{Name: n}
	}
	return out
}
