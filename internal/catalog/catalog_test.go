package catalog

import (
	"reflect"
	"testing"

	"github.com/adcondev/print-sync/internal/printer"
)

func TestNew_DefaultEntries(t *testing.T) {
	c, err := New(DefaultEntries())
	if err != nil {
		t.Fatalf("New(DefaultEntries()) error: %v", err)
	}

	want := []printer.SubnetKey{"192.168.1.0", "192.168.0.0", "10.0.1.0"}
	if got := c.Subnets(); !reflect.DeepEqual(got, want) {
		t.Errorf("Subnets() = %v; want %v", got, want)
	}

	// Brother HL-L2350DW is shared by two subnets
	if c.Len() != 5 {
		t.Errorf("Len() = %d; want 5", c.Len())
	}
	if c.SubnetCount() != 3 {
		t.Errorf("SubnetCount() = %d; want 3", c.SubnetCount())
	}
	if !c.Manages("Brother HL-L2350DW") || c.Manages("Microsoft Print to PDF") {
		t.Error("Manages() returned unexpected membership")
	}
}

func TestCatalog_PrintersUnknownSubnet(t *testing.T) {
	c, err := New(DefaultEntries())
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Printers("172.16.0.0"); len(got) != 0 {
		t.Errorf("Printers(unknown) = %v; want empty", got)
	}
	if c.Has("172.16.0.0") {
		t.Error("Has(unknown) = true")
	}
}

func TestCatalog_AccessorsReturnCopies(t *testing.T) {
	c, err := New(DefaultEntries())
	if err != nil {
		t.Fatal(err)
	}

	got := c.Printers("192.168.1.0")
	got[0].Name = "mutated"
	names := c.Names("192.168.1.0")
	names[1] = "mutated"

	if want := []string{"Takalfa 4002i", "HP LaserJet Pro"}; !reflect.DeepEqual(c.Names("192.168.1.0"), want) {
		t.Errorf("catalog mutated through accessor: %v", c.Names("192.168.1.0"))
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr bool
	}{
		{
			name:    "Valid",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs("A", "B")}},
		},
		{
			name:    "Host address instead of network",
			entries: []Entry{{Subnet: "10.1.2.7", Printers: specs("A")}},
			wantErr: true,
		},
		{
			name:    "Not an address",
			entries: []Entry{{Subnet: "office", Printers: specs("A")}},
			wantErr: true,
		},
		{
			name:    "Duplicate printer in subnet",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs("A", "A")}},
			wantErr: true,
		},
		{
			name: "Duplicate across repeated subnet entries",
			entries: []Entry{
				{Subnet: "10.1.2.0", Printers: specs("A")},
				{Subnet: "10.1.2.0", Printers: specs("A")},
			},
			wantErr: true,
		},
		{
			name:    "Blank printer name",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs("  ")}},
			wantErr: true,
		},
		{
			name:    "Parent directory name",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs("../../escaped")}},
			wantErr: true,
		},
		{
			name:    "Dot dot",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs("..")}},
			wantErr: true,
		},
		{
			name:    "Dot",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs(".")}},
			wantErr: true,
		},
		{
			name:    "Backslash separator",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs(`..\outside`)}},
			wantErr: true,
		},
		{
			name:    "Forward slash separator",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs("floor/2")}},
			wantErr: true,
		},
		{
			name:    "Dots inside a name are fine",
			entries: []Entry{{Subnet: "10.1.2.0", Printers: specs("HP v2.1..final")}},
		},
		{
			name:    "Empty subnet entry is allowed",
			entries: []Entry{{Subnet: "10.1.3.0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_MergesRepeatedSubnet(t *testing.T) {
	c, err := New([]Entry{
		{Subnet: "10.1.2.0", Printers: specs("A")},
		{Subnet: "10.9.9.0", Printers: specs("Z")},
		{Subnet: "10.1.2.0", Printers: specs("B")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Names("10.1.2.0"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Names() = %v; want [A B]", got)
	}
	if got := len(c.Entries()); got != 2 {
		t.Errorf("len(Entries()) = %d; want 2", got)
	}
}
