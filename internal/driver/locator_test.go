package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const descriptor = "OEMSETUP.INF"

func writeDescriptor(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, descriptor)
	if err := os.WriteFile(path, []byte("[Version]\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocate_PrefersArchitectureFolder(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "192.168.1.0", "HP LaserJet Pro")
	writeDescriptor(t, base)
	want := writeDescriptor(t, filepath.Join(base, "64bit"))

	got, err := NewLocator(root, descriptor, ArchX64).Locate("192.168.1.0", "HP LaserJet Pro")
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if got != want {
		t.Errorf("Locate() = %q; want %q", got, want)
	}
}

func TestLocate_FallsBackToPrinterFolder(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "192.168.1.0", "HP LaserJet Pro")
	want := writeDescriptor(t, base)
	// a folder for another architecture must not be picked
	writeDescriptor(t, filepath.Join(base, "arm64"))

	got, err := NewLocator(root, descriptor, ArchX64).Locate("192.168.1.0", "HP LaserJet Pro")
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if got != want {
		t.Errorf("Locate() = %q; want %q", got, want)
	}
}

func TestLocate_ArchFolderWithoutDescriptorIsMissing(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "10.0.1.0", "Kyocera 4004i")
	writeDescriptor(t, base)
	if err := os.MkdirAll(filepath.Join(base, "32bit"), 0750); err != nil {
		t.Fatal(err)
	}

	_, err := NewLocator(root, descriptor, ArchX86).Locate("10.0.1.0", "Kyocera 4004i")

	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Locate() error = %v; want *MissingError", err)
	}
	if missing.Dir != filepath.Join(base, "32bit") {
		t.Errorf("MissingError.Dir = %q; want the 32bit folder", missing.Dir)
	}
}

func TestLocate_Missing(t *testing.T) {
	root := t.TempDir()

	_, err := NewLocator(root, descriptor, ArchARM64).Locate("192.168.0.0", "Canon Pixma MG2525")
	if !errors.Is(err, ErrDriverMissing) {
		t.Fatalf("Locate() error = %v; want ErrDriverMissing", err)
	}
	var missing *MissingError
	if !errors.As(err, &missing) || missing.Printer != "Canon Pixma MG2525" {
		t.Errorf("Locate() error = %#v; want MissingError for the printer", err)
	}
}

func TestArchitecture(t *testing.T) {
	tests := []struct {
		in     string
		want   Architecture
		folder string
	}{
		{"x64", ArchX64, "64bit"},
		{"amd64", ArchX64, "64bit"},
		{"386", ArchX86, "32bit"},
		{"32bit", ArchX86, "32bit"},
		{"ARM64", ArchARM64, "arm64"},
		{"aarch64", ArchARM64, "arm64"},
	}
	for _, tt := range tests {
		got, err := ParseArchitecture(tt.in)
		if err != nil {
			t.Fatalf("ParseArchitecture(%q) error: %v", tt.in, err)
		}
		if got != tt.want || got.Folder() != tt.folder {
			t.Errorf("ParseArchitecture(%q) = %v (%s); want %v (%s)", tt.in, got, got.Folder(), tt.want, tt.folder)
		}
	}
	if _, err := ParseArchitecture("sparc"); err == nil {
		t.Error("ParseArchitecture(sparc) succeeded; want error")
	}
}

func TestLocate_RejectsNamesEscapingRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "repo")
	// a descriptor sitting next to the repository, reachable via ".."
	writeDescriptor(t, filepath.Join(base, "escaped"))

	loc := NewLocator(root, descriptor, ArchX64)
	for _, name := range []string{"../../escaped", "..", "../../.."} {
		_, err := loc.Locate("10.0.1.0", name)
		if !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Locate(%q) error = %v; want ErrOutsideRoot", name, err)
		}
		if !errors.Is(err, ErrDriverMissing) {
			t.Errorf("Locate(%q) should still report a missing driver, got %v", name, err)
		}
	}
}

func TestWithinRoot(t *testing.T) {
	root := filepath.Join("srv", "printers")
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "10.0.1.0", "HP"), true},
		{filepath.Join(root, "10.0.1.0", "HP v2..final"), true},
		{root, false},
		{filepath.Join(root, "10.0.1.0", "..", ".."), false},
		{filepath.Join(root, "10.0.1.0", "..", "..", "..", "escaped"), false},
		{filepath.Join("srv", "printers-old", "x"), false},
	}
	for _, tt := range tests {
		if got := withinRoot(root, tt.path); got != tt.want {
			t.Errorf("withinRoot(%q) = %v; want %v", tt.path, got, tt.want)
		}
	}
}
