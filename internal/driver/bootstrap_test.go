package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adcondev/print-sync/internal/catalog"
	"github.com/adcondev/print-sync/internal/printer"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Entry{
		{Subnet: "192.168.1.0", Printers: []printer.Spec{{Name: "Takalfa 4002i"}, {Name: "HP LaserJet Pro"}}},
		{Subnet: "10.0.1.0", Printers: []printer.Spec{{Name: "Kyocera 4004i"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestBootstrap_CreatesTreeIdempotently(t *testing.T) {
	root := filepath.Join(t.TempDir(), "printers")
	c := testCatalog(t)

	res, err := Bootstrap(root, c)
	if err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	if len(res.Created) != 3 {
		t.Errorf("Created = %v; want 3 folders", res.Created)
	}
	for _, dir := range []string{
		filepath.Join(root, "192.168.1.0", "Takalfa 4002i"),
		filepath.Join(root, "192.168.1.0", "HP LaserJet Pro"),
		filepath.Join(root, "10.0.1.0", "Kyocera 4004i"),
	} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}

	res, err = Bootstrap(root, c)
	if err != nil {
		t.Fatalf("second Bootstrap() error: %v", err)
	}
	if len(res.Created) != 0 || res.Existing != 3 {
		t.Errorf("second Bootstrap() = %+v; want nothing created", res)
	}
}

func TestBootstrap_ContinuesPastFailures(t *testing.T) {
	root := t.TempDir()
	// a file where a subnet folder should be
	if err := os.WriteFile(filepath.Join(root, "192.168.1.0"), nil, 0600); err != nil {
		t.Fatal(err)
	}

	res, err := Bootstrap(root, testCatalog(t))
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("Bootstrap() error = %v; want ErrFilesystem", err)
	}
	if len(res.Created) != 1 || res.Created[0] != filepath.Join(root, "10.0.1.0", "Kyocera 4004i") {
		t.Errorf("Created = %v; want only the 10.0.1.0 printer", res.Created)
	}
}
