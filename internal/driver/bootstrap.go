package driver

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adcondev/print-sync/internal/catalog"
)

// ErrFilesystem marks a bootstrap failure.
var ErrFilesystem = errors.New("filesystem error")

// BootstrapError reports a directory that could not be created.
type BootstrapError struct {
	Path string
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("create %s: %v", e.Path, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// Is matches ErrFilesystem.
func (e *BootstrapError) Is(target error) bool { return target == ErrFilesystem }

// BootstrapResult lists the directories created by Bootstrap.
type BootstrapResult struct {
	Created  []string
	Existing int
}

// Bootstrap ensures root and one folder per (subnet, printer) exist.
// A failing folder does not stop the others; all failures are joined.
// Descriptor files are never created.
func Bootstrap(root string, c *catalog.Catalog) (BootstrapResult, error) {
	var (
		res  BootstrapResult
		errs []error
	)

	if _, err := ensureDir(root); err != nil {
		return res, &BootstrapError{Path: root, Err: err}
	}

	for _, entry := range c.Entries() {
		subnetDir := filepath.Join(root, string(entry.Subnet))
		if _, err := ensureDir(subnetDir); err != nil {
			errs = append(errs, &BootstrapError{Path: subnetDir, Err: err})
			continue
		}
		for _, p := range entry.Printers {
			dir := filepath.Join(subnetDir, p.Name)
			if !withinRoot(root, dir) {
				errs = append(errs, &BootstrapError{Path: dir, Err: ErrOutsideRoot})
				continue
			}
			created, err := ensureDir(dir)
			switch {
			case err != nil:
				errs = append(errs, &BootstrapError{Path: dir, Err: err})
			case created:
				res.Created = append(res.Created, dir)
				log.Printf("[BOOTSTRAP] 📁 Created folder for printer: %s", dir)
			default:
				res.Existing++
			}
		}
	}

	return res, errors.Join(errs...)
}

func ensureDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", path)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.MkdirAll(path, 0750); err != nil {
		return false, err
	}
	return true, nil
}
