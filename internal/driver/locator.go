// Package driver resolves printer driver descriptors from the local driver
// repository and prepares its folder skeleton.
//
// Repository layout:
//
//	<root>/<subnet>/<printer>/[<arch folder>/]<descriptor>
package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adcondev/print-sync/internal/printer"
)

// ErrDriverMissing marks a printer whose descriptor is not in the repository.
var ErrDriverMissing = errors.New("driver missing")

// ErrOutsideRoot marks a printer folder that would resolve outside the
// repository root.
var ErrOutsideRoot = errors.New("path outside driver root")

// MissingError reports where the descriptor was expected.
type MissingError struct {
	Printer string
	Dir     string
	Err     error
}

func (e *MissingError) Error() string {
	msg := fmt.Sprintf("driver not found for printer %s in %s", e.Printer, e.Dir)
	if e.Err != nil && !os.IsNotExist(e.Err) {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *MissingError) Unwrap() error { return e.Err }

// Is matches ErrDriverMissing.
func (e *MissingError) Is(target error) bool { return target == ErrDriverMissing }

// Locator finds driver descriptors. It keeps no cache; every call hits the
// filesystem so operators can drop drivers in while the service runs.
type Locator struct {
	root       string
	descriptor string
	arch       Architecture
}

// NewLocator creates a locator over root using the fixed descriptor file name.
func NewLocator(root, descriptor string, arch Architecture) *Locator {
	return &Locator{root: root, descriptor: descriptor, arch: arch}
}

// Root returns the repository root
func (l *Locator) Root() string { return l.root }

// Architecture returns the architecture used for folder selection
func (l *Locator) Architecture() Architecture { return l.arch }

// PrinterDir returns <root>/<subnet>/<printer>.
func (l *Locator) PrinterDir(subnet printer.SubnetKey, name string) string {
	return filepath.Join(l.root, string(subnet), name)
}

// Dir returns the folder the descriptor is read from: the architecture
// subfolder when it exists, the printer folder otherwise.
func (l *Locator) Dir(subnet printer.SubnetKey, name string) string {
	base := l.PrinterDir(subnet, name)
	archDir := filepath.Join(base, l.arch.Folder())
	if info, err := os.Stat(archDir); err == nil && info.IsDir() {
		return archDir
	}
	return base
}

// Locate returns the descriptor path or a *MissingError.
func (l *Locator) Locate(subnet printer.SubnetKey, name string) (string, error) {
	if base := l.PrinterDir(subnet, name); !withinRoot(l.root, base) {
		return "", &MissingError{Printer: name, Dir: base, Err: ErrOutsideRoot}
	}
	dir := l.Dir(subnet, name)
	path := filepath.Join(dir, l.descriptor)

	info, err := os.Stat(path)
	if err != nil {
		return "", &MissingError{Printer: name, Dir: dir, Err: err}
	}
	if info.IsDir() {
		return "", &MissingError{Printer: name, Dir: dir, Err: fmt.Errorf("%s is a directory", path)}
	}
	return path, nil
}

// withinRoot reports whether path is a strict descendant of root.
func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
