package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adcondev/print-sync/internal/catalog"
	"github.com/adcondev/print-sync/internal/printer"
)

// DefaultFileName is looked up next to the executable when --config is unset.
const DefaultFileName = "printsync.yaml"

// File is the optional YAML configuration. Zero values keep the
// environment defaults.
type File struct {
	ListenAddr     string        `yaml:"listen_addr"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	CommandTimeout *Duration     `yaml:"command_timeout"`
	RemoveScope    string        `yaml:"remove_scope"`
	DriverRoot     string        `yaml:"driver_root"`
	DescriptorName string        `yaml:"descriptor_name"`
	Architecture   string        `yaml:"architecture"`
	Verbose        *bool         `yaml:"verbose"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Catalog        []SubnetEntry `yaml:"catalog"`
}

// Duration distinguishes "0s" (explicitly disabled) from an absent key.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses Go duration strings.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Duration = v
	return nil
}

// SubnetEntry is one catalog item in the file.
type SubnetEntry struct {
	Subnet   string         `yaml:"subnet"`
	Printers []PrinterEntry `yaml:"printers"`
}

// PrinterEntry accepts a bare name or a {name, model, port} mapping.
type PrinterEntry printer.Spec

// UnmarshalYAML implements the two accepted forms.
func (p *PrinterEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&p.Name)
	case yaml.MappingNode:
		var spec printer.Spec
		if err := node.Decode(&spec); err != nil {
			return err
		}
		*p = PrinterEntry(spec)
		return nil
	}
	return fmt.Errorf("line %d: printer must be a name or a mapping", node.Line)
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &f, nil
}

// Apply overlays non-zero file settings onto env.
func (f *File) Apply(env Environment) Environment {
	if f == nil {
		return env
	}
	if f.ListenAddr != "" {
		env.ListenAddr = f.ListenAddr
	}
	if f.PollInterval > 0 {
		env.PollInterval = f.PollInterval
	}
	if f.CommandTimeout != nil {
		env.CommandTimeout = f.CommandTimeout.Duration
	}
	if f.RemoveScope != "" {
		env.RemoveScope = f.RemoveScope
	}
	if f.DriverRoot != "" {
		env.DriverRoot = f.DriverRoot
	}
	if f.DescriptorName != "" {
		env.DescriptorName = f.DescriptorName
	}
	if f.Architecture != "" {
		env.Architecture = f.Architecture
	}
	if f.Verbose != nil {
		env.Verbose = *f.Verbose
	}
	if len(f.AllowedOrigins) > 0 {
		env.AllowedOrigins = f.AllowedOrigins
	}
	return env
}

// CatalogEntries converts the file catalog. A file without a catalog
// section yields the built-in entries.
func (f *File) CatalogEntries() []catalog.Entry {
	if f == nil || len(f.Catalog) == 0 {
		return catalog.DefaultEntries()
	}
	out := make([]catalog.Entry, 0, len(f.Catalog))
	for _, s := range f.Catalog {
		e := catalog.Entry{Subnet: printer.SubnetKey(strings.TrimSpace(s.Subnet))}
		for _, p := range s.Printers {
			e.Printers = append(e.Printers, printer.Spec(p))
		}
		out = append(out, e)
	}
	return out
}
