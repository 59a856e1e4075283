// Package network derives the coarse subnet key PrintSync uses to decide
// which printers belong on the current network.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/adcondev/print-sync/internal/printer"
)

// ErrNetworkUnavailable is returned when the host has no usable IPv4 address.
var ErrNetworkUnavailable = errors.New("network unavailable")

// probeAddr is only used to select a route; nothing is sent to it.
const probeAddr = "192.0.2.1"

// Detector resolves the current subnet key.
type Detector interface {
	Detect(ctx context.Context) (printer.SubnetKey, error)
}

// Resolver returns the host's primary IPv4 address.
type Resolver func(ctx context.Context) (net.IP, error)

// HostDetector derives the subnet key from the host's primary IPv4 address.
// Every call queries the OS again; nothing is cached.
type HostDetector struct {
	resolvers []Resolver
}

// NewHostDetector returns a detector trying the platform route lookup, then
// hostname resolution, then interface enumeration.
func NewHostDetector() *HostDetector {
	return &HostDetector{
		resolvers: []Resolver{routeSource, hostnameAddr, interfaceAddr},
	}
}

// NewDetectorWithResolvers is used by tests and tooling to inject resolvers.
func NewDetectorWithResolvers(resolvers ...Resolver) *HostDetector {
	return &HostDetector{resolvers: resolvers}
}

// Detect returns the subnet key of the first resolver yielding a usable address.
func (d *HostDetector) Detect(ctx context.Context) (printer.SubnetKey, error) {
	var errs []error
	for _, resolve := range d.resolvers {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ip, err := resolve(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		key, err := FromIP(ip)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return key, nil
	}
	if len(errs) == 0 {
		return "", ErrNetworkUnavailable
	}
	return "", fmt.Errorf("%w: %w", ErrNetworkUnavailable, errors.Join(errs...))
}

// FromIP zeroes the last octet of an IPv4 address, e.g. 10.0.1.37 -> "10.0.1.0".
func FromIP(ip net.IP) (printer.SubnetKey, error) {
	v4 := ip.To4()
	if v4 == nil {
		return "", fmt.Errorf("%w: %v is not IPv4", ErrNetworkUnavailable, ip)
	}
	if !usable(v4) {
		return "", fmt.Errorf("%w: %v is not routable", ErrNetworkUnavailable, ip)
	}
	return printer.SubnetKey(fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])), nil
}

// ParseKey validates a configured subnet key.
func ParseKey(s string) (printer.SubnetKey, error) {
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return "", fmt.Errorf("invalid subnet key %q: not an IPv4 address", s)
	}
	if ip[3] != 0 {
		return "", fmt.Errorf("invalid subnet key %q: last octet must be 0", s)
	}
	return printer.SubnetKey(ip.String()), nil
}

func usable(ip net.IP) bool {
	return !ip.IsLoopback() && !ip.IsUnspecified() && !ip.IsLinkLocalUnicast()
}

// hostnameAddr resolves the machine's own hostname.
func hostnameAddr(ctx context.Context) (net.IP, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil && usable(v4) {
			return v4, nil
		}
	}
	return nil, fmt.Errorf("resolve %s: no IPv4 address", host)
}

// interfaceAddr picks the first IPv4 address of an up, non-loopback interface.
func interfaceAddr(_ context.Context) (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if v4 := ipNet.IP.To4(); v4 != nil && usable(v4) {
				return v4, nil
			}
		}
	}
	return nil, errors.New("no interface with an IPv4 address")
}
