//go:build linux

package network

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// routeSource asks the kernel which source address it would use to reach
// an external host.
func routeSource(_ context.Context) (net.IP, error) {
	routes, err := netlink.RouteGet(net.ParseIP(probeAddr))
	if err != nil {
		return nil, fmt.Errorf("route lookup: %w", err)
	}
	for _, r := range routes {
		if r.Src != nil && r.Src.To4() != nil {
			return r.Src.To4(), nil
		}
	}
	return nil, errors.New("route lookup: no IPv4 source address")
}
