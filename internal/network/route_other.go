//go:build !linux

package network

import (
	"context"
	"fmt"
	"net"
)

// routeSource connects an unbound UDP socket so the OS picks the outbound
// interface. UDP connect sends no packets.
func routeSource(ctx context.Context) (net.IP, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp4", net.JoinHostPort(probeAddr, "9"))
	if err != nil {
		return nil, fmt.Errorf("route lookup: %w", err)
	}
	defer func() { _ = conn.Close() }()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("route lookup: unexpected local address %v", conn.LocalAddr())
	}
	return addr.IP, nil
}
