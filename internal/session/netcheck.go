package session

import (
	"net"
	"strings"
)

// Carrier-grade NAT range, also used by WARP and Tailscale.
var cgnatBlock = &net.IPNet{IP: net.IPv4(100, 64, 0, 0).To4(), Mask: net.CIDRMask(10, 32)}

var tunnelPrefixes = []string{"tun", "tap", "wg", "ppp", "warp", "utun"}

// detectTunnel reports whether direct candidates are likely to fail. Tests
// replace it.
var detectTunnel = behindTunnel

// behindTunnel scans the up, non-loopback interfaces for a VPN adapter or a
// CGNAT address.
func behindTunnel() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			addrs = nil
		}
		var ips []net.IP
		for _, addr := range addrs {
			switch v := addr.(type) {
			case *net.IPNet:
				ips = append(ips, v.IP)
			case *net.IPAddr:
				ips = append(ips, v.IP)
			}
		}
		if tunnelled(iface.Name, ips) {
			return true
		}
	}
	return false
}

func tunnelled(name string, ips []net.IP) bool {
	name = strings.ToLower(name)
	for _, p := range tunnelPrefixes {
		if strings.Contains(name, p) {
			return true
		}
	}
	for _, ip := range ips {
		if cgnatBlock.Contains(ip) {
			return true
		}
	}
	return false
}
