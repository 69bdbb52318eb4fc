package utils

import (
	"fmt"
	"net"
	"strings"
)

// ParsePrefix accepts either a CIDR or a bare address. A bare address is
// returned as a host prefix (/32 or /128).
func ParsePrefix(s string) (*net.IPNet, error) {
	s = strings.TrimSpace(s)
	if _, ipnet, err := net.ParseCIDR(s); err == nil {
		return ipnet, nil
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address or prefix %q", s)
	}
	mask := net.CIDRMask(32, 32)
	if ip.To4() == nil {
		mask = net.CIDRMask(128, 128)
	} else {
		ip = ip.To4()
	}
	return &net.IPNet{IP: ip, Mask: mask}, nil
}

// IsHostPrefix reports whether the prefix covers a single address.
func IsHostPrefix(ipnet *net.IPNet) bool {
	ones, bits := ipnet.Mask.Size()
	return ones == bits
}

// PrefixString renders host prefixes as bare addresses and other prefixes
// in CIDR form.
func PrefixString(p *net.IPNet) string {
	if IsHostPrefix(p) {
		return p.IP.String()
	}
	return p.String()
}

// NormalizeMAC parses a link-layer address and returns its canonical
// lower-case colon form.
func NormalizeMAC(s string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return hw.String(), nil
}
