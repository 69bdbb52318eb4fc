package model

import (
	"fmt"
	"strconv"
	"strings"

	"sdn-te/internal/utils"
	"sdn-te/pkg/wellknown"
)

// EtherType is a link-layer protocol selector. In policy files it may be a
// number or a well-known name such as "ipv4" or "arp".
type EtherType uint16

// IPProto is a network-layer protocol selector ("tcp", "udp", 6, ...).
type IPProto uint8

// Port is a transport-layer port; names like "http" are accepted.
type Port uint16

func (e *EtherType) UnmarshalJSON(b []byte) error {
	v, err := decodeNumberOrName(b, 0xffff, func(s string) (uint64, bool) {
		n, ok := wellknown.LookupEtherType(s)
		return uint64(n), ok
	})
	if err != nil {
		return fmt.Errorf("mac_proto: %w", err)
	}
	*e = EtherType(v)
	return nil
}

func (p *IPProto) UnmarshalJSON(b []byte) error {
	v, err := decodeNumberOrName(b, 0xff, func(s string) (uint64, bool) {
		n, ok := wellknown.LookupIPProto(s)
		return uint64(n), ok
	})
	if err != nil {
		return fmt.Errorf("ip_proto: %w", err)
	}
	*p = IPProto(v)
	return nil
}

func (p *Port) UnmarshalJSON(b []byte) error {
	v, err := decodeNumberOrName(b, 0xffff, func(s string) (uint64, bool) {
		n, ok := wellknown.LookupPort(s)
		return uint64(n), ok
	})
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	*p = Port(v)
	return nil
}

func decodeNumberOrName(b []byte, max uint64, lookup func(string) (uint64, bool)) (uint64, error) {
	raw := strings.TrimSpace(string(b))
	if s, err := strconv.Unquote(raw); err == nil {
		if n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64); err == nil {
			raw = strconv.FormatUint(n, 10)
		} else if n, ok := lookup(s); ok {
			return n, nil
		} else {
			return 0, fmt.Errorf("unknown name %q", s)
		}
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %s", raw)
	}
	if n > max {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}

// Ethertypes of the network layers the match selectors cover.
const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeIPv6 EtherType = 0x86dd
)

// IP protocols whose flows carry transport ports.
const (
	IPProtoTCP  IPProto = 6
	IPProtoUDP  IPProto = 17
	IPProtoSCTP IPProto = 132
)

// MatchPattern selects the traffic an objective applies to. Empty strings and
// nil pointers are wildcards.
type MatchPattern struct {
	SrcMAC   string     `json:"src_mac,omitempty"`
	DstMAC   string     `json:"dst_mac,omitempty"`
	MACProto *EtherType `json:"mac_proto,omitempty"`
	IPProto  *IPProto   `json:"ip_proto,omitempty"`
	SrcIP    string     `json:"src_ip,omitempty"`
	DstIP    string     `json:"dst_ip,omitempty"`
	SrcPort  *Port      `json:"src_port,omitempty"`
	DstPort  *Port      `json:"dst_port,omitempty"`
	InPort   *uint32    `json:"in_port,omitempty"`
}

// Reverse returns the pattern matching the opposite direction of the same
// flow. Source and destination selectors are swapped, protocol selectors are
// kept and the ingress port is dropped since it only holds for one direction.
func (m MatchPattern) Reverse() MatchPattern {
	return MatchPattern{
		SrcMAC:   m.DstMAC,
		DstMAC:   m.SrcMAC,
		MACProto: m.MACProto,
		IPProto:  m.IPProto,
		SrcIP:    m.DstIP,
		DstIP:    m.SrcIP,
		SrcPort:  m.DstPort,
		DstPort:  m.SrcPort,
	}
}

// WithInPort returns a copy of the pattern constrained to the given ingress port.
func (m MatchPattern) WithInPort(port uint32) MatchPattern {
	m.InPort = &port
	return m
}

// Validate checks the syntax of the address selectors.
func (m MatchPattern) Validate() error {
	for field, mac := range map[string]string{"src_mac": m.SrcMAC, "dst_mac": m.DstMAC} {
		if mac == "" {
			continue
		}
		if _, err := utils.NormalizeMAC(mac); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
		}
	}
	families := make(map[bool]struct{})
	for field, ip := range map[string]string{"src_ip": m.SrcIP, "dst_ip": m.DstIP} {
		if ip == "" {
			continue
		}
		prefix, err := utils.ParsePrefix(ip)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
		}
		families[prefix.IP.To4() == nil] = struct{}{}
	}
	if len(families) > 1 {
		return fmt.Errorf("%w: src_ip and dst_ip mix IPv4 and IPv6", ErrValidation)
	}

	if m.MACProto != nil && (m.IPProto != nil || len(families) > 0) {
		switch *m.MACProto {
		case EtherTypeIPv4:
			if _, v6 := families[true]; v6 {
				return fmt.Errorf("%w: IPv6 address with mac_proto ipv4", ErrValidation)
			}
		case EtherTypeIPv6:
			if _, v4 := families[false]; v4 {
				return fmt.Errorf("%w: IPv4 address with mac_proto ipv6", ErrValidation)
			}
		default:
			return fmt.Errorf("%w: IP selectors need an IP mac_proto, got 0x%04x", ErrValidation, uint16(*m.MACProto))
		}
	}

	if m.SrcPort != nil || m.DstPort != nil {
		if m.IPProto == nil {
			return fmt.Errorf("%w: src_port/dst_port require ip_proto", ErrValidation)
		}
		if !HasTransportPorts(*m.IPProto) {
			return fmt.Errorf("%w: ip_proto %d has no transport ports", ErrValidation, uint8(*m.IPProto))
		}
	}
	return nil
}

// HasTransportPorts reports whether flows of protocol p carry port numbers
// the switches can match on.
func HasTransportPorts(p IPProto) bool {
	switch p {
	case IPProtoTCP, IPProtoUDP, IPProtoSCTP:
		return true
	}
	return false
}

// canonical returns the pattern with MACs and IP selectors in the form the
// switches store them, so differently spelled selectors compare equal.
// Values that do not parse are kept as written.
func (m MatchPattern) canonical() MatchPattern {
	if mac, err := utils.NormalizeMAC(m.SrcMAC); err == nil {
		m.SrcMAC = mac
	}
	if mac, err := utils.NormalizeMAC(m.DstMAC); err == nil {
		m.DstMAC = mac
	}
	if p, err := utils.ParsePrefix(m.SrcIP); err == nil {
		m.SrcIP = utils.PrefixString(p)
	}
	if p, err := utils.ParsePrefix(m.DstIP); err == nil {
		m.DstIP = utils.PrefixString(p)
	}
	return m
}

// String renders the non-wildcard fields in a stable order.
func (m MatchPattern) String() string {
	var parts []string
	add := func(k, v string) { parts = append(parts, k+"="+v) }
	if m.InPort != nil {
		add("in_port", strconv.FormatUint(uint64(*m.InPort), 10))
	}
	if m.SrcMAC != "" {
		add("src_mac", m.SrcMAC)
	}
	if m.DstMAC != "" {
		add("dst_mac", m.DstMAC)
	}
	if m.MACProto != nil {
		add("mac_proto", fmt.Sprintf("0x%04x", uint16(*m.MACProto)))
	}
	if m.IPProto != nil {
		add("ip_proto", strconv.Itoa(int(*m.IPProto)))
	}
	if m.SrcIP != "" {
		add("src_ip", m.SrcIP)
	}
	if m.DstIP != "" {
		add("dst_ip", m.DstIP)
	}
	if m.SrcPort != nil {
		add("src_port", strconv.Itoa(int(*m.SrcPort)))
	}
	if m.DstPort != nil {
		add("dst_port", strconv.Itoa(int(*m.DstPort)))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, ",")
}
