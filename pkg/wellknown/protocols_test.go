package wellknown

import (
	"testing"
)

func TestLookupServiceReturnsDNSAliases(t *testing.T) {
	// DNS is an alias of "domain" and must resolve on both transports.
	entries, ok := LookupService("dns")
	if !ok {
		t.Fatalf("expected dns to be present in well-known service registry")
	}
	if !containsPort(entries, 53, "tcp") || !containsPort(entries, 53, "udp") {
		t.Fatalf("expected DNS to include port 53 over tcp and udp, got %#v", entries)
	}
}

func TestLookupEtherTypeAndIPProto(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want uint16
	}{
		{name: "ipv4", kind: EtherType, want: 0x0800},
		{name: "ARP", kind: EtherType, want: 0x0806},
		{name: " ipv6 ", kind: EtherType, want: 0x86dd},
		{name: "tcp", kind: IPProto, want: 6},
		{name: "UDP", kind: IPProto, want: 17},
		{name: "icmp", kind: IPProto, want: 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.name, func(t *testing.T) {
			var got uint16
			var ok bool
			switch tt.kind {
			case EtherType:
				got, ok = LookupEtherType(tt.name)
			case IPProto:
				var p uint8
				p, ok = LookupIPProto(tt.name)
				got = uint16(p)
			}
			if !ok || got != tt.want {
				t.Errorf("lookup %q: got %d (ok=%v), want %d", tt.name, got, ok, tt.want)
			}
		})
	}
}

func TestLookupPortReturnsFalseForUnknown(t *testing.T) {
	if _, ok := LookupPort("definitely-not-a-service"); ok {
		t.Fatalf("expected unknown service to return ok=false")
	}
	if port, ok := LookupPort("http"); !ok || port != 80 {
		t.Fatalf("expected http to resolve to 80, got %d (ok=%v)", port, ok)
	}
}

func containsPort(entries []ServiceEntry, port uint16, protocol string) bool {
	for _, entry := range entries {
		if entry.Port == port && entry.Protocol == protocol {
			return true
		}
	}
	return false
}
