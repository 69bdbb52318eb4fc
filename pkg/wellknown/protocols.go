package wellknown

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"
)

//go:embed well_known.csv
var wellKnownData string

// Kind groups registry entries by the match field they resolve.
type Kind string

const (
	EtherType Kind = "ethertype"
	IPProto   Kind = "ipproto"
	Service   Kind = "service"
)

// ServiceEntry is a transport port bound to its protocol name.
type ServiceEntry struct {
	Protocol string
	Port     uint16
}

var (
	etherTypes = make(map[string]uint16)
	ipProtos   = make(map[string]uint8)
	services   = make(map[string][]ServiceEntry)
)

func init() {
	reader := csv.NewReader(bytes.NewBufferString(wellKnownData))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		name := strings.ToUpper(strings.TrimSpace(record[1]))
		value, err := strconv.ParseUint(record[2], 10, 16)
		if err != nil {
			continue
		}

		switch Kind(record[0]) {
		case EtherType:
			etherTypes[name] = uint16(value)
		case IPProto:
			if value > 0xff {
				continue
			}
			ipProtos[name] = uint8(value)
		case Service:
			proto := ""
			if len(record) > 3 {
				proto = strings.ToLower(strings.TrimSpace(record[3]))
			}
			services[name] = append(services[name], ServiceEntry{Protocol: proto, Port: uint16(value)})
		}
	}

	// Common alias for DNS
	services["DNS"] = services["DOMAIN"]
}

// LookupEtherType returns the ethertype registered under name.
func LookupEtherType(name string) (uint16, bool) {
	v, ok := etherTypes[strings.ToUpper(strings.TrimSpace(name))]
	return v, ok
}

// LookupIPProto returns the IP protocol number registered under name.
func LookupIPProto(name string) (uint8, bool) {
	v, ok := ipProtos[strings.ToUpper(strings.TrimSpace(name))]
	return v, ok
}

// LookupService returns every port/protocol pair known for a service name.
func LookupService(name string) ([]ServiceEntry, bool) {
	entries, ok := services[strings.ToUpper(strings.TrimSpace(name))]
	return entries, ok && len(entries) > 0
}

// LookupPort resolves a service name to a single port. Services registered
// on several protocols share the port number, so the first entry wins.
func LookupPort(name string) (uint16, bool) {
	entries, ok := LookupService(name)
	if !ok {
		return 0, false
	}
	return entries[0].Port, true
}
