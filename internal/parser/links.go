package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sdn-te/internal/topology"
)

// ParseLinkCSV reads a link list. The header names the columns; src and dst
// are required, delay, bandwidth (or bw), src_port and dst_port are optional.
// A row whose src or dst is a MAC address attaches that host to the other
// endpoint.
func ParseLinkCSV(r io.Reader, directed bool) (*topology.Topology, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	colMap := make(map[string]int)
	for i, colName := range header {
		colMap[strings.ToLower(strings.TrimSpace(colName))] = i
	}
	for _, required := range []string{"src", "dst"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("could not find '%s' column in link list", required)
		}
	}
	if _, ok := colMap["bandwidth"]; !ok {
		if i, ok := colMap["bw"]; ok {
			colMap["bandwidth"] = i
		}
	}

	topo := topology.New(directed)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		field := func(name string) string {
			if i, ok := colMap[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		e := edgeSpec{a: field("src"), b: field("dst")}
		if e.delay, err = parseFloatField(field("delay")); err != nil {
			return nil, fmt.Errorf("line %d: delay: %w", line, err)
		}
		if e.bw, err = parseFloatField(field("bandwidth")); err != nil {
			return nil, fmt.Errorf("line %d: bandwidth: %w", line, err)
		}
		if e.aPort, err = parsePortField(field("src_port")); err != nil {
			return nil, fmt.Errorf("line %d: src_port: %w", line, err)
		}
		if e.bPort, err = parsePortField(field("dst_port")); err != nil {
			return nil, fmt.Errorf("line %d: dst_port: %w", line, err)
		}
		if err := addEdge(topo, e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return topo, nil
}

func parseFloatField(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parsePortField(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}
