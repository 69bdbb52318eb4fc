package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"sdn-te/internal/model"
	"sdn-te/internal/topology"
	"sdn-te/internal/utils"
)

// TopologyFile loads a topology snapshot from disk on every Load call.
type TopologyFile struct {
	Path string
	// Format overrides detection from the file extension.
	Format Format
	// Directed forces a directed graph for formats that do not declare it
	// (CSV). GraphML and YAML/JSON documents carry their own flag.
	Directed bool
}

// Load reads and parses the file.
func (f *TopologyFile) Load(ctx context.Context) (*topology.Topology, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format := f.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(f.Path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file: %w", err)
	}

	var topo *topology.Topology
	switch format {
	case FormatGraphML:
		topo, err = ParseGraphML(bytes.NewReader(data))
	case FormatCSV:
		topo, err = ParseLinkCSV(bytes.NewReader(data), f.Directed)
	case FormatJSON, FormatYAML:
		topo, err = ParseTopologyDocument(data)
	default:
		err = fmt.Errorf("unsupported topology format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("topology %s: %w", f.Path, err)
	}
	return topo, nil
}

// topologyDocument is the YAML/JSON topology layout.
type topologyDocument struct {
	Directed bool             `json:"directed"`
	Switches []model.SwitchID `json:"switches"`
	Links    []linkDocument   `json:"links"`
	Hosts    []hostDocument   `json:"hosts"`
}

type linkDocument struct {
	Src       model.SwitchID `json:"src"`
	Dst       model.SwitchID `json:"dst"`
	Delay     float64        `json:"delay"`
	Bandwidth float64        `json:"bandwidth"`
	BW        float64        `json:"bw"`
	SrcPort   uint32         `json:"src_port"`
	DstPort   uint32         `json:"dst_port"`
}

type hostDocument struct {
	MAC    string         `json:"mac"`
	Switch model.SwitchID `json:"switch"`
	Port   uint32         `json:"port"`
}

// ParseTopologyDocument decodes a YAML or JSON topology document.
func ParseTopologyDocument(data []byte) (*topology.Topology, error) {
	var doc topologyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode topology: %w", err)
	}

	topo := topology.New(doc.Directed)
	for _, sw := range doc.Switches {
		if err := topo.AddSwitch(string(sw)); err != nil {
			return nil, err
		}
	}
	for i, l := range doc.Links {
		bw := l.Bandwidth
		if bw == 0 {
			bw = l.BW
		}
		err := topo.AddLink(topology.Link{
			From:      string(l.Src),
			To:        string(l.Dst),
			Delay:     l.Delay,
			Bandwidth: bw,
			FromPort:  l.SrcPort,
			ToPort:    l.DstPort,
		})
		if err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	for i, h := range doc.Hosts {
		if err := topo.AddHost(topology.Host{MAC: h.MAC, Switch: string(h.Switch), Port: h.Port}); err != nil {
			return nil, fmt.Errorf("hosts[%d]: %w", i, err)
		}
	}
	return topo, nil
}

// edgeSpec is one edge read from a link list or GraphML, before it is known
// whether it joins two switches or attaches a host.
type edgeSpec struct {
	a, b         string
	aPort, bPort uint32
	delay, bw    float64
}

// addEdge adds e as a link, or as a host attachment when one endpoint is a
// MAC address. The attachment port is the port on the switch side.
func addEdge(topo *topology.Topology, e edgeSpec) error {
	if isMAC(e.a) {
		return topo.AddHost(topology.Host{MAC: e.a, Switch: e.b, Port: e.bPort})
	}
	if isMAC(e.b) {
		return topo.AddHost(topology.Host{MAC: e.b, Switch: e.a, Port: e.aPort})
	}
	return topo.AddLink(topology.Link{
		From:      e.a,
		To:        e.b,
		Delay:     e.delay,
		Bandwidth: e.bw,
		FromPort:  e.aPort,
		ToPort:    e.bPort,
	})
}

func isMAC(s string) bool {
	_, err := utils.NormalizeMAC(s)
	return err == nil
}
