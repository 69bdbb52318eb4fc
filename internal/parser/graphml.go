package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"sdn-te/internal/topology"
)

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// Edge attribute names, lower case, recognized in GraphML keys.
var (
	delayAttrs     = []string{"delay", "latency"}
	bandwidthAttrs = []string{"bandwidth", "bw", "capacity"}
	srcPortAttrs   = []string{"src_port", "port1", "sport", "from_port"}
	dstPortAttrs   = []string{"dst_port", "port2", "dport", "to_port"}
)

// ParseGraphML reads a GraphML graph. Nodes are switches unless they carry a
// "mac" attribute, in which case they are hosts and their edges become
// attachments. Edges read delay, bandwidth and port attributes.
func ParseGraphML(r io.Reader) (*topology.Topology, error) {
	var doc graphmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode graphml: %w", err)
	}

	keyNames := make(map[string]string, len(doc.Keys))
	for _, k := range doc.Keys {
		name := k.Name
		if name == "" {
			name = k.ID
		}
		keyNames[k.ID] = strings.ToLower(name)
	}
	attrs := func(data []graphmlData) map[string]string {
		m := make(map[string]string, len(data))
		for _, d := range data {
			name, ok := keyNames[d.Key]
			if !ok {
				name = strings.ToLower(d.Key)
			}
			m[name] = strings.TrimSpace(d.Value)
		}
		return m
	}

	topo := topology.New(strings.EqualFold(doc.Graph.EdgeDefault, "directed"))
	ids := make(map[string]string, len(doc.Graph.Nodes))
	for _, n := range doc.Graph.Nodes {
		if mac := attrs(n.Data)["mac"]; mac != "" {
			ids[n.ID] = mac
			continue
		}
		ids[n.ID] = n.ID
		if err := topo.AddSwitch(n.ID); err != nil {
			return nil, err
		}
	}
	resolve := func(id string) string {
		if v, ok := ids[id]; ok {
			return v
		}
		return id
	}

	for i, ed := range doc.Graph.Edges {
		a := attrs(ed.Data)
		e := edgeSpec{a: resolve(ed.Source), b: resolve(ed.Target)}
		var err error
		if e.delay, err = parseFloatField(firstAttr(a, delayAttrs)); err != nil {
			return nil, fmt.Errorf("edge %d (%s-%s): delay: %w", i, ed.Source, ed.Target, err)
		}
		if e.bw, err = parseFloatField(firstAttr(a, bandwidthAttrs)); err != nil {
			return nil, fmt.Errorf("edge %d (%s-%s): bandwidth: %w", i, ed.Source, ed.Target, err)
		}
		if e.aPort, err = parsePortField(firstAttr(a, srcPortAttrs)); err != nil {
			return nil, fmt.Errorf("edge %d (%s-%s): source port: %w", i, ed.Source, ed.Target, err)
		}
		if e.bPort, err = parsePortField(firstAttr(a, dstPortAttrs)); err != nil {
			return nil, fmt.Errorf("edge %d (%s-%s): target port: %w", i, ed.Source, ed.Target, err)
		}
		if err := addEdge(topo, e); err != nil {
			return nil, fmt.Errorf("edge %d (%s-%s): %w", i, ed.Source, ed.Target, err)
		}
	}
	return topo, nil
}

func firstAttr(attrs map[string]string, names []string) string {
	for _, n := range names {
		if v, ok := attrs[n]; ok && v != "" {
			return v
		}
	}
	return ""
}
