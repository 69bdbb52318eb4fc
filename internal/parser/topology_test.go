package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleGraphML = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="d0" for="edge" attr.name="delay" attr.type="double"/>
  <key id="d1" for="edge" attr.name="bw" attr.type="double"/>
  <key id="d2" for="edge" attr.name="port1" attr.type="int"/>
  <key id="d3" for="edge" attr.name="port2" attr.type="int"/>
  <key id="d4" for="node" attr.name="mac" attr.type="string"/>
  <graph edgedefault="undirected">
    <node id="1"/>
    <node id="2"/>
    <node id="h1"><data key="d4">00:00:00:00:00:01</data></node>
    <edge source="1" target="2">
      <data key="d0">5.0</data>
      <data key="d1">100</data>
      <data key="d2">2</data>
      <data key="d3">1</data>
    </edge>
    <edge source="h1" target="1">
      <data key="d2">0</data>
      <data key="d3">1</data>
    </edge>
  </graph>
</graphml>`

func TestParseGraphMLReadsLinksAndHosts(t *testing.T) {
	topo, err := ParseGraphML(strings.NewReader(sampleGraphML))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if topo.Directed() {
		t.Fatalf("expected undirected graph")
	}
	if got := topo.Switches(); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected switches [1 2], got %v", got)
	}

	l, ok := topo.Link("2", "1")
	if !ok {
		t.Fatalf("expected reverse link 2->1")
	}
	if l.Delay != 5 || l.Bandwidth != 100 || l.FromPort != 1 || l.ToPort != 2 {
		t.Fatalf("unexpected link attributes: %+v", l)
	}

	h, ok := topo.Host("00:00:00:00:00:01")
	if !ok {
		t.Fatalf("expected host attachment")
	}
	if h.Switch != "1" || h.Port != 1 {
		t.Fatalf("expected host on 1:1, got %s:%d", h.Switch, h.Port)
	}
}

func TestParseGraphMLRejectsBadWeights(t *testing.T) {
	doc := strings.Replace(sampleGraphML, "<data key=\"d0\">5.0</data>", "<data key=\"d0\">fast</data>", 1)
	if _, err := ParseGraphML(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected error for non-numeric delay")
	}
	if _, err := ParseGraphML(strings.NewReader("<graphml><graph>")); err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

func TestParseLinkCSV(t *testing.T) {
	csvData := "src,dst,delay,bw,src_port,dst_port\n" +
		"# core\n" +
		"s1,s2,5,10,2,1\n" +
		"s2,s3,1,,3,2\n" +
		"00:00:00:00:00:02,s3,,,,1\n"

	topo, err := ParseLinkCSV(strings.NewReader(csvData), true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if topo.LinkCount() != 2 {
		t.Fatalf("expected 2 links, got %d", topo.LinkCount())
	}
	if _, ok := topo.Link("s2", "s1"); ok {
		t.Fatalf("directed link list must not add reverse links")
	}
	l, _ := topo.Link("s1", "s2")
	if l.Bandwidth != 10 || l.FromPort != 2 {
		t.Fatalf("unexpected link attributes: %+v", l)
	}
	if h, ok := topo.Host("00:00:00:00:00:02"); !ok || h.Switch != "s3" || h.Port != 1 {
		t.Fatalf("expected host on s3:1, got %+v (found=%v)", h, ok)
	}
}

func TestParseLinkCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing dst column", "src,delay\ns1,1\n"},
		{"bad delay", "src,dst,delay\ns1,s2,slow\n"},
		{"negative bandwidth", "src,dst,bandwidth\ns1,s2,-3\n"},
		{"self loop", "src,dst\ns1,s1\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLinkCSV(strings.NewReader(tt.data), false); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseTopologyDocument(t *testing.T) {
	doc := `
directed: false
switches: [1, 2, 3]
links:
  - {src: 1, dst: 2, delay: 5, bandwidth: 10, src_port: 2, dst_port: 1}
  - {src: 2, dst: 3, delay: 5, bw: 10, src_port: 3, dst_port: 1}
hosts:
  - {mac: "00:00:00:00:00:01", switch: 1, port: 1}
`
	topo, err := ParseTopologyDocument([]byte(doc))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := topo.Switches(); len(got) != 3 || got[2] != "3" {
		t.Fatalf("expected switches [1 2 3], got %v", got)
	}
	if l, ok := topo.Link("3", "2"); !ok || l.Bandwidth != 10 || l.FromPort != 1 {
		t.Fatalf("unexpected link 3->2: %+v (found=%v)", l, ok)
	}
	if topo.Hosts() != 1 {
		t.Fatalf("expected 1 host, got %d", topo.Hosts())
	}

	if _, err := ParseTopologyDocument([]byte("links:\n  - {src: 1, dst: 1}\n")); err == nil {
		t.Fatalf("expected self-loop error")
	}
}

func TestTopologyFileLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"topo.graphml": sampleGraphML,
		"topo.csv":     "src,dst,delay\n1,2,5\n",
		"topo.json":    `{"links":[{"src":1,"dst":2,"delay":5}]}`,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		topo, err := (&TopologyFile{Path: path}).Load(context.Background())
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", name, err)
		}
		if _, ok := topo.Link("1", "2"); !ok {
			t.Fatalf("%s: expected link 1->2", name)
		}
	}

	if _, err := (&TopologyFile{Path: filepath.Join(dir, "missing.csv")}).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := (&TopologyFile{Path: filepath.Join(dir, "topo.txt")}).Load(context.Background()); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}
