// Package topology holds the weighted switch graph that path selection runs
// on. A Topology is built once by a loader and then treated as read-only;
// reconciliation replaces it wholesale rather than mutating it.
package topology

import (
	"errors"
	"fmt"
	"math"

	"sdn-te/internal/utils"
)

// Sentinel errors returned while building a topology.
var (
	// ErrEmptySwitchID indicates a link or host referencing an empty switch ID.
	ErrEmptySwitchID = errors.New("topology: switch ID is empty")

	// ErrSelfLoop indicates a link whose endpoints are the same switch.
	ErrSelfLoop = errors.New("topology: self-loop not allowed")

	// ErrBadWeight indicates a negative or non-finite delay or bandwidth.
	ErrBadWeight = errors.New("topology: delay and bandwidth must be finite and non-negative")
)

// Link is a directed adjacency between two switches. FromPort is the port on
// From facing To and ToPort the port on To facing From; zero means unknown.
type Link struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Delay     float64 `json:"delay"`
	Bandwidth float64 `json:"bandwidth"`
	FromPort  uint32  `json:"from_port,omitempty"`
	ToPort    uint32  `json:"to_port,omitempty"`
}

// Reversed returns the same link seen from the other end.
func (l Link) Reversed() Link {
	return Link{From: l.To, To: l.From, Delay: l.Delay, Bandwidth: l.Bandwidth, FromPort: l.ToPort, ToPort: l.FromPort}
}

// Host is an end station attached to a switch port.
type Host struct {
	MAC    string `json:"mac"`
	Switch string `json:"switch"`
	Port   uint32 `json:"port"`
}

// Topology is a weighted graph of switches. Adjacency lists keep insertion
// order so that every traversal over the same input is deterministic.
type Topology struct {
	directed bool
	switches []string
	known    map[string]struct{}
	adj      map[string][]Link
	hosts    map[string]Host
}

// New creates an empty topology. Undirected topologies store every link in
// both directions.
func New(directed bool) *Topology {
	return &Topology{
		directed: directed,
		known:    make(map[string]struct{}),
		adj:      make(map[string][]Link),
		hosts:    make(map[string]Host),
	}
}

// Directed reports whether links are one-way.
func (t *Topology) Directed() bool { return t.directed }

// AddSwitch registers a switch. Adding a known switch is a no-op.
func (t *Topology) AddSwitch(id string) error {
	if id == "" {
		return ErrEmptySwitchID
	}
	if _, ok := t.known[id]; ok {
		return nil
	}
	t.known[id] = struct{}{}
	t.switches = append(t.switches, id)
	return nil
}

// AddLink inserts a link, registering unknown endpoints. A second link
// between the same pair replaces the attributes of the first.
func (t *Topology) AddLink(l Link) error {
	if l.From == "" || l.To == "" {
		return ErrEmptySwitchID
	}
	if l.From == l.To {
		return fmt.Errorf("%w: %s", ErrSelfLoop, l.From)
	}
	if !validWeight(l.Delay) || !validWeight(l.Bandwidth) {
		return fmt.Errorf("%w: link %s-%s delay=%v bandwidth=%v", ErrBadWeight, l.From, l.To, l.Delay, l.Bandwidth)
	}
	if err := t.AddSwitch(l.From); err != nil {
		return err
	}
	if err := t.AddSwitch(l.To); err != nil {
		return err
	}
	t.upsert(l)
	if !t.directed {
		t.upsert(l.Reversed())
	}
	return nil
}

func (t *Topology) upsert(l Link) {
	links := t.adj[l.From]
	for i := range links {
		if links[i].To == l.To {
			links[i] = l
			return
		}
	}
	t.adj[l.From] = append(links, l)
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

// AddHost attaches an end station; its MAC is stored in canonical form.
func (t *Topology) AddHost(h Host) error {
	if h.Switch == "" {
		return ErrEmptySwitchID
	}
	mac, err := utils.NormalizeMAC(h.MAC)
	if err != nil {
		return fmt.Errorf("topology: host %q: %w", h.MAC, err)
	}
	if err := t.AddSwitch(h.Switch); err != nil {
		return err
	}
	h.MAC = mac
	t.hosts[mac] = h
	return nil
}

// HasSwitch reports whether id is a switch of this topology.
func (t *Topology) HasSwitch(id string) bool {
	_, ok := t.known[id]
	return ok
}

// Switches returns the switch IDs in insertion order.
func (t *Topology) Switches() []string {
	out := make([]string, len(t.switches))
	copy(out, t.switches)
	return out
}

// Links returns the outgoing links of a switch in insertion order.
func (t *Topology) Links(from string) []Link {
	links := t.adj[from]
	out := make([]Link, len(links))
	copy(out, links)
	return out
}

// Link returns the link from -> to if one exists.
func (t *Topology) Link(from, to string) (Link, bool) {
	for _, l := range t.adj[from] {
		if l.To == to {
			return l, true
		}
	}
	return Link{}, false
}

// Host looks up an attached end station by MAC address.
func (t *Topology) Host(mac string) (Host, bool) {
	norm, err := utils.NormalizeMAC(mac)
	if err != nil {
		return Host{}, false
	}
	h, ok := t.hosts[norm]
	return h, ok
}

// Hosts returns the number of attached end stations.
func (t *Topology) Hosts() int { return len(t.hosts) }

// LinkCount returns the number of links as loaded; an undirected link counts once.
func (t *Topology) LinkCount() int {
	n := 0
	for _, links := range t.adj {
		n += len(links)
	}
	if !t.directed {
		n /= 2
	}
	return n
}
