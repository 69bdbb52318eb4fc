// Package compiler turns a switch path and a match pattern into one flow
// rule per switch.
package compiler

import (
	"errors"
	"fmt"

	"sdn-te/internal/model"
	"sdn-te/internal/topology"
)

// ErrUnresolvedPort indicates a hop whose output port cannot be derived from
// the topology: two consecutive switches are not linked, a link carries no
// port number, or the destination host is not attached to the last switch.
var ErrUnresolvedPort = errors.New("compiler: unresolved port")

// PortCompiler resolves ports from link and host attachments of a topology.
type PortCompiler struct{}

// New returns a PortCompiler.
func New() *PortCompiler {
	return &PortCompiler{}
}

// Compile emits one FORWARD rule per switch of path, in path order.
//
// The output port of a hop is the local port of the link towards the next
// switch; at the last switch it is the port the destination MAC is attached
// to. When includeInPort is set, each rule also matches the port traffic
// enters on: the remote port of the link from the previous switch, or at the
// first switch the source host's port, else the pattern's own in_port.
func (c *PortCompiler) Compile(topo *topology.Topology, path []string, pattern model.MatchPattern, includeInPort bool) ([]model.Rule, error) {
	if topo == nil {
		return nil, fmt.Errorf("%w: no topology", ErrUnresolvedPort)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrUnresolvedPort)
	}

	rules := make([]model.Rule, 0, len(path))
	for i, sw := range path {
		out, err := egressPort(topo, path, i, pattern)
		if err != nil {
			return nil, err
		}

		match := pattern
		if includeInPort {
			if in, ok := ingressPort(topo, path, i, pattern); ok {
				match = pattern.WithInPort(in)
			}
		}

		rules = append(rules, model.Rule{
			SwitchID: sw,
			Match:    match,
			Action:   model.ForwardTo(out),
		})
	}
	return rules, nil
}

func egressPort(topo *topology.Topology, path []string, i int, pattern model.MatchPattern) (uint32, error) {
	sw := path[i]
	if i+1 < len(path) {
		next := path[i+1]
		l, ok := topo.Link(sw, next)
		if !ok {
			return 0, fmt.Errorf("%w: no link %s -> %s", ErrUnresolvedPort, sw, next)
		}
		if l.FromPort == 0 {
			return 0, fmt.Errorf("%w: link %s -> %s has no port on %s", ErrUnresolvedPort, sw, next, sw)
		}
		return l.FromPort, nil
	}

	if pattern.DstMAC == "" {
		return 0, fmt.Errorf("%w: last hop %s needs dst_mac to locate the destination host", ErrUnresolvedPort, sw)
	}
	h, ok := topo.Host(pattern.DstMAC)
	if !ok || h.Switch != sw {
		return 0, fmt.Errorf("%w: host %s is not attached to %s", ErrUnresolvedPort, pattern.DstMAC, sw)
	}
	return h.Port, nil
}

func ingressPort(topo *topology.Topology, path []string, i int, pattern model.MatchPattern) (uint32, bool) {
	sw := path[i]
	if i > 0 {
		l, ok := topo.Link(path[i-1], sw)
		if ok && l.ToPort != 0 {
			return l.ToPort, true
		}
		return 0, false
	}

	if pattern.SrcMAC != "" {
		if h, ok := topo.Host(pattern.SrcMAC); ok && h.Switch == sw {
			return h.Port, true
		}
	}
	if pattern.InPort != nil {
		return *pattern.InPort, true
	}
	return 0, false
}
