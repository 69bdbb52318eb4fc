package pathsel

import (
	"context"
	"errors"
	"fmt"
	"math"

	"sdn-te/internal/model"
	"sdn-te/internal/topology"
)

// Sentinel errors returned by path selection.
var (
	// ErrPathNotFound indicates no path connects the objective's endpoints.
	ErrPathNotFound = errors.New("pathsel: path not found")

	// ErrNilTopology indicates a computed objective was given no topology.
	ErrNilTopology = errors.New("pathsel: topology is nil")

	// ErrBadMaxHops indicates WithMaxHops was given a negative value.
	ErrBadMaxHops = errors.New("pathsel: MaxHops must be non-negative")
)

// Options configures a Selector.
//
// MaxHops bounds simple-path enumeration for max-bandwidth objectives to
// paths of at most that many links. Zero means unbounded.
type Options struct {
	MaxHops int
}

// Option is a functional option for New.
type Option func(*Options)

// WithMaxHops caps the number of links of enumerated max-bandwidth paths.
// Panics on a negative value.
func WithMaxHops(n int) Option {
	return func(o *Options) {
		if n < 0 {
			panic(ErrBadMaxHops.Error())
		}
		o.MaxHops = n
	}
}

// Selector computes paths for objectives. It holds no per-call state and is
// safe for concurrent use.
type Selector struct {
	opts Options
}

// New returns a Selector configured by opts.
func New(opts ...Option) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Select returns the path for obj over topo.
func (s *Selector) Select(ctx context.Context, obj model.Objective, topo *topology.Topology) ([]string, error) {
	switch o := obj.(type) {
	case model.PassByPathObjective:
		return o.Path(), nil
	case model.MinLatencyObjective:
		return s.MinLatency(ctx, topo, string(o.SrcSwitch), string(o.DstSwitch))
	case model.MaxBandwidthObjective:
		return s.MaxBandwidth(ctx, topo, string(o.SrcSwitch), string(o.DstSwitch))
	default:
		return nil, fmt.Errorf("pathsel: unsupported objective type %T", obj)
	}
}

func checkEndpoints(topo *topology.Topology, src, dst string) error {
	if topo == nil {
		return ErrNilTopology
	}
	for _, id := range []string{src, dst} {
		if !topo.HasSwitch(id) {
			return fmt.Errorf("%w: %s -> %s: unknown switch %q", ErrPathNotFound, src, dst, id)
		}
	}
	return nil
}

// Delay returns the cumulative link delay along path.
func Delay(topo *topology.Topology, path []string) (float64, bool) {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		l, ok := topo.Link(path[i], path[i+1])
		if !ok {
			return 0, false
		}
		total += l.Delay
	}
	return total, true
}

// Bottleneck returns the minimum link bandwidth along path. A single-switch
// path has an unbounded bottleneck.
func Bottleneck(topo *topology.Topology, path []string) (float64, bool) {
	bw := math.Inf(1)
	for i := 0; i+1 < len(path); i++ {
		l, ok := topo.Link(path[i], path[i+1])
		if !ok {
			return 0, false
		}
		bw = math.Min(bw, l.Bandwidth)
	}
	return bw, true
}
