package pathsel

import (
	"context"
	"fmt"
	"math"

	"sdn-te/internal/topology"
)

// MaxBandwidth returns the simple path from src to dst whose minimum link
// bandwidth is largest.
func (s *Selector) MaxBandwidth(ctx context.Context, topo *topology.Topology, src, dst string) ([]string, error) {
	if err := checkEndpoints(topo, src, dst); err != nil {
		return nil, err
	}
	if src == dst {
		return []string{src}, nil
	}

	w := &widestWalker{
		ctx:     ctx,
		topo:    topo,
		dst:     dst,
		maxHops: s.opts.MaxHops,
		onPath:  map[string]bool{src: true},
		stack:   []string{src},
	}
	if err := w.visit(src, math.Inf(1)); err != nil {
		return nil, err
	}
	if w.best == nil {
		return nil, fmt.Errorf("%w: %s -> %s: destination unreachable", ErrPathNotFound, src, dst)
	}
	return w.best, nil
}

// widestWalker enumerates simple paths depth-first in adjacency order.
type widestWalker struct {
	ctx     context.Context
	topo    *topology.Topology
	dst     string
	maxHops int

	onPath map[string]bool
	stack  []string

	best   []string
	bestBW float64
}

func (w *widestWalker) visit(u string, bottleneck float64) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if u == w.dst {
		// Strictly greater: the first path reaching the maximum is kept.
		if w.best == nil || bottleneck > w.bestBW {
			w.best = append([]string(nil), w.stack...)
			w.bestBW = bottleneck
		}
		return nil
	}
	if w.maxHops > 0 && len(w.stack)-1 >= w.maxHops {
		return nil
	}
	for _, l := range w.topo.Links(u) {
		if w.onPath[l.To] {
			continue
		}
		bw := math.Min(bottleneck, l.Bandwidth)
		if w.best != nil && bw <= w.bestBW {
			continue
		}
		w.onPath[l.To] = true
		w.stack = append(w.stack, l.To)
		err := w.visit(l.To, bw)
		w.stack = w.stack[:len(w.stack)-1]
		delete(w.onPath, l.To)
		if err != nil {
			return err
		}
	}
	return nil
}
