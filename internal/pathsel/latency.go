package pathsel

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"sdn-te/internal/topology"
)

// MinLatency returns the path from src to dst with the lowest total delay.
func (s *Selector) MinLatency(ctx context.Context, topo *topology.Topology, src, dst string) ([]string, error) {
	if err := checkEndpoints(topo, src, dst); err != nil {
		return nil, err
	}
	if src == dst {
		return []string{src}, nil
	}

	r := &latencyRunner{
		topo:    topo,
		dist:    make(map[string]float64),
		prev:    make(map[string]string),
		visited: make(map[string]bool),
	}
	r.dist[src] = 0
	r.push(src, 0)

	for r.pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := heap.Pop(&r.pq).(*delayItem)
		u := item.id
		// Stale entry from lazy decrease-key.
		if r.visited[u] {
			continue
		}
		r.visited[u] = true
		if u == dst {
			return r.path(src, dst), nil
		}
		r.relax(u)
	}
	return nil, fmt.Errorf("%w: %s -> %s: destination unreachable", ErrPathNotFound, src, dst)
}

// latencyRunner holds the mutable state of one Dijkstra run.
type latencyRunner struct {
	topo    *topology.Topology
	dist    map[string]float64
	prev    map[string]string
	visited map[string]bool
	pq      delayPQ
	seq     uint64
}

func (r *latencyRunner) distance(id string) float64 {
	if d, ok := r.dist[id]; ok {
		return d
	}
	return math.Inf(1)
}

func (r *latencyRunner) push(id string, d float64) {
	heap.Push(&r.pq, &delayItem{id: id, dist: d, seq: r.seq})
	r.seq++
}

// relax improves the neighbors of u. Only strictly shorter distances replace
// an existing predecessor, so the first equal-cost route found is kept.
func (r *latencyRunner) relax(u string) {
	for _, l := range r.topo.Links(u) {
		if r.visited[l.To] {
			continue
		}
		nd := r.dist[u] + l.Delay
		if nd >= r.distance(l.To) {
			continue
		}
		r.dist[l.To] = nd
		r.prev[l.To] = u
		r.push(l.To, nd)
	}
}

func (r *latencyRunner) path(src, dst string) []string {
	var rev []string
	for v := dst; ; v = r.prev[v] {
		rev = append(rev, v)
		if v == src {
			break
		}
	}
	path := make([]string, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// delayItem is a heap entry; seq breaks distance ties by push order.
type delayItem struct {
	id   string
	dist float64
	seq  uint64
}

// delayPQ is a min-heap of *delayItem ordered by (dist, seq).
type delayPQ []*delayItem

func (pq delayPQ) Len() int { return len(pq) }

func (pq delayPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}

func (pq delayPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *delayPQ) Push(x interface{}) { *pq = append(*pq, x.(*delayItem)) }

func (pq *delayPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
