// Package pathsel turns a traffic-engineering objective into an ordered list
// of switch IDs.
//
// One algorithm per objective kind:
//
//   - pass-by:       identity; the pinned switch sequence is returned unchanged and
//     the topology is not consulted.
//   - min-latency:   Dijkstra over cumulative link delay. Equal-cost ties resolve to
//     the first relaxation in adjacency order; heap ties resolve by push order.
//   - max-bandwidth: depth-first enumeration of every simple path; the path with the
//     largest bottleneck (minimum link bandwidth) wins, and among equals the first
//     one enumerated. Enumeration is exponential in the worst case. Branches whose
//     running bottleneck cannot beat the current best are cut, which never changes
//     the selected path. WithMaxHops bounds the search depth.
//
// Both computed kinds return [src] when src == dst and an error wrapping
// ErrPathNotFound when an endpoint is unknown or unreachable. Enumeration
// observes context cancellation so callers can impose deadlines.
package pathsel
