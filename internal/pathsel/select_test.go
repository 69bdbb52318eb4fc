package pathsel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdn-te/internal/model"
	"sdn-te/internal/topology"
)

type edge struct {
	from, to  string
	delay, bw float64
}

func buildTopo(t *testing.T, directed bool, edges ...edge) *topology.Topology {
	t.Helper()
	topo := topology.New(directed)
	for _, e := range edges {
		require.NoError(t, topo.AddLink(topology.Link{From: e.from, To: e.to, Delay: e.delay, Bandwidth: e.bw}))
	}
	return topo
}

func TestPassByIsIdentity(t *testing.T) {
	obj := model.PassByPathObjective{Switches: []model.SwitchID{"s1", "s9", "s4"}}

	// The topology is not consulted, so nil is acceptable.
	path, err := New().Select(context.Background(), obj, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s9", "s4"}, path)
}

func TestMinLatencyPrefersLowerTotalDelay(t *testing.T) {
	topo := buildTopo(t, false,
		edge{"A", "B", 5, 1},
		edge{"B", "C", 5, 1},
		edge{"A", "C", 20, 1},
	)
	obj := model.MinLatencyObjective{SrcSwitch: "A", DstSwitch: "C"}

	path, err := New().Select(context.Background(), obj, topo)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, path)

	d, ok := Delay(topo, path)
	require.True(t, ok)
	assert.Equal(t, 10.0, d)
}

func TestMaxBandwidthPrefersWidestBottleneck(t *testing.T) {
	topo := buildTopo(t, false,
		edge{"A", "B", 1, 10},
		edge{"B", "D", 1, 10},
		edge{"A", "C", 1, 5},
		edge{"C", "D", 1, 100},
	)
	obj := model.MaxBandwidthObjective{SrcSwitch: "A", DstSwitch: "D"}

	path, err := New().Select(context.Background(), obj, topo)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D"}, path)

	bw, ok := Bottleneck(topo, path)
	require.True(t, ok)
	assert.Equal(t, 10.0, bw)
}

func TestEqualCandidatesResolveDeterministically(t *testing.T) {
	edges := []edge{
		{"A", "B", 1, 10},
		{"A", "C", 1, 10},
		{"B", "D", 1, 10},
		{"C", "D", 1, 10},
	}
	sel := New()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		topo := buildTopo(t, false, edges...)

		lat, err := sel.MinLatency(ctx, topo, "A", "D")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "D"}, lat)

		wide, err := sel.MaxBandwidth(ctx, topo, "A", "D")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "D"}, wide)
	}
}

func TestSameSourceAndDestination(t *testing.T) {
	topo := buildTopo(t, false, edge{"A", "B", 1, 1})
	sel := New()

	path, err := sel.MinLatency(context.Background(), topo, "A", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, path)

	path, err = sel.MaxBandwidth(context.Background(), topo, "B", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, path)
}

func TestPathNotFound(t *testing.T) {
	topo := buildTopo(t, false,
		edge{"A", "B", 1, 1},
		edge{"C", "D", 1, 1},
	)
	sel := New()
	ctx := context.Background()

	tests := []struct {
		name     string
		src, dst string
	}{
		{"disconnected", "A", "D"},
		{"unknown source", "Z", "A"},
		{"unknown destination", "A", "Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sel.MinLatency(ctx, topo, tt.src, tt.dst)
			assert.True(t, errors.Is(err, ErrPathNotFound), "min latency: %v", err)

			_, err = sel.MaxBandwidth(ctx, topo, tt.src, tt.dst)
			assert.True(t, errors.Is(err, ErrPathNotFound), "max bandwidth: %v", err)
		})
	}
}

func TestDirectedLinksAreNotTraversedBackwards(t *testing.T) {
	topo := buildTopo(t, true,
		edge{"A", "B", 1, 1},
		edge{"B", "C", 1, 1},
	)

	path, err := New().MinLatency(context.Background(), topo, "A", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, path)

	_, err = New().MinLatency(context.Background(), topo, "C", "A")
	assert.True(t, errors.Is(err, ErrPathNotFound))
}

func TestNilTopology(t *testing.T) {
	obj := model.MinLatencyObjective{SrcSwitch: "A", DstSwitch: "B"}
	_, err := New().Select(context.Background(), obj, nil)
	assert.True(t, errors.Is(err, ErrNilTopology))
}

func TestMaxHopsBoundsEnumeration(t *testing.T) {
	// The wide route is three links long; the narrow one is a single link.
	topo := buildTopo(t, false,
		edge{"A", "B", 1, 100},
		edge{"B", "C", 1, 100},
		edge{"C", "D", 1, 100},
		edge{"A", "D", 1, 1},
	)
	ctx := context.Background()

	path, err := New().MaxBandwidth(ctx, topo, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, path)

	path, err = New(WithMaxHops(2)).MaxBandwidth(ctx, topo, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, path)

	assert.Panics(t, func() { WithMaxHops(-1) })
}

func TestCancelledContextStopsSearch(t *testing.T) {
	topo := buildTopo(t, false,
		edge{"A", "B", 1, 1},
		edge{"B", "C", 1, 1},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().MaxBandwidth(ctx, topo, "A", "C")
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = New().MinLatency(ctx, topo, "A", "C")
	assert.True(t, errors.Is(err, context.Canceled))
}

type unknownObjective struct{ model.Objective }

func TestSelectRejectsUnknownObjective(t *testing.T) {
	_, err := New().Select(context.Background(), unknownObjective{}, nil)
	assert.Error(t, err)
}
