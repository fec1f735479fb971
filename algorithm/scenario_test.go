package algorithm

import (
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chain = [][2]graph.RawID{{0, 1}, {1, 2}, {2, 3}}

func TestChainScenario(t *testing.T) {
	for tcount := 0; tcount < 10; tcount++ {
		sched := randomScheduler()
		g := buildView(t, 4, chain, []float64{1, 1, 1}, graph.BuildOptions{})

		bfs, err := RunBFS(sched, g, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 0, 1, 2}, bfs.Parent)
		assert.EqualValues(t, 4, bfs.Discovered)

		sssp, err := RunSSSP(sched, g, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 2, 3}, sssp.Distance)
		assert.Equal(t, 3.0, sssp.MaxDistance)
		assert.EqualValues(t, 3, sssp.MaxVertex)
		assert.EqualValues(t, 4, sssp.Reached)

		u := buildView(t, 4, chain, nil, graph.BuildOptions{Undirected: true})
		wcc, err := RunWCC(sched, u, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 0, 0, 0}, wcc.Labels)
		assert.EqualValues(t, 1, wcc.Components)

		lpa, err := RunLPA(sched, u, 1)
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 0, 1, 2}, lpa.Labels)
		assert.Equal(t, []uint64{4}, lpa.Changes)
		assert.EqualValues(t, 3, lpa.Communities)
	}
}

func TestChainFromOtherRoot(t *testing.T) {
	g := buildView(t, 4, chain, nil, graph.BuildOptions{})
	bfs, err := RunBFS(randomScheduler(), g, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{UNVISITED, UNVISITED, 2, 2}, bfs.Parent)
	assert.EqualValues(t, 2, bfs.Discovered)

	_, err = RunBFS(randomScheduler(), g, 4)
	assert.ErrorIs(t, err, graph.ErrNotFound)
}
