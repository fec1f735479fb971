package memstore

import (
	"context"
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotIsolation(t *testing.T) {
	s := FromEdges(3, [][2]graph.RawID{{0, 1}}, nil)
	snap, err := s.OpenReadSnapshot(context.Background(), graph.LabelFilter{})
	require.NoError(t, err)
	defer snap.Close()

	require.NoError(t, s.AddEdge(0, 2, graph.DEFAULT_EDGE_LABEL, nil))
	require.NoError(t, s.AddVertex(3, "other", nil))

	var dsts []graph.RawID
	require.NoError(t, snap.ForEachOutEdge(0, func(e graph.EdgeRecord) bool {
		dsts = append(dsts, e.Dst)
		return true
	}))
	assert.Equal(t, []graph.RawID{1}, dsts)

	count := 0
	require.NoError(t, snap.ForEachVertex(func(graph.VertexRecord) bool { count++; return true }))
	assert.Equal(t, 3, count)
	assert.False(t, snap.Schema().HasVertexLabel("other"))
}

func TestIterationRestartsAndStops(t *testing.T) {
	s := FromEdges(5, nil, nil)
	snap, err := s.OpenReadSnapshot(context.Background(), graph.LabelFilter{})
	require.NoError(t, err)
	for round := 0; round < 2; round++ {
		var ids []graph.RawID
		require.NoError(t, snap.ForEachVertex(func(v graph.VertexRecord) bool {
			ids = append(ids, v.ID)
			return len(ids) < 3
		}))
		assert.Equal(t, []graph.RawID{0, 1, 2}, ids)
	}
}

func TestLookupByIndex(t *testing.T) {
	s := New()
	require.NoError(t, s.AddVertex(7, "user", graph.Fields{"email": "a@x"}))
	s.AddIndex("user", "email")
	require.NoError(t, s.AddVertex(9, "user", graph.Fields{"email": "b@x", "n": 4}))

	snap, err := s.OpenReadSnapshot(context.Background(), graph.LabelFilter{})
	require.NoError(t, err)
	id, err := snap.LookupByIndex("user", "email", "a@x")
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)
	id, err = snap.LookupByIndex("user", "email", "b@x")
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)

	id, err = snap.LookupByIndex("user", "n", 4)
	require.NoError(t, err, "unindexed fields fall back to a scan")
	assert.EqualValues(t, 9, id)

	_, err = snap.LookupByIndex("user", "email", "c@x")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestWriteErrorsAndClose(t *testing.T) {
	s := FromEdges(2, nil, nil)
	assert.Error(t, s.AddVertex(1, "vertex", nil))
	assert.ErrorIs(t, s.AddEdge(0, 5, "edge", nil), graph.ErrNotFound)

	require.NoError(t, s.Close())
	_, err := s.OpenReadSnapshot(context.Background(), graph.LabelFilter{})
	assert.ErrorIs(t, err, graph.ErrStoreUnavailable)
}
