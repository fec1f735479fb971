package badgerstore

import (
	"context"
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLoaded(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	l := s.NewLoader()
	l.Index("person", "name")
	require.NoError(t, l.AddVertex(300, "person", graph.Fields{"name": "ann", "age": 31}))
	require.NoError(t, l.AddVertex(2, "person", graph.Fields{"name": "bob"}))
	require.NoError(t, l.AddVertex(5, "city", graph.Fields{"name": "york"}))
	require.NoError(t, l.AddEdge(300, 2, "knows", graph.Fields{"weight": 2.5}))
	require.NoError(t, l.AddEdge(300, 5, "lives", nil))
	require.NoError(t, l.AddEdge(2, 300, "knows", nil))
	require.NoError(t, l.Commit())
	return s
}

func TestSnapshotReads(t *testing.T) {
	s := openLoaded(t)
	snap, err := s.OpenReadSnapshot(context.Background(), graph.LabelFilter{})
	require.NoError(t, err)
	defer snap.Close()

	assert.ElementsMatch(t, []string{"person", "city"}, snap.Schema().VertexLabels)
	assert.ElementsMatch(t, []string{"knows", "lives"}, snap.Schema().EdgeLabels)

	var ids []graph.RawID
	require.NoError(t, snap.ForEachVertex(func(v graph.VertexRecord) bool {
		ids = append(ids, v.ID)
		if v.ID == 300 {
			assert.Equal(t, 31.0, v.Fields["age"])
		}
		return true
	}))
	assert.Equal(t, []graph.RawID{2, 5, 300}, ids, "vertices come back in id order")

	var edges []graph.EdgeRecord
	require.NoError(t, snap.ForEachOutEdge(300, func(e graph.EdgeRecord) bool {
		edges = append(edges, e)
		return true
	}))
	require.Len(t, edges, 2)
	assert.Equal(t, graph.RawID(2), edges[0].Dst)
	assert.Equal(t, 2.5, edges[0].Fields["weight"])
	assert.Equal(t, "lives", edges[1].Label)

	id, err := snap.LookupByIndex("person", "name", "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 2, id)
	_, err = snap.LookupByIndex("city", "name", "york")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestSnapshotFilterAndConsistency(t *testing.T) {
	s := openLoaded(t)
	snap, err := s.OpenReadSnapshot(context.Background(), graph.LabelFilter{EdgeLabels: []string{"knows"}})
	require.NoError(t, err)
	defer snap.Close()

	l := s.NewLoader()
	require.NoError(t, l.AddEdge(300, 2, "knows", nil))
	require.NoError(t, l.Commit())

	count := 0
	require.NoError(t, snap.ForEachOutEdge(300, func(e graph.EdgeRecord) bool {
		assert.Equal(t, "knows", e.Label)
		count++
		return true
	}))
	assert.Equal(t, 1, count, "later writes are not visible")

	fresh, err := s.OpenReadSnapshot(context.Background(), graph.LabelFilter{})
	require.NoError(t, err)
	defer fresh.Close()
	var dsts []graph.RawID
	require.NoError(t, fresh.ForEachOutEdge(300, func(e graph.EdgeRecord) bool {
		dsts = append(dsts, e.Dst)
		return true
	}))
	assert.Equal(t, []graph.RawID{2, 5, 2}, dsts, "appended after existing edges")
}

func TestBuildFromBadger(t *testing.T) {
	s := openLoaded(t)
	g, err := graph.Build(context.Background(), s, graph.LabelFilter{VertexLabels: []string{"person"}},
		graph.BuildOptions{WeightField: "weight", WeightKind: graph.FloatWeight, Reverse: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, g.NumVertices())
	assert.EqualValues(t, 2, g.NumEdges())
	v300, ok := g.DenseID(300)
	require.True(t, ok)
	require.Len(t, g.OutEdges(v300), 1)
	assert.Equal(t, 2.5, g.OutEdges(v300)[0].Weight)
	assert.Equal(t, "knows", g.EdgeTypeName(g.OutEdges(v300)[0].Type))

	require.NoError(t, s.Close())
	_, err = graph.Build(context.Background(), s, graph.LabelFilter{}, graph.BuildOptions{})
	assert.ErrorIs(t, err, graph.ErrStoreUnavailable)
}
