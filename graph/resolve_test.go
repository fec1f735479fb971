package graph_test

import (
	"context"
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndexKey(t *testing.T) {
	k, err := graph.ParseIndexKey("user.email=a@x.org")
	require.NoError(t, err)
	assert.Equal(t, graph.IndexKey{Label: "user", Field: "email", Value: "a@x.org"}, k)
	assert.Equal(t, "user.email=a@x.org", k.String())

	for _, bad := range []string{"user.email", "useremail=a", ".email=a", "user.=a", ""} {
		_, err := graph.ParseIndexKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolve(t *testing.T) {
	s := memstore.New()
	require.NoError(t, s.AddVertex(100, "user", graph.Fields{"name": "ann", "n": 4}))
	require.NoError(t, s.AddVertex(200, "user", graph.Fields{"name": "bob"}))
	s.AddIndex("user", "name")

	ids, found, err := graph.Resolve(context.Background(), s,
		graph.IndexKey{Label: "user", Field: "name", Value: "bob"},
		graph.IndexKey{Label: "user", Field: "name", Value: "cat"},
		graph.IndexKey{Label: "user", Field: "n", Value: "4"},
	)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, found)
	assert.Equal(t, graph.RawID(200), ids[0])
	assert.Equal(t, graph.RawID(100), ids[2])

	require.NoError(t, s.Close())
	_, _, err = graph.Resolve(context.Background(), s, graph.IndexKey{Label: "user", Field: "name", Value: "bob"})
	assert.ErrorIs(t, err, graph.ErrStoreUnavailable)
}
