package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPercolateUnionAcrossShards(t *testing.T) {

	c := newTestCluster(t)

	index, err := c.CreateIndex("union", &Settings{Shards: 4})
	require.NoError(t, err)

	// Enough ids to populate every shard
	for i := 0; i < 20; i++ {
		_, _, err := index.Register(fmt.Sprintf("q%02d", i), json.RawMessage(`{"term":{"field1":"value"}}`))
		require.NoError(t, err)
	}
	index.Register("other", json.RawMessage(`{"term":{"field1":"other"}}`))

	result, err := c.Percolate(context.Background(), "union", json.RawMessage(`{"field1":"value"}`))
	require.NoError(t, err)
	require.Equal(t, 4, result.TotalShards)
	require.Equal(t, 4, result.SuccessfulShards)
	require.Empty(t, result.Failures)
	require.Len(t, result.Matches, 20)

	// Matches come back sorted
	for i := 1; i < len(result.Matches); i++ {
		require.Less(t, result.Matches[i-1], result.Matches[i])
	}
}

func TestPercolateIndexNotFound(t *testing.T) {

	c := newTestCluster(t)

	_, err := c.Percolate(context.Background(), "ghost", json.RawMessage(`{}`))
	require.ErrorIs(t, err, ErrorIndexNotFound)
}

func TestPercolateMalformedDocument(t *testing.T) {

	c := newTestCluster(t)
	c.CreateIndex("docs", nil)

	_, err := c.Percolate(context.Background(), "docs", json.RawMessage(`[1,2,3]`))
	require.Error(t, err)
}

func TestPercolateReplicaFailover(t *testing.T) {

	c := newTestCluster(t)

	index, err := c.CreateIndex("failover", &Settings{Shards: 1, Replicas: 1})
	require.NoError(t, err)
	index.Register("q1", json.RawMessage(`{"match_all":{}}`))

	// With the primary down the replica copy still answers reads
	require.NoError(t, index.Shards[0].Replicas[0].Close())

	result, err := c.Percolate(context.Background(), "failover", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessfulShards)
	require.Empty(t, result.Failures)
	require.Equal(t, []string{"q1"}, result.Matches)
}

func TestPercolateShardFailure(t *testing.T) {

	c := newTestCluster(t)

	index, err := c.CreateIndex("degraded", &Settings{Shards: 3})
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		index.Register(fmt.Sprintf("q%02d", i), json.RawMessage(`{"match_all":{}}`))
	}

	// Take one whole shard down; the request degrades instead of failing
	downShard := index.Shards[1]
	require.NoError(t, downShard.Close())

	result, err := c.Percolate(context.Background(), "degraded", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, 3, result.TotalShards)
	require.Equal(t, 2, result.SuccessfulShards)
	require.Len(t, result.Failures, 1)
	require.Equal(t, downShard.Id, result.Failures[0].Shard)
	require.Equal(t, result.TotalShards, result.SuccessfulShards+len(result.Failures))

	// Only the surviving shards contribute matches
	expected := 0
	for _, shard := range index.Shards {
		if shard == downShard {
			continue
		}
		expected += shard.Queries()
	}
	require.Len(t, result.Matches, expected)
}

func TestPercolateTimeoutBound(t *testing.T) {

	c := NewCluster(&Config{
		Dir:              t.TempDir(),
		PercolateTimeout: time.Nanosecond,
	})
	require.NoError(t, c.Load())

	index, err := c.CreateIndex("slow", &Settings{Shards: 4})
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		index.Register(fmt.Sprintf("q%d", i), json.RawMessage(`{"match_all":{}}`))
	}

	// The request must come back promptly with every shard accounted for,
	// answered or reported as timed out.
	result, err := c.Percolate(context.Background(), "slow", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, 4, result.TotalShards)
	require.Equal(t, result.TotalShards, result.SuccessfulShards+len(result.Failures))
	for _, failure := range result.Failures {
		require.Equal(t, "timed out", failure.Reason)
	}
}

func TestPercolateEmptyIndex(t *testing.T) {

	c := newTestCluster(t)
	c.CreateIndex("empty", &Settings{Shards: 2})

	result, err := c.Percolate(context.Background(), "empty", json.RawMessage(`{"field1":"value"}`))
	require.NoError(t, err)
	require.Equal(t, []string{}, result.Matches)
	require.Equal(t, 2, result.SuccessfulShards)
	require.Empty(t, result.Failures)
}
