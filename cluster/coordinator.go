package cluster

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/fulldump/percoladb/percolator"
)

type ShardFailure struct {
	Shard  int    `json:"shard"`
	Reason string `json:"reason"`
}

type PercolateResult struct {
	Matches          []string       `json:"matches"`
	TotalShards      int            `json:"total_shards"`
	SuccessfulShards int            `json:"successful_shards"`
	Failures         []ShardFailure `json:"shard_failures"`
}

type shardResult struct {
	shard   int
	matches []string
	err     error
}

// Percolate fans the document out to every shard of the index in parallel
// and merges the per-shard match sets into one response.
//
// An unknown index fails the whole request before any dispatch. A failed
// shard is recorded in Failures and its matches are excluded; the request
// still answers with whatever the remaining shards produced. Shards that do
// not answer within the configured bound are reported as failed instead of
// hanging the request. successful + failed always equals total.
func (c *Cluster) Percolate(ctx context.Context, indexName string, docSource json.RawMessage) (*PercolateResult, error) {

	index, err := c.GetIndex(indexName)
	if err != nil {
		return nil, err
	}

	doc, err := percolator.ParseDocument(docSource)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.PercolateTimeout)
	defer cancel()

	// Buffered so a shard answering after the deadline never leaks its
	// goroutine.
	results := make(chan shardResult, len(index.Shards))
	for _, shard := range index.Shards {
		go func(shard *Shard) {
			matches, err := shard.Percolate(doc)
			results <- shardResult{shard: shard.Id, matches: matches, err: err}
		}(shard)
	}

	result := &PercolateResult{
		Matches:     []string{},
		TotalShards: len(index.Shards),
		Failures:    []ShardFailure{},
	}

	pending := map[int]bool{}
	for _, shard := range index.Shards {
		pending[shard.Id] = true
	}

	seen := map[string]bool{}

gather:
	for range index.Shards {
		select {
		case r := <-results:
			delete(pending, r.shard)
			if r.err != nil {
				result.Failures = append(result.Failures, ShardFailure{
					Shard:  r.shard,
					Reason: r.err.Error(),
				})
				continue
			}
			result.SuccessfulShards++
			for _, id := range r.matches {
				if seen[id] {
					continue
				}
				seen[id] = true
				result.Matches = append(result.Matches, id)
			}
		case <-ctx.Done():
			break gather
		}
	}

	late := make([]int, 0, len(pending))
	for id := range pending {
		late = append(late, id)
	}
	sort.Ints(late)
	for _, id := range late {
		result.Failures = append(result.Failures, ShardFailure{
			Shard:  id,
			Reason: "timed out",
		})
	}

	sort.Strings(result.Matches)

	return result, nil
}
