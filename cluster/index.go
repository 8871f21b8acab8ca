package cluster

import (
	"encoding/json"
	"hash/fnv"

	"github.com/fulldump/percoladb/percolator"
)

type Settings struct {
	Shards   int `json:"shards"`
	Replicas int `json:"replicas"` // copies per shard in addition to the primary
}

// Index is a named set of shards. Query ids are routed to shards by a
// stable hash, so the same id always lands on the same shard and a
// percolate unions match sets across all of them.
type Index struct {
	Name     string
	Settings *Settings
	Shards   []*Shard
}

func (index *Index) shardFor(id string) *Shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return index.Shards[int(h.Sum32())%len(index.Shards)]
}

func (index *Index) Register(id string, query json.RawMessage) (*percolator.QueryEntry, bool, error) {
	return index.shardFor(id).Register(id, query)
}

func (index *Index) Unregister(id string) (bool, error) {
	return index.shardFor(id).Unregister(id)
}

// Queries is the total number of registered queries across all shards.
func (index *Index) Queries() int {

	total := 0
	for _, shard := range index.Shards {
		total += shard.Queries()
	}

	return total
}

func (index *Index) Close() error {

	var lastErr error
	for _, shard := range index.Shards {
		err := shard.Close()
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}
