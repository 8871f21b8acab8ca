package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// A fixed pair of disjoint queries percolated from many goroutines at once.
// Every request must see the exact match set for its document, regardless of
// interleaving.
func TestConcurrentPercolateFixedRegistry(t *testing.T) {

	c := newTestCluster(t)

	index, err := c.CreateIndex("fixed", &Settings{Shards: 2})
	require.NoError(t, err)

	_, _, err = index.Register("test1", json.RawMessage(`{"term":{"field2":"value"}}`))
	require.NoError(t, err)
	_, _, err = index.Register("test2", json.RawMessage(`{"term":{"field1":1}}`))
	require.NoError(t, err)

	bothFields := json.RawMessage(`{"field1":1,"field2":"value"}`)
	onlyField1 := json.RawMessage(`{"field1":1}`)
	onlyField2 := json.RawMessage(`{"field2":"value"}`)

	var wg sync.WaitGroup
	for g := 0; g < 5; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 100; i++ {
				var doc json.RawMessage
				var expected []string
				switch r.Intn(3) {
				case 0:
					doc, expected = bothFields, []string{"test1", "test2"}
				case 1:
					doc, expected = onlyField1, []string{"test2"}
				default:
					doc, expected = onlyField2, []string{"test1"}
				}

				result, err := c.Percolate(context.Background(), "fixed", doc)
				if err != nil {
					t.Error(err)
					return
				}
				if len(result.Failures) > 0 {
					t.Errorf("unexpected shard failures: %v", result.Failures)
					return
				}
				if fmt.Sprint(result.Matches) != fmt.Sprint(expected) {
					t.Errorf("got %v, expected %v", result.Matches, expected)
					return
				}
			}
		}(int64(g))
	}
	wg.Wait()
}

// Queries are registered while percolates are in flight. A percolate must
// match at least every query of a compatible kind whose registration was
// acknowledged before the request started; it may also see newer ones.
func TestConcurrentRegisterAndPercolate(t *testing.T) {

	c := newTestCluster(t)

	_, err := c.CreateIndex("growing", &Settings{Shards: 2})
	require.NoError(t, err)
	index, _ := c.GetIndex("growing")

	kindQueries := []string{
		`{"term":{"field1":"b"}}`,
		`{"bool":{"must":[{"term":{"field1":"b"}},{"term":{"field2":"c"}}]}}`,
		`{"bool":{"must":[{"term":{"field1":"b"}},{"term":{"field2":"c"}},{"term":{"field3":"d"}}]}}`,
	}
	kindDocs := []string{
		`{"field1":"b"}`,
		`{"field1":"b","field2":"c"}`,
		`{"field1":"b","field2":"c","field3":"d"}`,
	}

	var registered [3]int64
	var wg sync.WaitGroup

	for kind := 0; kind < 3; kind++ {
		wg.Add(1)
		go func(kind int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("kind%d-%d", kind, i)
				_, _, err := index.Register(id, json.RawMessage(kindQueries[kind]))
				if err != nil {
					t.Error(err)
					return
				}
				atomic.AddInt64(&registered[kind], 1)
			}
		}(kind)
	}

	for g := 0; g < 6; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			kind := g % 3
			for i := 0; i < 50; i++ {
				// Document of kind k matches every query of kind <= k
				atLeast := int64(0)
				for k := 0; k <= kind; k++ {
					atLeast += atomic.LoadInt64(&registered[k])
				}

				result, err := c.Percolate(context.Background(), "growing", json.RawMessage(kindDocs[kind]))
				if err != nil {
					t.Error(err)
					return
				}
				if len(result.Failures) > 0 {
					t.Errorf("unexpected shard failures: %v", result.Failures)
					return
				}
				if result.SuccessfulShards != result.TotalShards {
					t.Errorf("successful=%d total=%d", result.SuccessfulShards, result.TotalShards)
					return
				}
				if int64(len(result.Matches)) < atLeast {
					t.Errorf("doc kind %d got %d matches, at least %d registered", kind, len(result.Matches), atLeast)
					return
				}
			}
		}(g)
	}

	wg.Wait()
}

// Registrations and removals race against percolates that demand an exact
// count. Mutators hold the gate shared, so they overlap each other; the
// checker takes it exclusive, so its count of live ids is exact while its
// request runs.
func TestConcurrentAddRemoveExactCount(t *testing.T) {

	c := newTestCluster(t)

	_, err := c.CreateIndex("churn", &Settings{Shards: 2})
	require.NoError(t, err)
	index, _ := c.GetIndex("churn")

	var gate sync.RWMutex
	live := map[string]bool{}
	var liveMu sync.Mutex

	query := json.RawMessage(`{"term":{"field1":"value"}}`)
	doc := json.RawMessage(`{"field1":"value"}`)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for g := 0; g < 3; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}

				gate.RLock()
				id := fmt.Sprintf("w%d-%d", seed, r.Intn(50))
				if r.Intn(2) == 0 {
					_, _, err := index.Register(id, query)
					if err != nil {
						t.Error(err)
						gate.RUnlock()
						return
					}
					liveMu.Lock()
					live[id] = true
					liveMu.Unlock()
				} else {
					_, err := index.Unregister(id)
					if err != nil {
						t.Error(err)
						gate.RUnlock()
						return
					}
					liveMu.Lock()
					delete(live, id)
					liveMu.Unlock()
				}
				gate.RUnlock()
			}
		}(int64(g))
	}

	for i := 0; i < 100; i++ {
		gate.Lock()
		liveMu.Lock()
		expected := len(live)
		liveMu.Unlock()

		result, err := c.Percolate(context.Background(), "churn", doc)
		gate.Unlock()

		require.NoError(t, err)
		require.Empty(t, result.Failures)
		require.Len(t, result.Matches, expected)
	}

	close(stop)
	wg.Wait()
}
