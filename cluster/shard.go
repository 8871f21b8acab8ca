package cluster

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fulldump/percoladb/percolator"
)

// Shard owns one partition of an index's query registry, replicated across
// one primary and zero or more replica copies.
type Shard struct {
	Id       int
	Replicas []*Replica // Replicas[0] is the primary

	// mu serializes registry mutations so every copy applies them in the
	// same order. Percolates never take it.
	mu sync.Mutex
}

// Register applies a query write to the primary first and then to each
// replica in order. A failure on the primary fails the whole write with
// nothing stored anywhere; a failure on a replica is degraded, not fatal.
func (s *Shard) Register(id string, query json.RawMessage) (*percolator.QueryEntry, bool, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var entry *percolator.QueryEntry
	var created bool
	for i, replica := range s.Replicas {
		e, c, err := replica.Register(id, query)
		if err != nil {
			if i == 0 {
				return nil, false, err
			}
			fmt.Printf("WARNING: shard %d replica %d register '%s': %s\n", s.Id, i, id, err.Error())
			continue
		}
		if i == 0 {
			entry, created = e, c
		}
	}

	return entry, created, nil
}

// Unregister removes a query from every copy, primary first. Removing an
// absent id is a no-op success on every copy.
func (s *Shard) Unregister(id string) (bool, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var found bool
	for i, replica := range s.Replicas {
		f, err := replica.Unregister(id)
		if err != nil {
			if i == 0 {
				return false, err
			}
			fmt.Printf("WARNING: shard %d replica %d unregister '%s': %s\n", s.Id, i, id, err.Error())
			continue
		}
		if i == 0 {
			found = f
		}
	}

	return found, nil
}

// Percolate matches doc on any available copy. This is a read against
// locally held state, so any in-sync copy may answer; copies are tried in
// order and the shard fails only when every copy does.
func (s *Shard) Percolate(doc *percolator.Document) ([]string, error) {

	var lastErr error
	for _, replica := range s.Replicas {
		matches, err := replica.Percolate(doc)
		if err != nil {
			lastErr = err
			continue
		}
		return matches, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no replicas")
	}
	return nil, fmt.Errorf("shard %d unavailable: %w", s.Id, lastErr)
}

// Queries is the number of registered queries, as seen by the primary.
func (s *Shard) Queries() int {
	return s.Replicas[0].Registry.Len()
}

func (s *Shard) Close() error {

	var lastErr error
	for _, replica := range s.Replicas {
		err := replica.Close()
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}
