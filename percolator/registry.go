package percolator

import (
	"encoding/json"
	"sync"

	"github.com/google/btree"
)

// QueryEntry is one registered query. Immutable once installed; overwriting
// an id replaces the whole entry.
type QueryEntry struct {
	ID        string
	Source    json.RawMessage
	Version   int64
	predicate Predicate
}

// Registry holds the queries registered on one shard replica.
//
// Writers serialize on a mutex; readers take Snapshot, an O(1) clone of the
// backing btree, and iterate it without holding any lock. Installs and
// removes that start after the clone are invisible to it (copy-on-write
// structural sharing), so matching never blocks registration and vice versa.
type Registry struct {
	mu      sync.Mutex
	entries *btree.BTreeG[*QueryEntry]
}

func NewRegistry() *Registry {
	return &Registry{
		entries: btree.NewG(16, func(a, b *QueryEntry) bool {
			return a.ID < b.ID
		}),
	}
}

// Install compiles source and installs it under id, replacing any previous
// entry. On compile failure the registry is left untouched. The returned
// created flag is false on overwrite.
func (r *Registry) Install(id string, source json.RawMessage) (*QueryEntry, bool, error) {

	predicate, err := Compile(source)
	if err != nil {
		return nil, false, err
	}

	entry := &QueryEntry{
		ID:        id,
		Source:    source,
		Version:   1,
		predicate: predicate,
	}

	r.mu.Lock()
	previous, exists := r.entries.Get(&QueryEntry{ID: id})
	if exists {
		entry.Version = previous.Version + 1
	}
	r.entries.ReplaceOrInsert(entry)
	r.mu.Unlock()

	return entry, !exists, nil
}

// Remove deletes the entry for id and reports whether one was present.
// Removing an absent id is a no-op, never an error.
func (r *Registry) Remove(id string) bool {

	r.mu.Lock()
	_, found := r.entries.Delete(&QueryEntry{ID: id})
	r.mu.Unlock()

	return found
}

func (r *Registry) Len() int {

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entries.Len()
}

// Snapshot is a consistent point-in-time view of a Registry, valid for the
// lifetime of one matching pass.
type Snapshot struct {
	entries *btree.BTreeG[*QueryEntry]
}

func (r *Registry) Snapshot() *Snapshot {

	r.mu.Lock()
	clone := r.entries.Clone()
	r.mu.Unlock()

	return &Snapshot{entries: clone}
}

func (s *Snapshot) Len() int {
	return s.entries.Len()
}

// Ascend visits every entry in id order. Return false to stop.
func (s *Snapshot) Ascend(f func(entry *QueryEntry) bool) {
	s.entries.Ascend(f)
}
