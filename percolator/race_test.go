package percolator

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Readers iterate snapshots while writers install and remove entries. The
// exact match sets are checked elsewhere; this test is about snapshot
// consumers and registry writers not corrupting each other.
func TestRaceInstallMatch(t *testing.T) {

	r := NewRegistry()
	doc, _ := ParseDocument(json.RawMessage(`{"field1":"value"}`))

	var wg sync.WaitGroup
	wg.Add(3)

	start := time.Now()
	duration := 2 * time.Second

	// Writer
	go func() {
		defer wg.Done()
		i := 0
		for time.Since(start) < duration {
			_, _, err := r.Install(fmt.Sprintf("q%d", i), json.RawMessage(`{"term":{"field1":"value"}}`))
			if err != nil {
				t.Error(err)
				return
			}
			i++
		}
	}()

	// Remover
	go func() {
		defer wg.Done()
		i := 0
		for time.Since(start) < duration {
			r.Remove(fmt.Sprintf("q%d", i))
			i++
		}
	}()

	// Reader
	go func() {
		defer wg.Done()
		for time.Since(start) < duration {
			Match(r.Snapshot(), doc)
		}
	}()

	wg.Wait()
}

// Every install acknowledged before a snapshot is taken must be visible in
// that snapshot: the observed match count never goes below the count known
// to be committed.
func TestConcurrentInstallVisibility(t *testing.T) {

	r := NewRegistry()
	doc, _ := ParseDocument(json.RawMessage(`{"field1":"value"}`))

	var committed int64
	var wg sync.WaitGroup

	writers := 3
	perWriter := 500
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				_, _, err := r.Install(id, json.RawMessage(`{"term":{"field1":"value"}}`))
				if err != nil {
					t.Error(err)
					return
				}
				atomic.AddInt64(&committed, 1)
			}
		}(w)
	}

	readers := 5
	for g := 0; g < readers; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				atLeast := atomic.LoadInt64(&committed)
				matches := Match(r.Snapshot(), doc)
				if int64(len(matches)) < atLeast {
					t.Errorf("got %d matches, at least %d were committed", len(matches), atLeast)
					return
				}
			}
		}()
	}

	wg.Wait()
}
