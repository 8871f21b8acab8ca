package percolator

import (
	"fmt"
)

// Match evaluates doc against every entry of the snapshot and returns the
// ids whose predicate holds, in id order.
//
// Entries are independent: there is no short circuit across them, and an
// entry whose predicate cannot be evaluated against this document (a field
// indexed with one type and queried with another, for instance) counts as
// non-matching instead of aborting the pass.
func Match(snapshot *Snapshot, doc *Document) []string {

	matches := []string{}
	snapshot.Ascend(func(entry *QueryEntry) bool {
		match, err := entry.predicate.Test(doc)
		if err != nil {
			fmt.Printf("WARNING: evaluate query '%s': %s\n", entry.ID, err.Error())
			return true
		}
		if match {
			matches = append(matches, entry.ID)
		}
		return true
	})

	return matches
}
