package cluster

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/fulldump/percoladb/percolator"
)

// Replica is one copy of a shard's query registry plus the append-only log
// that makes its mutations durable.
type Replica struct {
	Primary  bool
	Registry *percolator.Registry

	log    *percolator.QueryLog
	closed atomic.Bool
}

type registerPayload struct {
	Id    string          `json:"id"`
	Query json.RawMessage `json:"query"`
}

type unregisterPayload struct {
	Id string `json:"id"`
}

// OpenReplica rebuilds the replica's registry by replaying its query log.
func OpenReplica(filename string, primary bool) (*Replica, error) {

	registry := percolator.NewRegistry()

	log, err := percolator.OpenQueryLog(filename, func(command *percolator.Command) error {
		switch command.Name {
		case "register":
			payload := &registerPayload{}
			err := json.Unmarshal(command.Payload, payload)
			if err != nil {
				return fmt.Errorf("decode register: %w", err)
			}
			_, _, err = registry.Install(payload.Id, payload.Query)
			if err != nil {
				// A query that no longer compiles must not block the rest of
				// the replay.
				fmt.Printf("WARNING: replay register '%s': %s\n", payload.Id, err.Error())
			}
		case "unregister":
			payload := &unregisterPayload{}
			err := json.Unmarshal(command.Payload, payload)
			if err != nil {
				return fmt.Errorf("decode unregister: %w", err)
			}
			registry.Remove(payload.Id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Replica{
		Primary:  primary,
		Registry: registry,
		log:      log,
	}, nil
}

// Register makes the write durable first and installs it only after the log
// accepts it. A failed write leaves the registry exactly as it was, so a
// query that was never acknowledged can never match.
func (r *Replica) Register(id string, query json.RawMessage) (*percolator.QueryEntry, bool, error) {

	if r.closed.Load() {
		return nil, false, fmt.Errorf("replica is closed")
	}

	// Reject uncompilable queries before they reach the log.
	_, err := percolator.Compile(query)
	if err != nil {
		return nil, false, err
	}

	err = r.log.Append("register", registerPayload{Id: id, Query: query})
	if err != nil {
		return nil, false, fmt.Errorf("persist register: %w", err)
	}

	return r.Registry.Install(id, query)
}

// Unregister follows the same durable-first order: if the log rejects the
// command the entry stays installed, matching what a replay would rebuild.
func (r *Replica) Unregister(id string) (bool, error) {

	if r.closed.Load() {
		return false, fmt.Errorf("replica is closed")
	}

	err := r.log.Append("unregister", unregisterPayload{Id: id})
	if err != nil {
		return false, fmt.Errorf("persist unregister: %w", err)
	}

	return r.Registry.Remove(id), nil
}

// Percolate matches doc against a snapshot of this replica's registry.
func (r *Replica) Percolate(doc *percolator.Document) ([]string, error) {

	if r.closed.Load() {
		return nil, fmt.Errorf("replica is closed")
	}

	return percolator.Match(r.Registry.Snapshot(), doc), nil
}

func (r *Replica) Close() error {
	r.closed.Store(true)
	return r.log.Close()
}

func (r *Replica) Drop() error {

	err := r.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	err = r.log.Remove()
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
