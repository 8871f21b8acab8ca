package service

import (
	"context"
	"encoding/json"

	"github.com/fulldump/percoladb/cluster"
)

var ErrorIndexNotFound = cluster.ErrorIndexNotFound
var ErrorIndexAlreadyExists = cluster.ErrorIndexAlreadyExists

type Index struct {
	Name     string `json:"name"`
	Shards   int    `json:"shards"`
	Replicas int    `json:"replicas"`
	Queries  int    `json:"queries"`
}

type RegisterResult struct {
	Id      string `json:"id"`
	Version int64  `json:"version"`
	Created bool   `json:"created"`
}

type UnregisterResult struct {
	Id    string `json:"id"`
	Found bool   `json:"found"`
}

type Servicer interface {
	CreateIndex(name string, settings *cluster.Settings) (*Index, error)
	GetIndex(name string) (*Index, error)
	ListIndexes() ([]*Index, error)
	DeleteIndex(name string) error
	RegisterQuery(index, id string, query json.RawMessage) (*RegisterResult, error)
	UnregisterQuery(index, id string) (*UnregisterResult, error)
	Percolate(ctx context.Context, index string, doc json.RawMessage) (*cluster.PercolateResult, error)
}
