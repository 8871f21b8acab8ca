package service

import (
	"context"
	"encoding/json"

	"github.com/fulldump/percoladb/cluster"
	"github.com/fulldump/percoladb/utils"
)

type Service struct {
	cluster *cluster.Cluster
}

func NewService(c *cluster.Cluster) *Service {
	return &Service{
		cluster: c,
	}
}

func describe(index *cluster.Index) *Index {
	return &Index{
		Name:     index.Name,
		Shards:   index.Settings.Shards,
		Replicas: index.Settings.Replicas,
		Queries:  index.Queries(),
	}
}

func (s *Service) CreateIndex(name string, settings *cluster.Settings) (*Index, error) {

	index, err := s.cluster.CreateIndex(name, settings)
	if err != nil {
		return nil, err
	}

	return describe(index), nil
}

func (s *Service) GetIndex(name string) (*Index, error) {

	index, err := s.cluster.GetIndex(name)
	if err != nil {
		return nil, err
	}

	return describe(index), nil
}

func (s *Service) ListIndexes() ([]*Index, error) {

	indexes := s.cluster.ListIndexes()

	result := []*Index{}
	for _, name := range utils.GetKeys(indexes) {
		result = append(result, describe(indexes[name]))
	}

	return result, nil
}

func (s *Service) DeleteIndex(name string) error {
	return s.cluster.DeleteIndex(name)
}

func (s *Service) RegisterQuery(indexName, id string, query json.RawMessage) (*RegisterResult, error) {

	index, err := s.cluster.GetIndex(indexName)
	if err == ErrorIndexNotFound {
		// Writing to a missing index creates it with default settings, the
		// same way ordinary document writes do.
		_, err = s.cluster.CreateIndex(indexName, nil)
		if err != nil && err != ErrorIndexAlreadyExists {
			return nil, err
		}
		index, err = s.cluster.GetIndex(indexName)
	}
	if err != nil {
		return nil, err
	}

	entry, created, err := index.Register(id, query)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		Id:      entry.ID,
		Version: entry.Version,
		Created: created,
	}, nil
}

func (s *Service) UnregisterQuery(indexName, id string) (*UnregisterResult, error) {

	index, err := s.cluster.GetIndex(indexName)
	if err != nil {
		return nil, err
	}

	found, err := index.Unregister(id)
	if err != nil {
		return nil, err
	}

	return &UnregisterResult{
		Id:    id,
		Found: found,
	}, nil
}

func (s *Service) Percolate(ctx context.Context, indexName string, doc json.RawMessage) (*cluster.PercolateResult, error) {
	return s.cluster.Percolate(ctx, indexName, doc)
}
