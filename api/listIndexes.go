package api

import (
	"context"

	"github.com/fulldump/percoladb/service"
)

func listIndexes(ctx context.Context) ([]*service.Index, error) {

	s := GetServicer(ctx)

	return s.ListIndexes()
}
