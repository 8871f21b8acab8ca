package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/percoladb/service"
)

func getIndex(ctx context.Context) (*service.Index, error) {

	s := GetServicer(ctx)
	indexName := box.GetUrlParameter(ctx, "indexName")

	return s.GetIndex(indexName)
}
