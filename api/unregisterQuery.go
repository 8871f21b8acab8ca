package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/percoladb/service"
)

func unregisterQuery(ctx context.Context) (*service.UnregisterResult, error) {

	s := GetServicer(ctx)
	indexName := box.GetUrlParameter(ctx, "indexName")
	queryId := box.GetUrlParameter(ctx, "queryId")

	// found=false is a regular response, not an error.
	return s.UnregisterQuery(indexName, queryId)
}
