package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fulldump/box"
)

func deleteIndex(ctx context.Context, w http.ResponseWriter) error {

	s := GetServicer(ctx)
	indexName := box.GetUrlParameter(ctx, "indexName")

	err := s.DeleteIndex(indexName)
	if err != nil {
		return err
	}

	return json.NewEncoder(w).Encode(map[string]interface{}{
		"acknowledged": true,
	})
}
