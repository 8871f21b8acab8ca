package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/percoladb/cluster"
)

func createIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	indexName := box.GetUrlParameter(ctx, "indexName")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	settings := &cluster.Settings{}
	if len(body) > 0 {
		err = json.Unmarshal(body, settings)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrorMalformedRequest, err.Error())
		}
	}

	index, err := s.CreateIndex(indexName, settings)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(index)
}
