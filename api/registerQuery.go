package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"
	"github.com/tidwall/gjson"
)

func registerQuery(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	indexName := box.GetUrlParameter(ctx, "indexName")
	queryId := box.GetUrlParameter(ctx, "queryId")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	query := gjson.GetBytes(body, "query")
	if !query.Exists() {
		return fmt.Errorf("%w: body must contain a 'query' member", ErrorMalformedRequest)
	}

	result, err := s.RegisterQuery(indexName, queryId, json.RawMessage(query.Raw))
	if err != nil {
		return err
	}

	if result.Created {
		w.WriteHeader(http.StatusCreated)
	}
	return json.NewEncoder(w).Encode(result)
}
