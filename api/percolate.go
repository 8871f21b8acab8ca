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

func percolate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	indexName := box.GetUrlParameter(ctx, "indexName")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	doc := gjson.GetBytes(body, "doc")
	if !doc.Exists() {
		return fmt.Errorf("%w: body must contain a 'doc' member", ErrorMalformedRequest)
	}

	result, err := s.Percolate(ctx, indexName, json.RawMessage(doc.Raw))
	if err != nil {
		return err
	}

	return json.NewEncoder(w).Encode(result)
}
