package percolator

import (
	"encoding/json"
	"fmt"
)

// Document is the transient unit of matching. It lives for the duration of
// one percolate call and is never stored.
type Document struct {
	Fields map[string]interface{}
}

func ParseDocument(source json.RawMessage) (*Document, error) {

	fields := map[string]interface{}{}
	err := json.Unmarshal(source, &fields)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return &Document{Fields: fields}, nil
}
