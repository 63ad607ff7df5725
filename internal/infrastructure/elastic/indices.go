package elastic

import (
	"context"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// Indices names the three document-store indices. The document store is the
// read-of-record; index mappings keep every queried field a keyword so term
// lookups are exact.
type Indices struct {
	Users       string
	Refresh     string
	ResetTokens string
}

const userMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "name":       {"type": "text"},
      "email":      {"type": "keyword"},
      "password":   {"type": "keyword", "index": false},
      "role":       {"type": "keyword"},
      "age":        {"type": "integer"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

const refreshTokenMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "token":      {"type": "keyword"},
      "user_id":    {"type": "keyword"},
      "expires_at": {"type": "date"},
      "created_at": {"type": "date"}
    }
  }
}`

const resetTokenMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "token_hash": {"type": "keyword"},
      "user_id":    {"type": "keyword"},
      "expires_at": {"type": "date"},
      "created_at": {"type": "date"}
    }
  }
}`

// EnsureIndices creates any missing index with its mapping. Existing indices
// are left untouched.
func EnsureIndices(ctx context.Context, es *elasticsearch.Client, idx Indices) error {
	for name, mapping := range map[string]string{
		idx.Users:       userMapping,
		idx.Refresh:     refreshTokenMapping,
		idx.ResetTokens: resetTokenMapping,
	} {
		exists, err := es.Indices.Exists([]string{name}, es.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		_ = exists.Body.Close()
		if exists.StatusCode == 200 {
			continue
		}
		res, err := es.Indices.Create(name,
			es.Indices.Create.WithContext(ctx),
			es.Indices.Create.WithBody(strings.NewReader(mapping)),
		)
		if err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
		if res.IsError() {
			err = fmt.Errorf("create index %s: %s", name, res.Status())
		}
		_ = res.Body.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
