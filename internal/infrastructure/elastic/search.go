package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/user-account-service/pkg/apperr"
)

// Shared request plumbing for the document adapters. Every mutation refreshes
// the index so the single-reader policy observes its own writes immediately.

func encodeQuery(query map[string]any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, apperr.Database("failed to encode query", err)
	}
	return &buf, nil
}

func termQuery(field, value string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"term": map[string]any{field: value},
		},
	}
}

type searchHits struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func runSearch(ctx context.Context, es *elasticsearch.Client, index string, query map[string]any, size int, sort string) (*searchHits, error) {
	body, err := encodeQuery(query)
	if err != nil {
		return nil, err
	}
	opts := []func(*esapi.SearchRequest){
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(body),
		es.Search.WithSize(size),
		es.Search.WithTrackTotalHits(true),
	}
	if sort != "" {
		opts = append(opts, es.Search.WithSort(sort))
	}
	res, err := es.Search(opts...)
	if err != nil {
		return nil, apperr.Database("document store search failed", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, apperr.Database("document store search failed", statusError(res.Status()))
	}
	parsed := &searchHits{}
	if err := json.NewDecoder(res.Body).Decode(parsed); err != nil {
		return nil, apperr.Database("failed to decode search response", err)
	}
	return parsed, nil
}

func indexDocument(ctx context.Context, es *elasticsearch.Client, index, id string, doc any, create bool) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return apperr.Database("failed to encode document", err)
	}
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(b),
		Refresh:    "true",
	}
	if create {
		req.OpType = "create"
	}
	res, err := req.Do(ctx, es)
	if err != nil {
		return apperr.Database("document store index failed", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == 409 {
		return apperr.Conflict("DOCUMENT_EXISTS", "Document already exists")
	}
	if res.IsError() {
		return apperr.Database("document store index failed", statusError(res.Status()))
	}
	return nil
}

func getDocument(ctx context.Context, es *elasticsearch.Client, index, id string, dest any) error {
	req := esapi.GetRequest{Index: index, DocumentID: id}
	res, err := req.Do(ctx, es)
	if err != nil {
		return apperr.Database("document store get failed", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == 404 {
		return apperr.NotFound("DOCUMENT_NOT_FOUND", "Document not found")
	}
	if res.IsError() {
		return apperr.Database("document store get failed", statusError(res.Status()))
	}
	var envelope struct {
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return apperr.Database("failed to decode document", err)
	}
	if err := json.Unmarshal(envelope.Source, dest); err != nil {
		return apperr.Database("failed to decode document", err)
	}
	return nil
}

func existsDocument(ctx context.Context, es *elasticsearch.Client, index, id string) (bool, error) {
	req := esapi.ExistsRequest{Index: index, DocumentID: id}
	res, err := req.Do(ctx, es)
	if err != nil {
		return false, apperr.Database("document store exists check failed", err)
	}
	defer func() { _ = res.Body.Close() }()
	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	default:
		return false, apperr.Database("document store exists check failed", statusError(res.Status()))
	}
}

func deleteDocument(ctx context.Context, es *elasticsearch.Client, index, id string) error {
	req := esapi.DeleteRequest{Index: index, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, es)
	if err != nil {
		return apperr.Database("document store delete failed", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == 404 {
		return apperr.NotFound("DOCUMENT_NOT_FOUND", "Document not found")
	}
	if res.IsError() {
		return apperr.Database("document store delete failed", statusError(res.Status()))
	}
	return nil
}

func deleteByQuery(ctx context.Context, es *elasticsearch.Client, index string, query map[string]any) (int64, error) {
	body, err := encodeQuery(query)
	if err != nil {
		return 0, err
	}
	refresh := true
	req := esapi.DeleteByQueryRequest{
		Index:   []string{index},
		Body:    body,
		Refresh: &refresh,
	}
	res, err := req.Do(ctx, es)
	if err != nil {
		return 0, apperr.Database("document store delete-by-query failed", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return 0, apperr.Database("document store delete-by-query failed", statusError(res.Status()))
	}
	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, apperr.Database("failed to decode delete-by-query response", err)
	}
	return parsed.Deleted, nil
}

func expiryRangeQuery(before time.Time) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"expires_at": map[string]any{
					"lt": before.UTC().Format(time.RFC3339Nano),
				},
			},
		},
	}
}

type statusError string

func (e statusError) Error() string { return "unexpected status " + strconv.Quote(string(e)) }
