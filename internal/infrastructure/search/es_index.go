package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
)

const requestTimeout = 3 * time.Second

// ESIndex mirrors each collection into its own index named prefix+collection.
type ESIndex struct {
	client *elasticsearch.Client
	prefix string
}

func NewESIndex(client *elasticsearch.Client, prefix string) *ESIndex {
	return &ESIndex{client: client, prefix: prefix}
}

func (x *ESIndex) indexName(collection string) string {
	return x.prefix + collection
}

func (x *ESIndex) Index(ctx context.Context, d *entity.Document) error {
	// _id is metadata in ES; it travels as DocumentID, not in the source.
	src := d.View()
	delete(src, "_id")
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.indexName(d.Collection), DocumentID: d.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s/%s: %s", d.Collection, d.ID, res.Status())
	}
	return nil
}

func (x *ESIndex) Delete(ctx context.Context, collection, id string) error {
	req := esapi.DeleteRequest{Index: x.indexName(collection), DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// 404 means it was never indexed
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s/%s: %s", collection, id, res.Status())
	}
	return nil
}

func (x *ESIndex) DeleteAll(ctx context.Context, collection string) error {
	body := []byte(`{"query":{"match_all":{}}}`)
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.client.DeleteByQuery(
		[]string{x.indexName(collection)},
		bytes.NewReader(body),
		x.client.DeleteByQuery.WithContext(c),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete_by_query %s: %s", collection, res.Status())
	}
	return nil
}

// Search runs a multi_match over all fields of the collection index.
func (x *ESIndex) Search(ctx context.Context, collection, q string, size int) ([]map[string]any, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"*"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.client.Search(
		x.client.Search.WithContext(c),
		x.client.Search.WithIndex(x.indexName(collection)),
		x.client.Search.WithBody(bytes.NewReader(b)),
		x.client.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search %s: %s", collection, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if h.Source == nil {
			h.Source = map[string]any{}
		}
		h.Source["_id"] = h.ID
		out = append(out, h.Source)
	}
	return out, nil
}

var _ repository.SearchIndex = (*ESIndex)(nil)
