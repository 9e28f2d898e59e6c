package content

import (
	"context"
	"encoding/json"

	"sourcetalk/internal/entity"
	"sourcetalk/internal/metrics"
	"sourcetalk/internal/pagination"
	"sourcetalk/internal/query"
)

// =============================================================================
// TYPED FETCHERS
// =============================================================================

// Fetcher loads one mapped page of a single resource.
type Fetcher[T any] struct {
	client   *Client
	resource query.Resource
	mapOne   func(json.RawMessage) T
}

// Resource returns the collection this fetcher reads.
func (f *Fetcher[T]) Resource() query.Resource { return f.resource }

// Fetch builds the query for req, requests it and maps every record.
func (f *Fetcher[T]) Fetch(ctx context.Context, req query.Request) (pagination.Page[T], error) {
	params, err := query.Build(f.resource, req)
	if err != nil {
		return pagination.Page[T]{}, err
	}

	raw, err := f.client.Fetch(ctx, f.resource, params)
	if err != nil {
		return pagination.Page[T]{}, err
	}

	items := make([]T, len(raw.Data))
	for i, r := range raw.Data {
		items[i] = f.mapOne(r)
	}

	p := raw.Meta.Pagination
	if p.Page <= 0 {
		p.Page = req.Page
	}
	if p.PageSize <= 0 {
		p.PageSize = req.PageSize
	}
	return pagination.Page[T]{Items: items, Pagination: p.Normalize()}, nil
}

// instrumented returns m with sentinel substitutions counted in metrics.
func instrumented(m entity.Mapper) entity.Mapper {
	if m.OnMissing == nil {
		m.OnMissing = metrics.RecordSentinel
	}
	return m
}

// NewProductFetcher returns a fetcher for the catalog collection.
func NewProductFetcher(c *Client, m entity.Mapper) *Fetcher[entity.Product] {
	m = instrumented(m)
	return &Fetcher[entity.Product]{client: c, resource: query.Catalogs, mapOne: m.Product}
}

// NewMaterialFetcher returns a fetcher for the materials collection.
func NewMaterialFetcher(c *Client, m entity.Mapper) *Fetcher[entity.Material] {
	m = instrumented(m)
	return &Fetcher[entity.Material]{client: c, resource: query.Materials, mapOne: m.Material}
}

// NewSupplierFetcher returns a fetcher for the suppliers collection.
func NewSupplierFetcher(c *Client, m entity.Mapper) *Fetcher[entity.Supplier] {
	m = instrumented(m)
	return &Fetcher[entity.Supplier]{client: c, resource: query.Suppliers, mapOne: m.Supplier}
}
