package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcetalk/internal/entity"
	"sourcetalk/internal/pagination"
	"sourcetalk/internal/query"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL + "/api/", Token: "secret", Timeout: 5 * time.Second})
}

func TestClient_FetchSendsQueryAndAuth(t *testing.T) {
	var gotPath, gotAuth, gotSearch, gotSort, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotSearch = r.URL.Query().Get("filters[title][$containsi]")
		gotSort = r.URL.Query().Get("sort")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [{"id": 1, "title": "Bolt", "qty": 4}, {"id": 2}],
			"meta": {"pagination": {"page": 1, "pageSize": 12, "pageCount": 3, "total": 30}}
		}`))
	})

	params, err := query.Build(query.Catalogs, query.Request{
		Page: 1, PageSize: 12, Sort: query.SortPopular,
		Filters: query.Filters{Search: "bolt"},
	})
	require.NoError(t, err)

	page, err := client.Fetch(context.Background(), query.Catalogs, params)
	require.NoError(t, err)

	assert.Equal(t, "/api/catalogs", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "bolt", gotSearch)
	assert.Equal(t, "qty:desc", gotSort)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, pagination.Pagination{Page: 1, PageSize: 12, PageCount: 3, Total: 30}, page.Meta.Pagination)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})

	_, err := client.Fetch(context.Background(), query.Materials, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "API Error: 500 Internal Server Error", err.Error())
	assert.Contains(t, apiErr.Body, "boom")
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := client.Fetch(context.Background(), query.Suppliers, nil)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url})
	_, err := client.Fetch(context.Background(), query.Catalogs, nil)
	assert.Error(t, err)
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, query.Catalogs, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Total(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("pagination[pageSize]"))
		w.Write([]byte(`{"data": [{}], "meta": {"pagination": {"page": 1, "pageSize": 1, "pageCount": 57, "total": 57}}}`))
	})

	total, err := client.Total(context.Background(), query.Suppliers)
	require.NoError(t, err)
	assert.Equal(t, 57, total)
}

func TestFetcher_MapsRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/materials", r.URL.Path)
		assert.Equal(t, "Bahan", r.URL.Query().Get("filters[kelompok][$containsi]"))
		w.Write([]byte(`{
			"data": [{"id": 3, "nama": "Pasir", "harga_satuan": 250000}, "not an object"],
			"meta": {"pagination": {"total": 14}}
		}`))
	})

	f := NewMaterialFetcher(client, entity.Mapper{})
	assert.Equal(t, query.Materials, f.Resource())

	page, err := f.Fetch(context.Background(), query.Request{
		Page: 2, PageSize: 12,
		Filters: query.Filters{Kelompok: "Bahan"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Pasir", page.Items[0].Nama.Value)
	assert.Equal(t, "Rp 250.000", entity.FormatIDR(page.Items[0].HargaSatuan.Value))
	assert.Equal(t, entity.UnnamedMaterial, page.Items[1].Nama.Value)

	assert.Equal(t, pagination.Pagination{Page: 2, PageSize: 12, PageCount: 2, Total: 14}, page.Pagination)
}

func TestFetcher_RejectsInvalidRequestWithoutCalling(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := NewSupplierFetcher(client, entity.Mapper{}).Fetch(context.Background(), query.Request{Sort: "price-low"})
	assert.ErrorIs(t, err, query.ErrInvalidSortOption)

	_, err = NewProductFetcher(client, entity.Mapper{}).Fetch(context.Background(), query.Request{
		Filters: query.Filters{Kelompok: "x"},
	})
	assert.ErrorIs(t, err, query.ErrUnsupportedFilter)
	assert.False(t, called)
}
