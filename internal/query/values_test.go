package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues_Full(t *testing.T) {
	v := url.Values{
		"page":      {"3"},
		"pageSize":  {"24"},
		"sort":      {"weight-high"},
		"search":    {"bolt"},
		"dateStart": {"2024-01-01T08:00:00Z"},
		"dateEnd":   {"2024-02-01"},
		"qtyMin":    {"5"},
		"weightMax": {"2.5"},
		"codenames": {"GAMMA", " ", "ALPHA"},
	}

	req, err := ParseValues(v, 12)
	require.NoError(t, err)

	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 24, req.PageSize)
	assert.Equal(t, SortWeightHigh, req.Sort)
	assert.Equal(t, "bolt", req.Filters.Search)
	assert.Equal(t, date("2024-01-01"), req.Filters.Dates.Start)
	assert.Equal(t, date("2024-02-01"), req.Filters.Dates.End)
	assert.Equal(t, 5.0, *req.Filters.Quantity.Min)
	assert.Nil(t, req.Filters.Quantity.Max)
	assert.Equal(t, 2.5, *req.Filters.Weight.Max)
	assert.True(t, req.Filters.Price.IsZero())
	assert.Equal(t, []string{"GAMMA", "ALPHA"}, req.Filters.Codenames)

	params, err := Build(Catalogs, req)
	require.NoError(t, err)
	assert.Equal(t, "3", params.Get("pagination[page]"))
}

func TestParseValues_Defaults(t *testing.T) {
	req, err := ParseValues(url.Values{}, 12)
	require.NoError(t, err)
	assert.Equal(t, Request{Page: 1, PageSize: 12}, req)
}

func TestParseValues_Errors(t *testing.T) {
	tests := []struct {
		name string
		v    url.Values
		want error
	}{
		{"page not a number", url.Values{"page": {"two"}}, ErrInvalidParam},
		{"page zero", url.Values{"page": {"0"}}, ErrInvalidPage},
		{"negative page size", url.Values{"pageSize": {"-1"}}, ErrInvalidPage},
		{"bad bound", url.Values{"priceMin": {"cheap"}}, ErrInvalidParam},
		{"bad date", url.Values{"dateEnd": {"31/12/2024"}}, ErrInvalidParam},
		{"NaN bound", url.Values{"qtyMin": {"NaN"}}, ErrInvalidParam},
		{"infinite bound", url.Values{"weightMax": {"Inf"}}, ErrInvalidParam},
		{"overflowing bound", url.Values{"priceMax": {"1e400"}}, ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseValues(tt.v, 12)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
