package query

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuild_CatalogFullRequest(t *testing.T) {
	req := Request{
		Page:     2,
		PageSize: 12,
		Sort:     SortPopular,
		Filters: Filters{
			Search:    "bolt",
			Codename:  "alp",
			Dates:     DateRange{Start: time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), End: date("2024-06-30")},
			Quantity:  NumberRange{Min: Bound(5), Max: Bound(100)},
			Weight:    NumberRange{Min: Bound(0.5), Max: Bound(12.25)},
			Codenames: []string{"BETA", "ALPHA"},
		},
	}

	got, err := Build(Catalogs, req)
	require.NoError(t, err)

	want := Params{
		{"pagination[page]", "2"},
		{"pagination[pageSize]", "12"},
		{"filters[title][$containsi]", "bolt"},
		{"filters[codename][$containsi]", "alp"},
		{"sort", "qty:desc"},
		{"filters[date][$gte]", "2024-01-01"},
		{"filters[date][$lte]", "2024-06-30"},
		{"filters[qty][$gte]", "5"},
		{"filters[qty][$lte]", "100"},
		{"filters[weight][$gte]", "0.5"},
		{"filters[weight][$lte]", "12.25"},
		{"filters[$or][0][codename][$eq]", "BETA"},
		{"filters[$or][1][codename][$eq]", "ALPHA"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EmptyRequestHasNoParams(t *testing.T) {
	for _, r := range Resources {
		got, err := Build(r, Request{})
		require.NoError(t, err)
		assert.Empty(t, got, "resource %s", r)
	}
}

func TestBuild_LowerBoundOnly(t *testing.T) {
	tests := []struct {
		name   string
		filter Filters
		lower  string
		upper  string
	}{
		{"quantity", Filters{Quantity: NumberRange{Min: Bound(3)}}, "filters[qty][$gte]", "filters[qty][$lte]"},
		{"weight", Filters{Weight: NumberRange{Min: Bound(1.5)}}, "filters[weight][$gte]", "filters[weight][$lte]"},
		{"date", Filters{Dates: DateRange{Start: date("2024-03-01")}}, "filters[date][$gte]", "filters[date][$lte]"},
		{"zero is a bound", Filters{Quantity: NumberRange{Min: Bound(0)}}, "filters[qty][$gte]", "filters[qty][$lte]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(Catalogs, Request{Filters: tt.filter})
			require.NoError(t, err)
			assert.True(t, got.Has(tt.lower))
			assert.False(t, got.Has(tt.upper))
		})
	}
}

func TestBuild_UpperBoundOnly(t *testing.T) {
	got, err := Build(Materials, Request{Filters: Filters{Price: NumberRange{Max: Bound(250000)}}})
	require.NoError(t, err)
	assert.Equal(t, Params{{"filters[harga_satuan][$lte]", "250000"}}, got)
}

func TestBuild_CodenameOrGroupFollowsSelectionOrder(t *testing.T) {
	for n := 1; n <= 6; n++ {
		selected := make([]string, n)
		for i := range selected {
			selected[i] = fmt.Sprintf("C%d", n-i)
		}

		got, err := Build(Catalogs, Request{Filters: Filters{Codenames: selected}})
		require.NoError(t, err)
		require.Len(t, got, n)
		for i, p := range got {
			assert.Equal(t, fmt.Sprintf("filters[$or][%d][codename][$eq]", i), p.Key)
			assert.Equal(t, selected[i], p.Value)
		}
	}
}

func TestBuild_MultiFieldSearch(t *testing.T) {
	got, err := Build(Materials, Request{Filters: Filters{Search: "semen", Kelompok: "Bahan"}})
	require.NoError(t, err)
	want := Params{
		{"filters[$or][0][nama][$containsi]", "semen"},
		{"filters[$or][1][kode][$containsi]", "semen"},
		{"filters[$or][2][bahan_upah_alat_bantu][$containsi]", "semen"},
		{"filters[kelompok][$containsi]", "Bahan"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("materials mismatch (-want +got):\n%s", diff)
	}

	got, err = Build(Suppliers, Request{Filters: Filters{Search: "budi"}, Sort: SortUpdateDate})
	require.NoError(t, err)
	want = Params{
		{"filters[$or][0][nama_supplier][$containsi]", "budi"},
		{"filters[$or][1][kode][$containsi]", "budi"},
		{"filters[$or][2][pic][$containsi]", "budi"},
		{"sort", "tanggal_update:desc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suppliers mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SearchIsTrimmed(t *testing.T) {
	got, err := Build(Catalogs, Request{Filters: Filters{Search: "   "}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuild_InvalidSort(t *testing.T) {
	_, err := Build(Catalogs, Request{Sort: "cheapest"})
	assert.True(t, errors.Is(err, ErrInvalidSortOption))

	// valid for materials, not for catalogs
	_, err = Build(Catalogs, Request{Sort: SortPriceLow})
	assert.ErrorIs(t, err, ErrInvalidSortOption)
}

func TestBuild_UnsupportedFilter(t *testing.T) {
	tests := []struct {
		name     string
		resource Resource
		filters  Filters
	}{
		{"kelompok on catalogs", Catalogs, Filters{Kelompok: "Bahan"}},
		{"price on catalogs", Catalogs, Filters{Price: NumberRange{Min: Bound(1)}}},
		{"codenames on materials", Materials, Filters{Codenames: []string{"A"}}},
		{"dates on suppliers", Suppliers, Filters{Dates: DateRange{End: date("2024-01-01")}}},
		{"price on suppliers", Suppliers, Filters{Price: NumberRange{Max: Bound(1)}}},
		{"weight on materials", Materials, Filters{Weight: NumberRange{Max: Bound(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.resource, Request{Filters: tt.filters})
			assert.ErrorIs(t, err, ErrUnsupportedFilter)
		})
	}
}

func TestBuild_InvalidInput(t *testing.T) {
	_, err := Build("orders", Request{})
	assert.ErrorIs(t, err, ErrUnknownResource)

	_, err = Build(Catalogs, Request{Page: -1})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestSupportsMatchesBuild(t *testing.T) {
	assert.True(t, Supports(Catalogs, "codenames"))
	assert.True(t, Supports(Materials, "price"))
	assert.False(t, Supports(Suppliers, "price"))
	assert.True(t, Supports(Suppliers, "kelompok"))
	assert.False(t, Supports(Catalogs, "kelompok"))
	assert.False(t, Supports(Catalogs, "colour"))
}

func TestParams_Encode(t *testing.T) {
	p := Params{
		{"pagination[page]", "1"},
		{"filters[title][$containsi]", "hex bolt"},
	}
	assert.Equal(t, "pagination%5Bpage%5D=1&filters%5Btitle%5D%5B%24containsi%5D=hex+bolt", p.Encode())
	assert.Equal(t, "hex bolt", p.Get("filters[title][$containsi]"))
	assert.Equal(t, "", p.Get("sort"))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-05-17T13:45:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, date("2024-05-17"), got)

	got, err = ParseDate(" 2024-05-17 ")
	require.NoError(t, err)
	assert.Equal(t, date("2024-05-17"), got)

	_, err = ParseDate("17.05.2024")
	assert.Error(t, err)
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource("Catalog")
	require.NoError(t, err)
	assert.Equal(t, Catalogs, r)

	_, err = ParseResource("orders")
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestSortCycle(t *testing.T) {
	assert.Equal(t, SortPopular, DefaultSort(Catalogs))
	assert.Equal(t, SortName, NextSort(Catalogs, SortPopular))
	assert.Equal(t, SortPopular, NextSort(Catalogs, SortWeightHigh))
	assert.Equal(t, SortRecent, NextSort(Suppliers, "bogus"))
	assert.Len(t, SortOptions(Materials), 6)

	for _, r := range Resources {
		for _, s := range SortOptions(r) {
			_, err := s.Param(r)
			assert.NoError(t, err, "%s/%s", r, s)
		}
	}
}
