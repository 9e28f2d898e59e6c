package query

import "fmt"

// Sort is a resource-specific sort option. The empty Sort leaves ordering to
// the content API.
type Sort string

// Catalog sort options.
const (
	SortPopular    Sort = "popular"
	SortName       Sort = "name"
	SortDateNew    Sort = "date-new"
	SortDateOld    Sort = "date-old"
	SortWeightLow  Sort = "weight-low"
	SortWeightHigh Sort = "weight-high"
)

// Material and supplier sort options. SortName is shared.
const (
	SortRecent     Sort = "recent"
	SortPriceLow   Sort = "price-low"
	SortPriceHigh  Sort = "price-high"
	SortStockLow   Sort = "stock-low"
	SortStockHigh  Sort = "stock-high"
	SortKelompok   Sort = "kelompok"
	SortUpdateDate Sort = "update-date"
)

type sortOption struct {
	sort  Sort
	param string
}

var sortOptions = map[Resource][]sortOption{
	Catalogs: {
		{SortPopular, "qty:desc"},
		{SortName, "title:asc"},
		{SortDateNew, "date:desc"},
		{SortDateOld, "date:asc"},
		{SortWeightLow, "weight:asc"},
		{SortWeightHigh, "weight:desc"},
	},
	Materials: {
		{SortRecent, "createdAt:desc"},
		{SortName, "nama:asc"},
		{SortPriceLow, "harga_satuan:asc"},
		{SortPriceHigh, "harga_satuan:desc"},
		{SortStockLow, "no:asc"},
		{SortStockHigh, "no:desc"},
	},
	Suppliers: {
		{SortRecent, "createdAt:desc"},
		{SortName, "nama_supplier:asc"},
		{SortKelompok, "kelompok:asc"},
		{SortUpdateDate, "tanggal_update:desc"},
	},
}

// Param returns the field:direction value for s on resource. The empty
// Sort yields "".
func (s Sort) Param(resource Resource) (string, error) {
	if s == "" {
		return "", nil
	}
	for _, opt := range sortOptions[resource] {
		if opt.sort == s {
			return opt.param, nil
		}
	}
	return "", fmt.Errorf("%w: %q for %s", ErrInvalidSortOption, string(s), resource)
}

// SortOptions returns the sort options of resource in display order.
func SortOptions(resource Resource) []Sort {
	opts := sortOptions[resource]
	out := make([]Sort, len(opts))
	for i, opt := range opts {
		out[i] = opt.sort
	}
	return out
}

// DefaultSort is the option a fresh listing of resource starts with.
func DefaultSort(resource Resource) Sort {
	if opts := sortOptions[resource]; len(opts) > 0 {
		return opts[0].sort
	}
	return ""
}

// NextSort cycles to the option after s, wrapping around.
func NextSort(resource Resource, s Sort) Sort {
	opts := sortOptions[resource]
	if len(opts) == 0 {
		return ""
	}
	for i, opt := range opts {
		if opt.sort == s {
			return opts[(i+1)%len(opts)].sort
		}
	}
	return opts[0].sort
}
