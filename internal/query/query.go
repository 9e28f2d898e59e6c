// Package query turns a listing request into the ordered filter, sort and
// pagination parameters understood by the content API.
//
// The content API speaks the Strapi query dialect:
//
//	pagination[page]=2&pagination[pageSize]=12
//	filters[title][$containsi]=bolt
//	filters[qty][$gte]=5
//	filters[$or][0][codename][$eq]=ALPHA
//	sort=qty:desc
//
// Build is a pure function of its inputs. Only values that are set emit a
// parameter.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Resource names a content API collection.
type Resource string

const (
	Catalogs  Resource = "catalogs"
	Materials Resource = "materials"
	Suppliers Resource = "suppliers"
)

// Resources lists every collection in display order.
var Resources = []Resource{Catalogs, Materials, Suppliers}

var (
	// ErrInvalidSortOption is returned for a sort value outside the
	// resource's enumeration.
	ErrInvalidSortOption = errors.New("invalid sort option")

	// ErrUnsupportedFilter is returned when a filter is set that the
	// resource does not support.
	ErrUnsupportedFilter = errors.New("unsupported filter")

	// ErrUnknownResource is returned for a collection name that is not one
	// of Resources.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrInvalidPage is returned for a negative page or page size.
	ErrInvalidPage = errors.New("invalid page")
)

// ParseResource resolves a collection name, accepting the singular forms
// used on the command line.
func ParseResource(s string) (Resource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "catalogs", "catalog":
		return Catalogs, nil
	case "materials", "material":
		return Materials, nil
	case "suppliers", "supplier":
		return Suppliers, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

// DateLayout is the calendar-date form the content API filters on.
const DateLayout = "2006-01-02"

// NumberRange is an inclusive range with independently optional bounds.
type NumberRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r NumberRange) IsZero() bool { return r.Min == nil && r.Max == nil }

// Bound returns a pointer to v for building ranges.
func Bound(v float64) *float64 { return &v }

// DateRange is an inclusive date range. A zero time is an unset bound.
type DateRange struct {
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Filters is the union of filters across all resources.
type Filters struct {
	Search    string      `json:"search,omitempty"`
	Codename  string      `json:"codename,omitempty"`
	Kelompok  string      `json:"kelompok,omitempty"`
	Dates     DateRange   `json:"dates,omitzero"`
	Quantity  NumberRange `json:"quantity,omitzero"`
	Weight    NumberRange `json:"weight,omitzero"`
	Price     NumberRange `json:"price,omitzero"`
	Codenames []string    `json:"codenames,omitempty"`
}

// Request is one listing query.
type Request struct {
	Page     int     `json:"page,omitempty"`
	PageSize int     `json:"pageSize,omitempty"`
	Sort     Sort    `json:"sort,omitempty"`
	Filters  Filters `json:"filters"`
}

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list.
type Params []Param

// Encode renders the parameters as a query string in list order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}

// Get returns the value of the first parameter named key, or "".
func (p Params) Get(key string) string {
	for _, param := range p {
		if param.Key == key {
			return param.Value
		}
	}
	return ""
}

// Has reports whether a parameter named key is present.
func (p Params) Has(key string) bool {
	for _, param := range p {
		if param.Key == key {
			return true
		}
	}
	return false
}

func (p *Params) add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

// searchFields lists the fields a free-text search covers per resource.
var searchFields = map[Resource][]string{
	Catalogs:  {"title"},
	Materials: {"nama", "kode", "bahan_upah_alat_bantu"},
	Suppliers: {"nama_supplier", "kode", "pic"},
}

// Build produces the ordered parameter list for req against resource.
// Order: pagination, search, codename/kelompok, sort, date, quantity,
// weight, price, codename OR group.
func Build(resource Resource, req Request) (Params, error) {
	fields, ok := searchFields[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	if req.Page < 0 || req.PageSize < 0 {
		return nil, fmt.Errorf("%w: page=%d pageSize=%d", ErrInvalidPage, req.Page, req.PageSize)
	}
	if err := checkSupported(resource, req.Filters); err != nil {
		return nil, err
	}
	sortParam, err := req.Sort.Param(resource)
	if err != nil {
		return nil, err
	}

	f := req.Filters
	var params Params

	if req.Page > 0 {
		params.add("pagination[page]", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		params.add("pagination[pageSize]", strconv.Itoa(req.PageSize))
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		if len(fields) == 1 {
			params.add("filters["+fields[0]+"][$containsi]", search)
		} else {
			for i, field := range fields {
				params.add(fmt.Sprintf("filters[$or][%d][%s][$containsi]", i, field), search)
			}
		}
	}

	if codename := strings.TrimSpace(f.Codename); codename != "" {
		params.add("filters[codename][$containsi]", codename)
	}
	if kelompok := strings.TrimSpace(f.Kelompok); kelompok != "" {
		params.add("filters[kelompok][$containsi]", kelompok)
	}

	if sortParam != "" {
		params.add("sort", sortParam)
	}

	if !f.Dates.Start.IsZero() {
		params.add("filters[date][$gte]", f.Dates.Start.Format(DateLayout))
	}
	if !f.Dates.End.IsZero() {
		params.add("filters[date][$lte]", f.Dates.End.Format(DateLayout))
	}

	addRange(&params, "qty", f.Quantity)
	addRange(&params, "weight", f.Weight)
	addRange(&params, "harga_satuan", f.Price)

	i := 0
	for _, codename := range f.Codenames {
		if codename == "" {
			continue
		}
		params.add(fmt.Sprintf("filters[$or][%d][codename][$eq]", i), codename)
		i++
	}

	return params, nil
}

func addRange(params *Params, field string, r NumberRange) {
	if r.Min != nil {
		params.add("filters["+field+"][$gte]", formatNumber(*r.Min))
	}
	if r.Max != nil {
		params.add("filters["+field+"][$lte]", formatNumber(*r.Max))
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// checkSupported rejects filters the resource has no field for.
func checkSupported(resource Resource, f Filters) error {
	unsupported := func(name string) error {
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedFilter, name, resource)
	}

	switch resource {
	case Catalogs:
		if f.Kelompok != "" {
			return unsupported("kelompok")
		}
		if !f.Price.IsZero() {
			return unsupported("price range")
		}
	case Materials, Suppliers:
		if f.Codename != "" {
			return unsupported("codename")
		}
		if len(f.Codenames) > 0 {
			return unsupported("codenames")
		}
		if !f.Dates.IsZero() {
			return unsupported("date range")
		}
		if !f.Quantity.IsZero() {
			return unsupported("quantity range")
		}
		if !f.Weight.IsZero() {
			return unsupported("weight range")
		}
		if resource == Suppliers && !f.Price.IsZero() {
			return unsupported("price range")
		}
	}
	return nil
}

// Supports reports whether resource accepts the named filter: "search",
// "codename", "kelompok", "dates", "quantity", "weight", "price" or
// "codenames".
func Supports(resource Resource, filter string) bool {
	switch filter {
	case "search":
		_, ok := searchFields[resource]
		return ok
	case "codename", "dates", "quantity", "weight", "codenames":
		return resource == Catalogs
	case "kelompok":
		return resource == Materials || resource == Suppliers
	case "price":
		return resource == Materials
	}
	return false
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp,
// keeping only the date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
