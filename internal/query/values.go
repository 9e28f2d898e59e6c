package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidParam is returned by ParseValues for a malformed parameter.
var ErrInvalidParam = errors.New("invalid parameter")

// ParseValues reads a Request from plain query parameters:
//
//	page, pageSize, sort, search, codename, kelompok, dateStart, dateEnd,
//	qtyMin, qtyMax, weightMin, weightMax, priceMin, priceMax, codenames
//
// codenames may repeat. Absent values leave the field zero; pageSize falls
// back to defaultPageSize.
func ParseValues(v url.Values, defaultPageSize int) (Request, error) {
	req := Request{Page: 1, PageSize: defaultPageSize}

	var err error
	if req.Page, err = intValue(v, "page", 1); err != nil {
		return Request{}, err
	}
	if req.PageSize, err = intValue(v, "pageSize", defaultPageSize); err != nil {
		return Request{}, err
	}
	if req.Page < 1 || req.PageSize < 1 {
		return Request{}, fmt.Errorf("%w: page=%d pageSize=%d", ErrInvalidPage, req.Page, req.PageSize)
	}

	req.Sort = Sort(strings.TrimSpace(v.Get("sort")))

	f := &req.Filters
	f.Search = v.Get("search")
	f.Codename = v.Get("codename")
	f.Kelompok = v.Get("kelompok")

	if s := v.Get("dateStart"); s != "" {
		if f.Dates.Start, err = ParseDate(s); err != nil {
			return Request{}, fmt.Errorf("%w: dateStart: %v", ErrInvalidParam, err)
		}
	}
	if s := v.Get("dateEnd"); s != "" {
		if f.Dates.End, err = ParseDate(s); err != nil {
			return Request{}, fmt.Errorf("%w: dateEnd: %v", ErrInvalidParam, err)
		}
	}

	ranges := []struct {
		prefix string
		dst    *NumberRange
	}{
		{"qty", &f.Quantity},
		{"weight", &f.Weight},
		{"price", &f.Price},
	}
	for _, r := range ranges {
		if r.dst.Min, err = floatValue(v, r.prefix+"Min"); err != nil {
			return Request{}, err
		}
		if r.dst.Max, err = floatValue(v, r.prefix+"Max"); err != nil {
			return Request{}, err
		}
	}

	for _, name := range v["codenames"] {
		if name = strings.TrimSpace(name); name != "" {
			f.Codenames = append(f.Codenames, name)
		}
	}
	return req, nil
}

func intValue(v url.Values, key string, fallback int) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, s)
	}
	return n, nil
}

func floatValue(v url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, s)
	}
	return &f, nil
}
