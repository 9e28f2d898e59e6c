package entity

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// record is a lenient view over one upstream JSON object.
type record map[string]any

// decodeRecord decodes raw as a JSON object with numbers kept as
// json.Number. Anything else yields an empty record.
func decodeRecord(raw json.RawMessage) record {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var r map[string]any
	if err := dec.Decode(&r); err != nil || r == nil {
		return record{}
	}
	return r
}

// str returns a non-blank string value. Numbers are accepted and rendered
// as written upstream.
func (r record) str(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

// number accepts JSON numbers and numeric strings. NaN and infinities are
// rejected.
func (r record) number(key string) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch v := r[key].(type) {
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (r record) integer(key string) (int, bool) {
	f, ok := r.number(key)
	if !ok || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

// money reads a decimal value without going through float64.
func (r record) money(key string) (decimal.Decimal, bool) {
	var s string
	switch v := r[key].(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// id renders the record id, numeric or string.
func (r record) id() string {
	s, _ := r.str("id")
	return s
}

// timeLayouts are tried in order by parseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
	"2.1.2006", // DD.MM.YYYY and D.M.YYYY
}

// ParseTime reads a timestamp or calendar date in any of the forms the
// content API produces.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (r record) timestamp(key string) (time.Time, bool) {
	s, ok := r.str(key)
	if !ok {
		return time.Time{}, false
	}
	return ParseTime(s)
}
