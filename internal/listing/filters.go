package listing

import (
	"slices"
	"strings"
	"time"

	"sourcetalk/internal/query"
)

// Range identifies one of the numeric range filters.
type Range int

const (
	RangeQuantity Range = iota
	RangeWeight
	RangePrice
)

// Step is the smallest gap kept between the bounds of r when an edit would
// cross them.
func (r Range) Step() float64 {
	if r == RangeWeight {
		return 0.1
	}
	return 1
}

func (r Range) String() string {
	switch r {
	case RangeQuantity:
		return "quantity"
	case RangeWeight:
		return "weight"
	case RangePrice:
		return "price"
	}
	return "unknown"
}

// CodenameOption is one selectable codename.
type CodenameOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// FilterState is the user's filter selection for one listing. Mutate it
// through Listing.Edit so that loads are debounced.
type FilterState struct {
	Search   string
	Codename string
	Kelompok string
	Dates    query.DateRange
	Quantity query.NumberRange
	Weight   query.NumberRange
	Price    query.NumberRange

	Codenames []CodenameOption
	// selected holds checked codename IDs in the order they were checked.
	selected []string
}

func (f *FilterState) rangeRef(r Range) *query.NumberRange {
	switch r {
	case RangeWeight:
		return &f.Weight
	case RangePrice:
		return &f.Price
	default:
		return &f.Quantity
	}
}

// SetMin sets the lower bound of r; nil clears it. A lower bound above the
// current upper bound is clamped to max - step.
func (f *FilterState) SetMin(r Range, v *float64) {
	rng := f.rangeRef(r)
	if v == nil {
		rng.Min = nil
		return
	}
	val := *v
	if rng.Max != nil && val > *rng.Max {
		val = *rng.Max - r.Step()
	}
	rng.Min = &val
}

// SetMax sets the upper bound of r; nil clears it. An upper bound below the
// current lower bound is clamped to min + step.
func (f *FilterState) SetMax(r Range, v *float64) {
	rng := f.rangeRef(r)
	if v == nil {
		rng.Max = nil
		return
	}
	val := *v
	if rng.Min != nil && val < *rng.Min {
		val = *rng.Min + r.Step()
	}
	rng.Max = &val
}

// SetDates sets the date range. Bounds given in the wrong order are swapped.
func (f *FilterState) SetDates(start, end time.Time) {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		start, end = end, start
	}
	f.Dates = query.DateRange{Start: start, End: end}
}

// SetCodenameOptions replaces the option list, keeping the check state and
// selection order of options that survive.
func (f *FilterState) SetCodenameOptions(opts []CodenameOption) {
	next := make([]CodenameOption, len(opts))
	ids := make(map[string]bool, len(opts))
	for i, o := range opts {
		if o.ID == "" {
			o.ID = o.Name
		}
		o.Checked = slices.Contains(f.selected, o.ID)
		next[i] = o
		ids[o.ID] = true
	}
	f.selected = slices.DeleteFunc(f.selected, func(id string) bool { return !ids[id] })
	f.Codenames = next
}

// ToggleCodename flips the option with the given ID or name, adding it to
// the option list if it is not there yet.
func (f *FilterState) ToggleCodename(idOrName string) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return
	}
	i := slices.IndexFunc(f.Codenames, func(o CodenameOption) bool {
		return o.ID == idOrName || o.Name == idOrName
	})
	if i < 0 {
		f.Codenames = append(f.Codenames, CodenameOption{ID: idOrName, Name: idOrName})
		i = len(f.Codenames) - 1
	}

	opt := &f.Codenames[i]
	opt.Checked = !opt.Checked
	if opt.Checked {
		f.selected = append(f.selected, opt.ID)
	} else {
		f.selected = slices.DeleteFunc(f.selected, func(id string) bool { return id == opt.ID })
	}
}

// SelectedCodenames returns the names of checked codenames in selection
// order.
func (f FilterState) SelectedCodenames() []string {
	names := make([]string, 0, len(f.selected))
	for _, id := range f.selected {
		for _, o := range f.Codenames {
			if o.ID == id {
				names = append(names, o.Name)
				break
			}
		}
	}
	return names
}

// Active reports whether any filter is set.
func (f FilterState) Active() bool {
	return f.Search != "" || f.Codename != "" || f.Kelompok != "" ||
		!f.Dates.IsZero() || !f.Quantity.IsZero() || !f.Weight.IsZero() || !f.Price.IsZero() ||
		len(f.selected) > 0
}

// Filters converts the selection into query filters.
func (f FilterState) Filters() query.Filters {
	return query.Filters{
		Search:    f.Search,
		Codename:  f.Codename,
		Kelompok:  f.Kelompok,
		Dates:     f.Dates,
		Quantity:  f.Quantity,
		Weight:    f.Weight,
		Price:     f.Price,
		Codenames: f.SelectedCodenames(),
	}
}

// Clone returns a deep copy.
func (f FilterState) Clone() FilterState {
	c := f
	c.Quantity = cloneRange(f.Quantity)
	c.Weight = cloneRange(f.Weight)
	c.Price = cloneRange(f.Price)
	c.Codenames = slices.Clone(f.Codenames)
	c.selected = slices.Clone(f.selected)
	return c
}

func cloneRange(r query.NumberRange) query.NumberRange {
	var out query.NumberRange
	if r.Min != nil {
		out.Min = query.Bound(*r.Min)
	}
	if r.Max != nil {
		out.Max = query.Bound(*r.Max)
	}
	return out
}

// clear resets every filter, keeping the codename option list unchecked.
func (f *FilterState) clear() {
	opts := f.Codenames
	*f = FilterState{}
	for _, o := range opts {
		o.Checked = false
		f.Codenames = append(f.Codenames, o)
	}
}
