package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcetalk/internal/query"
)

func TestFilterState_MinAboveMaxIsClamped(t *testing.T) {
	var fs FilterState
	fs.SetMax(RangeQuantity, query.Bound(10))
	fs.SetMin(RangeQuantity, query.Bound(50))

	require.NotNil(t, fs.Quantity.Min)
	assert.Equal(t, 9.0, *fs.Quantity.Min)
	assert.Equal(t, 10.0, *fs.Quantity.Max)
}

func TestFilterState_MaxBelowMinIsClamped(t *testing.T) {
	var fs FilterState
	fs.SetMin(RangeWeight, query.Bound(2.5))
	fs.SetMax(RangeWeight, query.Bound(1))

	require.NotNil(t, fs.Weight.Max)
	assert.InDelta(t, 2.6, *fs.Weight.Max, 1e-9)
}

func TestFilterState_IndependentBounds(t *testing.T) {
	var fs FilterState
	fs.SetMin(RangePrice, query.Bound(1000))
	assert.Nil(t, fs.Price.Max)

	fs.SetMin(RangePrice, nil)
	assert.True(t, fs.Price.IsZero())
	assert.False(t, fs.Active())
}

func TestFilterState_SetDatesSwapsReversedBounds(t *testing.T) {
	var fs FilterState
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	fs.SetDates(late, early)
	assert.Equal(t, early, fs.Dates.Start)
	assert.Equal(t, late, fs.Dates.End)

	fs.SetDates(time.Time{}, early)
	assert.True(t, fs.Dates.Start.IsZero())
}

func TestFilterState_CodenameOptions(t *testing.T) {
	var fs FilterState
	fs.ToggleCodename("ALPHA")
	fs.ToggleCodename("BETA")
	assert.Equal(t, []string{"ALPHA", "BETA"}, fs.SelectedCodenames())

	// replacing the option list keeps surviving selections in order
	fs.SetCodenameOptions([]CodenameOption{{Name: "BETA"}, {Name: "DELTA"}})
	assert.Equal(t, []string{"BETA"}, fs.SelectedCodenames())
	assert.True(t, fs.Codenames[0].Checked)
	assert.False(t, fs.Codenames[1].Checked)

	fs.ToggleCodename("   ")
	assert.Len(t, fs.Codenames, 2)
}

func TestFilterState_CloneIsDeep(t *testing.T) {
	var fs FilterState
	fs.SetMin(RangeQuantity, query.Bound(1))
	fs.ToggleCodename("A")

	c := fs.Clone()
	*c.Quantity.Min = 99
	c.Codenames[0].Checked = false

	assert.Equal(t, 1.0, *fs.Quantity.Min)
	assert.True(t, fs.Codenames[0].Checked)
}

func TestFilterState_Filters(t *testing.T) {
	var fs FilterState
	fs.Search = "bolt"
	fs.SetMax(RangeWeight, query.Bound(3))
	fs.ToggleCodename("X1")

	got := fs.Filters()
	assert.Equal(t, "bolt", got.Search)
	assert.Equal(t, 3.0, *got.Weight.Max)
	assert.Equal(t, []string{"X1"}, got.Codenames)
	assert.True(t, fs.Active())

	fs.clear()
	assert.False(t, fs.Active())
	assert.Len(t, fs.Codenames, 1)
	assert.False(t, fs.Codenames[0].Checked)
}

func TestRangeStep(t *testing.T) {
	assert.Equal(t, 1.0, RangeQuantity.Step())
	assert.Equal(t, 0.1, RangeWeight.Step())
	assert.Equal(t, 1.0, RangePrice.Step())
	assert.Equal(t, "weight", RangeWeight.String())
}
