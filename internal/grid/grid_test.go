package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	g := New(0, 0, 0)
	assert.Equal(t, 7, g.HoursStart)
	assert.Equal(t, 17, g.HoursLength)
	assert.Equal(t, 40, g.SlotHeightPx)
	assert.Equal(t, 34, g.TotalSlots())
}

func TestSlotIndex(t *testing.T) {
	g := New(7, 17, 40)

	tests := []struct {
		name      string
		timeOfDay string
		want      int
		ok        bool
	}{
		{"start of day", "07:00", 0, true},
		{"bottom half", "07:30", 1, true},
		{"before grid clamps to first slot", "06:00", 0, true},
		{"after grid clamps to last slot", "23:45", 33, true},
		{"quarter past buckets to top half", "09:15", 4, true},
		{"quarter to buckets to bottom half", "09:45", 5, true},
		{"no time means untimed row", "", 0, false},
		{"garbage means untimed row", "not-a-time", 0, false},
		{"out of range minutes rejected", "09:75", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := g.SlotIndex(tt.timeOfDay)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, idx)
		})
	}
}

func TestRowSpan(t *testing.T) {
	g := New(7, 17, 40)

	assert.Equal(t, 1, g.RowSpan(0, 30))
	assert.Equal(t, 2, g.RowSpan(0, 60))
	assert.Equal(t, 2, g.RowSpan(0, 45), "partial slots round up")
	assert.Equal(t, 1, g.RowSpan(0, 0), "zero duration defaults to one slot")

	// A long task at the last slot is truncated to fit, not rejected.
	assert.Equal(t, 1, g.RowSpan(33, 180))
	assert.Equal(t, 2, g.RowSpan(32, 180))
}

func TestPlace(t *testing.T) {
	g := New(7, 17, 40)

	p, ok := g.Place("t1", "09:00", 60)
	assert.True(t, ok)
	assert.Equal(t, Placement{RowStart: 6, RowSpan: 2}, p)

	_, ok = g.Place("t1", "", 60)
	assert.False(t, ok)
}

func TestPlaceReflectsLiveResize(t *testing.T) {
	g := New(7, 17, 40)

	assert.NoError(t, g.BeginResize("t1", 4, 30))
	g.MoveResize(120) // +3 slots

	p, ok := g.Place("t1", "09:00", 30)
	assert.True(t, ok)
	assert.Equal(t, 4, p.RowSpan, "in-progress span, not the persisted one")

	other, ok := g.Place("t2", "09:00", 30)
	assert.True(t, ok)
	assert.Equal(t, 1, other.RowSpan, "other tasks keep their persisted span")
}
