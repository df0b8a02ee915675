// Package grid maps scheduled times and durations onto the half-hour
// day grid and interprets resize gestures. Placement is pure
// arithmetic; the only state a Grid carries is the in-flight resize
// session.
package grid

import (
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultHoursStart   = 7
	DefaultHoursLength  = 17
	DefaultSlotHeightPx = 40

	// SlotMinutes is the grid resolution.
	SlotMinutes = 30

	// headerRows offsets placements past the day header and the
	// untimed row in the rendered CSS grid.
	headerRows = 2
)

// Grid describes the visible day: HoursLength hourly rows starting at
// HoursStart, each split into two slots.
type Grid struct {
	HoursStart   int
	HoursLength  int
	SlotHeightPx int

	mu       sync.Mutex
	resizing *resizeSession
}

// New returns a grid with the given geometry; zero values fall back to
// the defaults (07:00 through 24:00, 40px slots).
func New(hoursStart, hoursLength, slotHeightPx int) *Grid {
	if hoursStart <= 0 {
		hoursStart = DefaultHoursStart
	}
	if hoursLength <= 0 {
		hoursLength = DefaultHoursLength
	}
	if slotHeightPx <= 0 {
		slotHeightPx = DefaultSlotHeightPx
	}
	return &Grid{HoursStart: hoursStart, HoursLength: hoursLength, SlotHeightPx: slotHeightPx}
}

// TotalSlots is the number of half-hour slots in the visible day.
func (g *Grid) TotalSlots() int { return g.HoursLength * 2 }

// SlotIndex maps an HH:MM time onto its slot, clamped into the day.
// Minutes are bucketed coarsely: anything below :30 belongs to the top
// half of the hour, the rest to the bottom half. ok is false for an
// empty or unparseable time; such tasks belong in the untimed row.
func (g *Grid) SlotIndex(timeOfDay string) (int, bool) {
	hour, minute, ok := parseClock(timeOfDay)
	if !ok {
		return 0, false
	}
	idx := (hour - g.HoursStart) * 2
	if minute >= 30 {
		idx++
	}
	if idx < 0 {
		idx = 0
	}
	if last := g.TotalSlots() - 1; idx > last {
		idx = last
	}
	return idx, true
}

// RowSpan is the slot count a duration occupies starting at slotIndex.
// Durations are rounded up to whole slots and truncated so the span
// never runs past the end of the day.
func (g *Grid) RowSpan(slotIndex, durationMin int) int {
	if durationMin <= 0 {
		durationMin = SlotMinutes
	}
	span := (durationMin + SlotMinutes - 1) / SlotMinutes
	if span < 1 {
		span = 1
	}
	if max := g.TotalSlots() - slotIndex; span > max {
		span = max
	}
	if span < 1 {
		span = 1
	}
	return span
}

// Placement is a task's position in the rendered day column.
type Placement struct {
	RowStart int `json:"rowStart"`
	RowSpan  int `json:"rowSpan"`
}

// Place computes the grid placement for a timed task, reflecting the
// live span when a resize session targets taskID. ok is false for
// tasks without a time of day.
func (g *Grid) Place(taskID, timeOfDay string, durationMin int) (Placement, bool) {
	idx, ok := g.SlotIndex(timeOfDay)
	if !ok {
		return Placement{}, false
	}
	return Placement{RowStart: headerRows + idx, RowSpan: g.spanFor(taskID, idx, durationMin)}, true
}

func (g *Grid) spanFor(taskID string, slotIndex, durationMin int) int {
	g.mu.Lock()
	r := g.resizing
	g.mu.Unlock()
	if r != nil && r.taskID == taskID {
		span := r.currentSpan
		if max := g.TotalSlots() - slotIndex; span > max {
			span = max
		}
		return span
	}
	return g.RowSpan(slotIndex, durationMin)
}

func parseClock(s string) (hour, minute int, ok bool) {
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
