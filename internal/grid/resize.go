package grid

import (
	"errors"
	"math"
)

// ErrResizeActive is returned when a second resize session is started
// before the first one ends. One session per grid, by construction.
var ErrResizeActive = errors.New("resize session already active")

// resizeSession is the single in-flight drag. Its span is transient
// interaction state: the task itself is untouched until EndResize.
type resizeSession struct {
	taskID      string
	startIndex  int
	initialSpan int
	currentSpan int
}

// Commit is the single update produced by a finished resize session.
type Commit struct {
	TaskID      string
	DurationMin int
}

// BeginResize opens a session for the task occupying slotIndex with
// the given persisted duration.
func (g *Grid) BeginResize(taskID string, slotIndex, durationMin int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resizing != nil {
		return ErrResizeActive
	}
	span := g.RowSpan(slotIndex, durationMin)
	g.resizing = &resizeSession{
		taskID:      taskID,
		startIndex:  slotIndex,
		initialSpan: span,
		currentSpan: span,
	}
	return nil
}

// MoveResize folds the cumulative vertical displacement of the gesture
// into the in-progress span: round(deltaPx / slot height) slots on top
// of the initial span, clamped so the task stays at least one slot
// tall and inside the day. Returns the resulting span, or 0 when no
// session is active.
func (g *Grid) MoveResize(deltaPx float64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.resizing
	if r == nil {
		return 0
	}
	delta := int(math.Round(deltaPx / float64(g.SlotHeightPx)))
	span := r.initialSpan + delta
	if span < 1 {
		span = 1
	}
	if max := g.TotalSlots() - r.startIndex; span > max {
		span = max
	}
	r.currentSpan = span
	return span
}

// EndResize closes the session and produces its one commit, built from
// the last moved-to span. ok is false when no session is active, so a
// caller can't commit twice.
func (g *Grid) EndResize() (Commit, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.resizing
	if r == nil {
		return Commit{}, false
	}
	g.resizing = nil
	return Commit{TaskID: r.taskID, DurationMin: r.currentSpan * SlotMinutes}, true
}

// CancelResize abandons the session without a commit, the explicit
// form of a lost pointer-up.
func (g *Grid) CancelResize() {
	g.mu.Lock()
	g.resizing = nil
	g.mu.Unlock()
}

// Resizing reports whether a session is in flight.
func (g *Grid) Resizing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resizing != nil
}
