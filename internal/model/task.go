package model

import "time"

// Status of a task. The planner only distinguishes open from closed.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDone
}

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format for times of day.
	ClockLayout = "15:04"

	// DefaultDurationMin applies when a task has no explicit duration.
	DefaultDurationMin = 30
)

// Task represents a single item in the planner. Scheduling fields are
// optional: a task without ScheduledDate lives in the backlog, and
// ScheduledTime is only meaningful together with ScheduledDate.
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Status        Status    `json:"status"`
	ScheduledDate string    `json:"scheduledDate,omitempty"`
	ScheduledTime string    `json:"scheduledTime,omitempty"`
	DurationMin   int       `json:"durationMin,omitempty"`
	DueDate       string    `json:"dueDate,omitempty"`
	Order         int       `json:"order"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Scheduled reports whether the task is placed on a concrete day.
func (t Task) Scheduled() bool { return t.ScheduledDate != "" }

// Duration returns DurationMin with the implicit default applied.
func (t Task) Duration() int {
	if t.DurationMin <= 0 {
		return DefaultDurationMin
	}
	return t.DurationMin
}

// Done reports whether the task has been closed.
func (t Task) Done() bool { return t.Status == StatusDone }
