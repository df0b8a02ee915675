package store

import "errors"

// Validation errors returned in Result.Err. A mutation that fails
// validation leaves the collection untouched.
var (
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrBadDuration     = errors.New("duration must be a positive multiple of 30 minutes")
	ErrBadStatus       = errors.New("unknown status")
	ErrBadDate         = errors.New("date must be YYYY-MM-DD")
	ErrBadTime         = errors.New("time must be HH:MM")
	ErrTimeWithoutDate = errors.New("scheduled time requires a scheduled date")
)

// PersistState reports how far a mutation made it. The in-memory
// collection always advances for applied mutations; the state only
// describes durability and propagation.
type PersistState int

const (
	// NoChange: the mutation matched nothing (for example an unknown
	// id) and nothing was written.
	NoChange PersistState = iota
	// Persisted: slot written and sync broadcast to other instances.
	Persisted
	// PersistedNoBroadcast: slot written but the change was not
	// announced, either because no channel is configured or because
	// the publish failed. Other instances will catch up on their next
	// sync or restart.
	PersistedNoBroadcast
	// PersistFailed: the slot write failed. Local subscribers already
	// saw the new state; a restart may show the previous one.
	PersistFailed
)

func (s PersistState) String() string {
	switch s {
	case NoChange:
		return "no-change"
	case Persisted:
		return "persisted"
	case PersistedNoBroadcast:
		return "persisted-no-broadcast"
	case PersistFailed:
		return "persist-failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a mutation.
type Result struct {
	State PersistState
	Err   error
}

// OK reports whether the mutation passed validation.
func (r Result) OK() bool { return r.Err == nil }
