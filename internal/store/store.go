// Package store owns the canonical task collection for one planner
// instance, persists it to a storage slot and keeps other instances
// in sync through a broadcast channel.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weekly-planner/internal/broadcast"
	"weekly-planner/internal/model"
	"weekly-planner/internal/storage"
)

// Listener receives a snapshot after every mutation, in mutation
// order. Listeners run synchronously under the store lock and must not
// call back into the store.
type Listener func([]model.Task)

// NewTaskInput carries the caller-provided fields for Create.
type NewTaskInput struct {
	Title         string
	Description   string
	ScheduledDate string
	ScheduledTime string
	DueDate       string
	DurationMin   int
}

// Store is the single source of truth for the task collection. It is
// safe for concurrent use. All I/O is best effort: failures are logged
// and reflected in the mutation Result, never panicked or thrown.
type Store struct {
	slot    storage.Slot
	channel broadcast.Channel
	log     *zap.Logger
	now     func() time.Time
	newID   func() string

	mu         sync.Mutex
	tasks      []model.Task
	subs       map[int]Listener
	subOrder   []int
	nextSubID  int
	cancelSync func()
}

// Option tweaks store construction; used by tests to pin clocks and ids.
type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New builds a store over slot. channel may be nil: the store then
// runs without cross-instance sync. Malformed slot contents are logged
// and treated as an empty collection.
func New(slot storage.Slot, channel broadcast.Channel, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		slot:    slot,
		channel: channel,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
		subs:    make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks = s.readSlot()

	if channel != nil {
		cancel, err := channel.Subscribe(s.onSync)
		if err != nil {
			s.log.Warn("broadcast unavailable, running single-instance", zap.Error(err))
			s.channel = nil
		} else {
			s.cancelSync = cancel
		}
	}
	return s
}

// Close detaches the store from its broadcast channel. The slot and
// channel themselves belong to the caller.
func (s *Store) Close() {
	if s.cancelSync != nil {
		s.cancelSync()
	}
}

// readSlot loads whatever the slot holds, degrading to empty on any
// failure.
func (s *Store) readSlot() []model.Task {
	data, ok, err := s.slot.Read(context.Background())
	if err != nil {
		s.log.Warn("read slot", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		s.log.Warn("malformed slot contents, starting empty", zap.Error(err))
		return nil
	}
	return tasks
}

// onSync handles a sync message from another instance: re-read the
// slot and re-notify local subscribers with the reloaded truth.
func (s *Store) onSync(msg broadcast.Message) {
	if msg.Type != broadcast.TypeSync {
		return
	}
	tasks := s.readSlot()
	s.mu.Lock()
	s.tasks = tasks
	s.notifyLocked()
	s.mu.Unlock()
}

// Snapshot returns an independent copy of the collection.
func (s *Store) Snapshot() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Subscribe registers listener and immediately calls it with the
// current snapshot. The returned func deregisters it; calling it more
// than once, or after Close, is harmless.
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = listener
	s.subOrder = append(s.subOrder, id)
	listener(s.snapshotLocked())
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; !ok {
			return
		}
		delete(s.subs, id)
		for i, sid := range s.subOrder {
			if sid == id {
				s.subOrder = append(s.subOrder[:i], s.subOrder[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for _, id := range s.subOrder {
		if fn, ok := s.subs[id]; ok {
			fn(snap)
		}
	}
}

// mutate runs apply under the lock. When apply reports a change, the
// collection is persisted, local subscribers are notified in order,
// and the change is announced on the channel (outside the lock, so a
// synchronous channel can't deadlock two stores against each other).
func (s *Store) mutate(apply func() bool) Result {
	s.mu.Lock()
	if !apply() {
		s.mu.Unlock()
		return Result{State: NoChange}
	}
	written := s.writeSlotLocked()
	s.notifyLocked()
	s.mu.Unlock()

	if !written {
		return Result{State: PersistFailed}
	}
	return Result{State: s.announce()}
}

func (s *Store) writeSlotLocked() bool {
	data, err := json.Marshal(s.tasks)
	if err != nil {
		s.log.Warn("encode tasks", zap.Error(err))
		return false
	}
	if err := s.slot.Write(context.Background(), data); err != nil {
		s.log.Warn("write slot", zap.Error(err))
		return false
	}
	return true
}

func (s *Store) announce() PersistState {
	if s.channel == nil {
		return PersistedNoBroadcast
	}
	if err := s.channel.Publish(context.Background(), broadcast.Message{Type: broadcast.TypeSync}); err != nil {
		s.log.Warn("broadcast sync", zap.Error(err))
		return PersistedNoBroadcast
	}
	return Persisted
}

// Create validates input, assigns id and timestamps and appends the
// task. Its backlog order is the number of unscheduled tasks at the
// time of the call.
func (s *Store) Create(input NewTaskInput) (model.Task, Result) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Task{}, Result{Err: ErrEmptyTitle}
	}
	if input.DurationMin != 0 && (input.DurationMin < 0 || input.DurationMin%30 != 0) {
		return model.Task{}, Result{Err: ErrBadDuration}
	}
	if input.ScheduledTime != "" && input.ScheduledDate == "" {
		return model.Task{}, Result{Err: ErrTimeWithoutDate}
	}
	if err := checkDate(input.ScheduledDate); err != nil {
		return model.Task{}, Result{Err: err}
	}
	if err := checkClock(input.ScheduledTime); err != nil {
		return model.Task{}, Result{Err: err}
	}
	if err := checkDate(input.DueDate); err != nil {
		return model.Task{}, Result{Err: err}
	}

	duration := input.DurationMin
	if duration == 0 {
		duration = model.DefaultDurationMin
	}

	var task model.Task
	res := s.mutate(func() bool {
		now := s.now()
		task = model.Task{
			ID:            s.newID(),
			Title:         title,
			Description:   strings.TrimSpace(input.Description),
			Status:        model.StatusPending,
			ScheduledDate: input.ScheduledDate,
			ScheduledTime: input.ScheduledTime,
			DurationMin:   duration,
			DueDate:       input.DueDate,
			Order:         s.backlogCountLocked(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.tasks = append(s.tasks, task)
		return true
	})
	return task, res
}

func (s *Store) backlogCountLocked() int {
	n := 0
	for _, t := range s.tasks {
		if !t.Scheduled() {
			n++
		}
	}
	return n
}

// apply finds the task and patches it, refreshing UpdatedAt. Unknown
// ids are a silent no-op, never an error.
func (s *Store) apply(id string, patch func(*model.Task)) Result {
	return s.mutate(func() bool {
		for i := range s.tasks {
			if s.tasks[i].ID == id {
				patch(&s.tasks[i])
				s.tasks[i].UpdatedAt = s.now()
				return true
			}
		}
		return false
	})
}

// Rename changes the task title.
func (s *Store) Rename(id, title string) Result {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{Err: ErrEmptyTitle}
	}
	return s.apply(id, func(t *model.Task) { t.Title = title })
}

// Describe replaces the description; empty clears it.
func (s *Store) Describe(id, description string) Result {
	return s.apply(id, func(t *model.Task) { t.Description = strings.TrimSpace(description) })
}

// Reschedule moves the task to a day and optional time of day. An
// empty date sends it back to the backlog (and drops the time).
func (s *Store) Reschedule(id, date, timeOfDay string) Result {
	if timeOfDay != "" && date == "" {
		return Result{Err: ErrTimeWithoutDate}
	}
	if err := checkDate(date); err != nil {
		return Result{Err: err}
	}
	if err := checkClock(timeOfDay); err != nil {
		return Result{Err: err}
	}
	return s.apply(id, func(t *model.Task) {
		t.ScheduledDate = date
		t.ScheduledTime = timeOfDay
	})
}

// Resize sets the duration; it must be a positive multiple of 30.
func (s *Store) Resize(id string, durationMin int) Result {
	if durationMin <= 0 || durationMin%30 != 0 {
		return Result{Err: ErrBadDuration}
	}
	return s.apply(id, func(t *model.Task) { t.DurationMin = durationMin })
}

// SetStatus completes or reopens the task.
func (s *Store) SetStatus(id string, status model.Status) Result {
	if !status.Valid() {
		return Result{Err: ErrBadStatus}
	}
	return s.apply(id, func(t *model.Task) { t.Status = status })
}

// SetDueDate sets or clears the due date. Due dates never affect
// placement; they only drive due-soon/overdue derivation.
func (s *Store) SetDueDate(id, date string) Result {
	if err := checkDate(date); err != nil {
		return Result{Err: err}
	}
	return s.apply(id, func(t *model.Task) { t.DueDate = date })
}

// Remove deletes the task; unknown ids are a silent no-op.
func (s *Store) Remove(id string) Result {
	return s.mutate(func() bool {
		for i := range s.tasks {
			if s.tasks[i].ID == id {
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				return true
			}
		}
		return false
	})
}

// ReorderBacklog assigns order = position to every listed task that is
// currently unscheduled. Tasks missing from ids, or scheduled ones,
// keep their order; partial lists are accepted as-is.
func (s *Store) ReorderBacklog(ids []string) Result {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return s.mutate(func() bool {
		changed := false
		for i := range s.tasks {
			t := &s.tasks[i]
			if t.Scheduled() {
				continue
			}
			if p, ok := pos[t.ID]; ok && t.Order != p {
				t.Order = p
				t.UpdatedAt = s.now()
				changed = true
			}
		}
		return changed
	})
}

func checkDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return ErrBadDate
	}
	return nil
}

func checkClock(timeOfDay string) error {
	if timeOfDay == "" {
		return nil
	}
	if _, err := time.Parse(model.ClockLayout, timeOfDay); err != nil {
		return ErrBadTime
	}
	return nil
}
