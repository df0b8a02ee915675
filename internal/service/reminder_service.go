package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"weekly-planner/internal/dates"
	"weekly-planner/internal/model"
	"weekly-planner/internal/store"
)

// ReminderService builds human-readable digests of pending tasks whose
// due dates need attention. Due dates never affect placement; this is
// purely derived display state.
type ReminderService struct {
	store *store.Store
}

func NewReminderService(st *store.Store) *ReminderService {
	return &ReminderService{store: st}
}

// Digest lists overdue and due-soon pending tasks as plain text. ok is
// false when nothing needs attention.
func (s *ReminderService) Digest(now time.Time) (string, bool) {
	var overdue, dueSoon []model.Task
	for _, t := range s.store.Snapshot() {
		if t.Done() || t.DueDate == "" {
			continue
		}
		switch {
		case dates.Overdue(t.DueDate, now):
			overdue = append(overdue, t)
		case dates.DueSoon(t.DueDate, now):
			dueSoon = append(dueSoon, t)
		}
	}
	if len(overdue) == 0 && len(dueSoon) == 0 {
		return "", false
	}

	byDue := func(tasks []model.Task) {
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].DueDate != tasks[j].DueDate {
				return tasks[i].DueDate < tasks[j].DueDate
			}
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	}
	byDue(overdue)
	byDue(dueSoon)

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly planner digest for %s\n", now.Format(model.DateLayout))
	if len(overdue) > 0 {
		b.WriteString("\nOverdue:\n")
		for _, t := range overdue {
			fmt.Fprintf(&b, "  - %s (due %s)\n", strings.TrimSpace(t.Title), t.DueDate)
		}
	}
	if len(dueSoon) > 0 {
		b.WriteString("\nDue soon:\n")
		for _, t := range dueSoon {
			fmt.Fprintf(&b, "  - %s (due %s)\n", strings.TrimSpace(t.Title), t.DueDate)
		}
	}
	return strings.TrimSpace(b.String()), true
}
