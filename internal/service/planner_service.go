package service

import (
	"sort"
	"time"

	"weekly-planner/internal/dates"
	"weekly-planner/internal/grid"
	"weekly-planner/internal/model"
	"weekly-planner/internal/store"
)

// TimedTask is a scheduled task together with its grid placement.
type TimedTask struct {
	Task      model.Task     `json:"task"`
	Placement grid.Placement `json:"placement"`
}

// DayView is one column of the week grid.
type DayView struct {
	Date string `json:"date"`
	// Timed tasks have a fixed time of day and a grid placement.
	Timed []TimedTask `json:"timed"`
	// Untimed tasks are scheduled for the day without a fixed time.
	Untimed []model.Task `json:"untimed"`
}

// WeekView is the full projection the rendering layer consumes.
type WeekView struct {
	Days    []DayView    `json:"days"`
	Backlog []model.Task `json:"backlog"`
}

// PlannerService projects the store's snapshot onto the week grid.
type PlannerService struct {
	store     *store.Store
	grid      *grid.Grid
	weekStart time.Weekday
}

func NewPlannerService(st *store.Store, g *grid.Grid, weekStart time.Weekday) *PlannerService {
	return &PlannerService{store: st, grid: g, weekStart: weekStart}
}

// Grid exposes the placement engine driving this planner's views.
func (s *PlannerService) Grid() *grid.Grid { return s.grid }

// WeekView builds the seven-day view containing base: per-day timed
// placements, per-day untimed tasks, and the order-sorted backlog.
func (s *PlannerService) WeekView(base time.Time) WeekView {
	tasks := s.store.Snapshot()

	byDate := make(map[string][]model.Task)
	var backlog []model.Task
	for _, t := range tasks {
		if !t.Scheduled() {
			backlog = append(backlog, t)
			continue
		}
		byDate[t.ScheduledDate] = append(byDate[t.ScheduledDate], t)
	}

	sort.SliceStable(backlog, func(i, j int) bool {
		if backlog[i].Order != backlog[j].Order {
			return backlog[i].Order < backlog[j].Order
		}
		return backlog[i].CreatedAt.Before(backlog[j].CreatedAt)
	})

	view := WeekView{Backlog: backlog}
	for _, day := range dates.WeekDays(base, s.weekStart) {
		date := day.Format(model.DateLayout)
		dv := DayView{Date: date}
		dayTasks := byDate[date]
		sort.SliceStable(dayTasks, func(i, j int) bool {
			if dayTasks[i].ScheduledTime != dayTasks[j].ScheduledTime {
				return dayTasks[i].ScheduledTime < dayTasks[j].ScheduledTime
			}
			return dayTasks[i].CreatedAt.Before(dayTasks[j].CreatedAt)
		})
		for _, t := range dayTasks {
			if p, ok := s.grid.Place(t.ID, t.ScheduledTime, t.Duration()); ok {
				dv.Timed = append(dv.Timed, TimedTask{Task: t, Placement: p})
			} else {
				dv.Untimed = append(dv.Untimed, t)
			}
		}
		view.Days = append(view.Days, dv)
	}
	return view
}
