package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"weekly-planner/internal/model"
	"weekly-planner/internal/store"
)

var errTaskNotFound = errors.New("task not found")

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

type createTaskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	DueDate       string `json:"dueDate"`
	DurationMin   int    `json:"durationMin"`
}

type mutationResponse struct {
	Task    *model.Task `json:"task,omitempty"`
	Persist string      `json:"persist"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	task, res := s.store.Create(store.NewTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		DueDate:       req.DueDate,
		DurationMin:   req.DurationMin,
	})
	if !res.OK() {
		writeError(w, http.StatusBadRequest, res.Err)
		return
	}
	s.log.Info("task created", zap.String("id", task.ID), zap.String("persist", res.State.String()))
	writeJSON(w, http.StatusCreated, mutationResponse{Task: &task, Persist: res.State.String()})
}

// taskPatch is the JSON body of PATCH /api/tasks/{id}; each present
// field maps onto one typed store mutation.
type taskPatch struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	ScheduledDate *string `json:"scheduledDate"`
	ScheduledTime *string `json:"scheduledTime"`
	DurationMin   *int    `json:"durationMin"`
	DueDate       *string `json:"dueDate"`
}

// validate mirrors the store's intent validation so a patch either
// applies wholly or not at all.
func (p taskPatch) validate(currentDate string) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return store.ErrEmptyTitle
	}
	if p.DurationMin != nil && (*p.DurationMin <= 0 || *p.DurationMin%30 != 0) {
		return store.ErrBadDuration
	}
	if p.Status != nil && !model.Status(*p.Status).Valid() {
		return store.ErrBadStatus
	}
	for _, d := range []*string{p.ScheduledDate, p.DueDate} {
		if d != nil && *d != "" {
			if _, err := time.Parse(model.DateLayout, *d); err != nil {
				return store.ErrBadDate
			}
		}
	}
	if p.ScheduledTime != nil && *p.ScheduledTime != "" {
		if _, err := time.Parse(model.ClockLayout, *p.ScheduledTime); err != nil {
			return store.ErrBadTime
		}
		date := currentDate
		if p.ScheduledDate != nil {
			date = *p.ScheduledDate
		}
		if date == "" {
			return store.ErrTimeWithoutDate
		}
	}
	return nil
}

func (s *Server) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, ok := s.findTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, errTaskNotFound)
		return
	}

	var patch taskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := patch.validate(current.ScheduledDate); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	last := store.Result{State: store.NoChange}
	applied := false
	step := func(res store.Result) {
		applied = true
		if res.State != store.NoChange {
			last = res
		}
	}

	if patch.Title != nil {
		step(s.store.Rename(id, *patch.Title))
	}
	if patch.Description != nil {
		step(s.store.Describe(id, *patch.Description))
	}
	if patch.Status != nil {
		step(s.store.SetStatus(id, model.Status(*patch.Status)))
	}
	if patch.ScheduledDate != nil || patch.ScheduledTime != nil {
		date, timeOfDay := current.ScheduledDate, current.ScheduledTime
		if patch.ScheduledDate != nil {
			date = *patch.ScheduledDate
		}
		if patch.ScheduledTime != nil {
			timeOfDay = *patch.ScheduledTime
		}
		if date == "" {
			// back to the backlog; a dangling time makes no sense
			timeOfDay = ""
		}
		step(s.store.Reschedule(id, date, timeOfDay))
	}
	if patch.DurationMin != nil {
		step(s.store.Resize(id, *patch.DurationMin))
	}
	if patch.DueDate != nil {
		step(s.store.SetDueDate(id, *patch.DueDate))
	}

	if !applied {
		writeError(w, http.StatusBadRequest, errors.New("empty patch"))
		return
	}

	updated, ok := s.findTask(id)
	if !ok {
		// removed concurrently between validation and apply
		writeError(w, http.StatusNotFound, errTaskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Task: &updated, Persist: last.State.String()})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := s.store.Remove(id)
	if res.State == store.NoChange {
		writeError(w, http.StatusNotFound, errTaskNotFound)
		return
	}
	s.log.Info("task deleted", zap.String("id", id), zap.String("persist", res.State.String()))
	writeJSON(w, http.StatusOK, mutationResponse{Persist: res.State.String()})
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleReorderBacklog(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := s.store.ReorderBacklog(req.IDs)
	writeJSON(w, http.StatusOK, mutationResponse{Persist: res.State.String()})
}

func (s *Server) handleWeekView(w http.ResponseWriter, r *http.Request) {
	base := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(model.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, store.ErrBadDate)
			return
		}
		base = parsed
	}
	writeJSON(w, http.StatusOK, s.planner.WeekView(base))
}

type resizeBeginRequest struct {
	TaskID string `json:"taskId"`
}

func (s *Server) handleResizeBegin(w http.ResponseWriter, r *http.Request) {
	var req resizeBeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	task, ok := s.findTask(req.TaskID)
	if !ok {
		writeError(w, http.StatusNotFound, errTaskNotFound)
		return
	}
	g := s.planner.Grid()
	idx, _ := g.SlotIndex(task.ScheduledTime)
	if err := g.BeginResize(task.ID, idx, task.Duration()); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"span": g.RowSpan(idx, task.Duration())})
}

type resizeMoveRequest struct {
	DeltaPx float64 `json:"deltaPx"`
}

func (s *Server) handleResizeMove(w http.ResponseWriter, r *http.Request) {
	var req resizeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	g := s.planner.Grid()
	if !g.Resizing() {
		writeError(w, http.StatusConflict, errors.New("no resize session"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"span": g.MoveResize(req.DeltaPx)})
}

func (s *Server) handleResizeEnd(w http.ResponseWriter, _ *http.Request) {
	commit, ok := s.planner.Grid().EndResize()
	if !ok {
		writeError(w, http.StatusConflict, errors.New("no resize session"))
		return
	}
	res := s.store.Resize(commit.TaskID, commit.DurationMin)
	if !res.OK() {
		writeError(w, http.StatusBadRequest, res.Err)
		return
	}
	task, found := s.findTask(commit.TaskID)
	resp := mutationResponse{Persist: res.State.String()}
	if found {
		resp.Task = &task
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResizeCancel(w http.ResponseWriter, _ *http.Request) {
	s.planner.Grid().CancelResize()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) findTask(id string) (model.Task, bool) {
	for _, t := range s.store.Snapshot() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
