package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-planner/internal/grid"
	"weekly-planner/internal/model"
	"weekly-planner/internal/service"
	"weekly-planner/internal/storage"
	"weekly-planner/internal/store"
)

func newTestServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	st := store.New(storage.NewMemorySlot(), nil, nil)
	planner := service.NewPlannerService(st, grid.New(7, 17, 40), time.Monday)
	return New(st, planner, nil).Routes(), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndListTasks(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":       "write handler tests",
		"description": "cover the sad paths too",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[mutationResponse](t, rec)
	require.NotNil(t, created.Task)
	assert.NotEmpty(t, created.Task.ID)
	assert.Equal(t, 30, created.Task.DurationMin)
	assert.Equal(t, model.StatusPending, created.Task.Status)
	assert.Equal(t, "persisted-no-broadcast", created.Persist)

	rec = doJSON(t, h, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]model.Task](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.Task.ID, tasks[0].ID)
}

func TestCreateTaskRejectsBadInput(t *testing.T) {
	h, _ := newTestServer(t)

	for name, body := range map[string]map[string]any{
		"blank title":     {"title": "   "},
		"odd duration":    {"title": "x", "durationMin": 45},
		"time sans date":  {"title": "x", "scheduledTime": "09:00"},
		"malformed date":  {"title": "x", "dueDate": "someday"},
		"malformed clock": {"title": "x", "scheduledDate": "2026-09-02", "scheduledTime": "9am"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/tasks", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPatchTask(t *testing.T) {
	h, st := newTestServer(t)
	task, _ := st.Create(store.NewTaskInput{Title: "draft"})

	rec := doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{
		"title":  "final",
		"status": "done",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[mutationResponse](t, rec)
	require.NotNil(t, resp.Task)
	assert.Equal(t, "final", resp.Task.Title)
	assert.Equal(t, model.StatusDone, resp.Task.Status)
}

func TestPatchTaskSchedulesAndUnschedules(t *testing.T) {
	h, st := newTestServer(t)
	task, _ := st.Create(store.NewTaskInput{Title: "meeting"})

	rec := doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{
		"scheduledDate": "2026-09-03",
		"scheduledTime": "10:30",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[mutationResponse](t, rec)
	assert.Equal(t, "2026-09-03", resp.Task.ScheduledDate)
	assert.Equal(t, "10:30", resp.Task.ScheduledTime)

	// Clearing the date sends it back to the backlog and drops the time.
	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{
		"scheduledDate": "",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[mutationResponse](t, rec)
	assert.Empty(t, resp.Task.ScheduledDate)
	assert.Empty(t, resp.Task.ScheduledTime)
}

func TestPatchTaskErrors(t *testing.T) {
	h, st := newTestServer(t)
	task, _ := st.Create(store.NewTaskInput{Title: "draft"})

	rec := doJSON(t, h, http.MethodPatch, "/api/tasks/nope", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"durationMin": 45})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty patch is rejected")

	// A failed patch leaves the task untouched.
	assert.Equal(t, "draft", st.Snapshot()[0].Title)
}

func TestDeleteTask(t *testing.T) {
	h, st := newTestServer(t)
	task, _ := st.Create(store.NewTaskInput{Title: "temp"})

	rec := doJSON(t, h, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderBacklog(t *testing.T) {
	h, st := newTestServer(t)
	a, _ := st.Create(store.NewTaskInput{Title: "A"})
	b, _ := st.Create(store.NewTaskInput{Title: "B"})

	rec := doJSON(t, h, http.MethodPost, "/api/backlog/reorder", map[string]any{
		"ids": []string{b.ID, a.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, task := range st.Snapshot() {
		if task.ID == b.ID {
			assert.Equal(t, 0, task.Order)
		}
	}
}

func TestWeekView(t *testing.T) {
	h, st := newTestServer(t)
	st.Create(store.NewTaskInput{Title: "timed", ScheduledDate: "2026-09-03", ScheduledTime: "09:00", DurationMin: 60})

	rec := doJSON(t, h, http.MethodGet, "/api/week?date=2026-09-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[service.WeekView](t, rec)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "2026-08-31", view.Days[0].Date)
	require.Len(t, view.Days[3].Timed, 1)
	assert.Equal(t, grid.Placement{RowStart: 6, RowSpan: 2}, view.Days[3].Timed[0].Placement)

	rec = doJSON(t, h, http.MethodGet, "/api/week?date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResizeFlow(t *testing.T) {
	h, st := newTestServer(t)
	task, _ := st.Create(store.NewTaskInput{Title: "block", ScheduledDate: "2026-09-03", ScheduledTime: "09:00", DurationMin: 60})

	rec := doJSON(t, h, http.MethodPost, "/api/resize/begin", map[string]any{"taskId": task.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[map[string]int](t, rec)["span"])

	// A second session is refused while this one is open.
	rec = doJSON(t, h, http.MethodPost, "/api/resize/begin", map[string]any{"taskId": task.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/resize/move", map[string]any{"deltaPx": 40.0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[map[string]int](t, rec)["span"])

	// The store doesn't change until the gesture ends.
	assert.Equal(t, 60, st.Snapshot()[0].DurationMin)

	rec = doJSON(t, h, http.MethodPost, "/api/resize/end", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[mutationResponse](t, rec)
	require.NotNil(t, resp.Task)
	assert.Equal(t, 90, resp.Task.DurationMin)
	assert.Equal(t, 90, st.Snapshot()[0].DurationMin)

	// The session is gone: no second commit, no stray moves.
	rec = doJSON(t, h, http.MethodPost, "/api/resize/end", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/api/resize/move", map[string]any{"deltaPx": 40.0})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResizeBeginUnknownTask(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/resize/begin", map[string]any{"taskId": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResizeCancel(t *testing.T) {
	h, st := newTestServer(t)
	task, _ := st.Create(store.NewTaskInput{Title: "block", ScheduledDate: "2026-09-03", ScheduledTime: "09:00", DurationMin: 60})

	rec := doJSON(t, h, http.MethodPost, "/api/resize/begin", map[string]any{"taskId": task.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	doJSON(t, h, http.MethodPost, "/api/resize/move", map[string]any{"deltaPx": 120.0})

	rec = doJSON(t, h, http.MethodPost, "/api/resize/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 60, st.Snapshot()[0].DurationMin, "cancel commits nothing")
	rec = doJSON(t, h, http.MethodPost, "/api/resize/end", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
