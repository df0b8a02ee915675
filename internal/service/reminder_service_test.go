package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-planner/internal/model"
	"weekly-planner/internal/storage"
	"weekly-planner/internal/store"
)

func TestDigestEmpty(t *testing.T) {
	st := store.New(storage.NewMemorySlot(), nil, nil)
	st.Create(store.NewTaskInput{Title: "no due date"})
	st.Create(store.NewTaskInput{Title: "far away", DueDate: "2026-12-24"})

	_, ok := NewReminderService(st).Digest(time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestDigestSections(t *testing.T) {
	st := store.New(storage.NewMemorySlot(), nil, nil)
	st.Create(store.NewTaskInput{Title: "late report", DueDate: "2026-08-30"})
	st.Create(store.NewTaskInput{Title: "ship release", DueDate: "2026-09-02"})
	done, _ := st.Create(store.NewTaskInput{Title: "already done", DueDate: "2026-08-29"})
	require.True(t, st.SetStatus(done.ID, model.StatusDone).OK())

	text, ok := NewReminderService(st).Digest(time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	require.True(t, ok)

	assert.Contains(t, text, "Overdue:")
	assert.Contains(t, text, "late report (due 2026-08-30)")
	assert.Contains(t, text, "Due soon:")
	assert.Contains(t, text, "ship release (due 2026-09-02)")
	assert.NotContains(t, text, "already done", "completed tasks never nag")
}

func TestDigestSortedByDueDate(t *testing.T) {
	st := store.New(storage.NewMemorySlot(), nil, nil)
	st.Create(store.NewTaskInput{Title: "second", DueDate: "2026-09-03"})
	st.Create(store.NewTaskInput{Title: "first", DueDate: "2026-09-01"})

	text, ok := NewReminderService(st).Digest(time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Less(t, strings.Index(text, "first"), strings.Index(text, "second"))
}
