package repository

import (
	"context"
	"testing"
	"time"

	"study_garden/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTask(t *testing.T, repo *Repository, userID int64, title string, due time.Time) *model.Task {
	t.Helper()
	task := &model.Task{
		UserID:    userID,
		Course:    "CS101",
		Title:     title,
		Category:  model.CategoryHomework,
		DueAt:     due,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateTask(context.Background(), task))
	return task
}

func TestTaskRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	due := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	created := createTask(t, repo, 7, "Problem set 1", due)
	assert.NotZero(t, created.ID)

	got, err := repo.GetTask(ctx, 7, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Problem set 1", got.Title)
	assert.Equal(t, model.CategoryHomework, got.Category)
	assert.True(t, due.Equal(got.DueAt))
	assert.False(t, got.Completed)

	_, err = repo.GetTask(ctx, 8, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.DeleteTask(ctx, 7, created.ID))
	_, err = repo.GetTask(ctx, 7, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteTask(ctx, 7, created.ID), ErrNotFound)
}

func TestListTasks_OrderAndFilter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	late := createTask(t, repo, 1, "late", time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	evening := createTask(t, repo, 1, "evening", time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC))
	morning := createTask(t, repo, 1, "morning", time.Date(2026, 4, 1, 7, 0, 0, 0, time.UTC))
	createTask(t, repo, 2, "someone else", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, repo.CompleteTask(ctx, 1, evening.ID))

	tests := []struct {
		name   string
		status model.TaskStatus
		want   []int64
	}{
		{name: "all", status: model.TaskStatusAll, want: []int64{morning.ID, evening.ID, late.ID}},
		{name: "pending", status: model.TaskStatusPending, want: []int64{morning.ID, late.ID}},
		{name: "completed", status: model.TaskStatusCompleted, want: []int64{evening.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.ListTasks(ctx, model.TaskFilter{UserID: 1, Status: tt.status})
			require.NoError(t, err)

			ids := make([]int64, len(tasks))
			for i, task := range tasks {
				ids[i] = task.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListTasks_Empty(t *testing.T) {
	repo := newTestRepository(t)

	tasks, err := repo.ListTasks(context.Background(), model.TaskFilter{UserID: 42})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestCompleteTask_OnlyOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	task := createTask(t, repo, 1, "quiz", time.Now())

	require.NoError(t, repo.CompleteTask(ctx, 1, task.ID))
	assert.ErrorIs(t, repo.CompleteTask(ctx, 1, task.ID), ErrNotFound)

	got, err := repo.GetTask(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}
