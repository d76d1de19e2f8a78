package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"study_garden/internal/model"

	"github.com/Masterminds/squirrel"
)

const (
	dueDateLayout = "2006-01-02"
	dueTimeLayout = "15:04"
)

type Task struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Course    string    `db:"course"`
	Title     string    `db:"title"`
	Category  string    `db:"category"`
	DueDate   string    `db:"due_date"`
	DueTime   string    `db:"due_time"`
	Completed bool      `db:"completed"`
	CreatedAt time.Time `db:"created_at"`
}

var taskColumns = []string{
	"id", "user_id", "course", "title", "category", "due_date", "due_time", "completed", "created_at",
}

func (t *Task) toModel() (*model.Task, error) {
	due, err := time.ParseInLocation(dueDateLayout+" "+dueTimeLayout, t.DueDate+" "+t.DueTime, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("task %d has malformed due timestamp: %w", t.ID, err)
	}
	return &model.Task{
		ID:        t.ID,
		UserID:    t.UserID,
		Course:    t.Course,
		Title:     t.Title,
		Category:  model.Category(t.Category),
		DueAt:     due,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UTC(),
	}, nil
}

func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	due := task.DueAt.UTC()
	query, args, err := squirrel.
		Insert("tasks").
		SetMap(map[string]interface{}{
			"user_id":    task.UserID,
			"course":     task.Course,
			"title":      task.Title,
			"category":   string(task.Category),
			"due_date":   due.Format(dueDateLayout),
			"due_time":   due.Format(dueTimeLayout),
			"completed":  task.Completed,
			"created_at": task.CreatedAt.UTC(),
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	var id int64
	if err = r.conn(ctx).GetContext(ctx, &id, query, args...); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	task.ID = id
	return nil
}

func (r *Repository) GetTask(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	query, args, err := squirrel.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": taskID, "user_id": userID}).
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return nil, err
	}

	var task Task
	err = r.conn(ctx).GetContext(ctx, &task, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task.toModel()
}

// ListTasks returns the user's tasks ordered by due date, then due time.
func (r *Repository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	builder := squirrel.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"user_id": filter.UserID}).
		OrderBy("due_date", "due_time", "id")

	switch filter.Status {
	case model.TaskStatusPending:
		builder = builder.Where(squirrel.Eq{"completed": false})
	case model.TaskStatusCompleted:
		builder = builder.Where(squirrel.Eq{"completed": true})
	}

	query, args, err := builder.PlaceholderFormat(r.placeholder).ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*Task
	if err = r.conn(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*model.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// CompleteTask flips a pending task to completed. It reports ErrNotFound when
// no pending task with that id belongs to the user.
func (r *Repository) CompleteTask(ctx context.Context, userID, taskID int64) error {
	query, args, err := squirrel.
		Update("tasks").
		Set("completed", true).
		Where(squirrel.Eq{"id": taskID, "user_id": userID, "completed": false}).
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, userID, taskID int64) error {
	query, args, err := squirrel.
		Delete("tasks").
		Where(squirrel.Eq{"id": taskID, "user_id": userID}).
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
