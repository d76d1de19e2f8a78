package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"study_garden/internal/clock"
	"study_garden/internal/model"
	"study_garden/internal/repository"
	"study_garden/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type TaskInput struct {
	Course   string         `json:"course" validate:"required,max=200"`
	Title    string         `json:"title" validate:"required,max=200"`
	Category model.Category `json:"category" validate:"required,max=64"`
	DueAt    time.Time      `json:"due_at"`
}

type TaskService struct {
	repo     Repository
	rewards  *RewardService
	clock    clock.Clock
	validate *validator.Validate
}

func NewTaskService(repo Repository, rewards *RewardService, clk clock.Clock) *TaskService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &TaskService{
		repo:     repo,
		rewards:  rewards,
		clock:    clk,
		validate: validate,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, userID int64, input TaskInput) (*model.Task, error) {
	input.Course = strings.TrimSpace(input.Course)
	input.Title = strings.TrimSpace(input.Title)
	input.Category = model.Category(strings.TrimSpace(string(input.Category)))

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	task := &model.Task{
		UserID:    userID,
		Course:    input.Course,
		Title:     input.Title,
		Category:  input.Category,
		DueAt:     input.DueAt.UTC().Truncate(time.Minute),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, storeError("create task", err)
	}

	if !task.Category.IsKnown() {
		logger.Logger().Info("task created with unknown category",
			zap.Int64("user_id", userID),
			zap.String("category", string(task.Category)))
	}
	return task, nil
}

func (s *TaskService) validateInput(input TaskInput) error {
	verr := &ValidationError{}

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			msg := "is invalid"
			switch fe.Tag() {
			case "required":
				msg = "is required"
			case "max":
				msg = "must be at most " + fe.Param() + " characters"
			}
			verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: msg})
		}
	}
	if input.DueAt.IsZero() {
		verr.Fields = append(verr.Fields, FieldError{Field: "due_at", Message: "is required"})
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	if filter.Status == "" {
		filter.Status = model.TaskStatusAll
	}
	switch filter.Status {
	case model.TaskStatusAll, model.TaskStatusPending, model.TaskStatusCompleted:
	default:
		return nil, &ValidationError{Fields: []FieldError{{Field: "status", Message: "must be one of all, pending, completed"}}}
	}

	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return tasks, nil
}

// DeleteTask removes a task. The reward ledger is left untouched.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	err := s.repo.DeleteTask(ctx, userID, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return storeError("delete task", err)
}

// MarkCompleted flips the task to completed and grants any free awards now
// due, atomically. Events are published once the transaction commits.
func (s *TaskService) MarkCompleted(ctx context.Context, userID, taskID int64) (*model.FreeAwardResult, error) {
	unlock := s.rewards.locks.Lock(userID)
	defer unlock()

	var result *model.FreeAwardResult
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		task, err := s.repo.GetTask(ctx, userID, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskNotFound
			}
			return &StoreError{Op: "get task", Err: err}
		}
		if task.Completed {
			return ErrTaskAlreadyCompleted
		}

		if err = s.repo.CompleteTask(ctx, userID, taskID); err != nil {
			return &StoreError{Op: "complete task", Err: err}
		}

		result, err = s.rewards.grantFreeAwards(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeError("mark completed", err)
	}

	logger.Logger().Info("task completed",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
		zap.Int("free_awards", len(result.Granted)))

	s.rewards.publish(ctx, result.Granted)
	return result, nil
}

func (s *TaskService) Categories() []model.CategoryValue {
	known := model.KnownCategories()
	out := make([]model.CategoryValue, len(known))
	for i, c := range known {
		out[i] = model.CategoryValue{Category: c, Points: c.Points()}
	}
	return out
}
