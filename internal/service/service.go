package service

import (
	"context"

	"study_garden/internal/model"
)

type Service struct {
	*TaskService
	*RewardService
}

func NewService(taskService *TaskService, rewardService *RewardService) *Service {
	return &Service{
		TaskService:   taskService,
		RewardService: rewardService,
	}
}

type TaskServiceI interface {
	CreateTask(ctx context.Context, userID int64, input TaskInput) (*model.Task, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
	MarkCompleted(ctx context.Context, userID, taskID int64) (*model.FreeAwardResult, error)
	Categories() []model.CategoryValue
}

type RewardServiceI interface {
	GrantFreeAwards(ctx context.Context, userID int64) (*model.FreeAwardResult, error)
	Roll(ctx context.Context, userID int64) (*model.RollOutcome, error)
	Balance(ctx context.Context, userID int64) (*model.Balance, error)
	ListOwned(ctx context.Context, userID int64) ([]*model.OwnedReward, error)
	ListCatalog(ctx context.Context, userID int64) ([]*model.CatalogItem, error)
	History(ctx context.Context, userID int64) ([]*model.LedgerEntry, error)
	Progress(ctx context.Context, userID int64) (*model.Progress, error)
}

type Transactor interface {
	// Transaction runs fn atomically. Repository calls made with the ctx
	// passed to fn take part in the transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, userID, taskID int64) (*model.Task, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	CompleteTask(ctx context.Context, userID, taskID int64) error
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

type LedgerRepository interface {
	AppendLedgerEntry(ctx context.Context, entry *model.LedgerEntry) error
	ListLedger(ctx context.Context, userID int64) ([]*model.LedgerEntry, error)
}

type Repository interface {
	Transactor
	TaskRepository
	LedgerRepository
}

// Publisher receives reward events after the transaction that produced them
// has committed.
type Publisher interface {
	Publish(ctx context.Context, event model.RewardEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.RewardEvent) {}
