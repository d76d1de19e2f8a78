package mocks

import (
	"context"

	"study_garden/internal/model"
	"study_garden/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

// Transaction records the call and runs fn with the same context.
func (m *MockRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *MockRepository) CreateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRepository) GetTask(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockRepository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockRepository) CompleteTask(ctx context.Context, userID, taskID int64) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func (m *MockRepository) DeleteTask(ctx context.Context, userID, taskID int64) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func (m *MockRepository) AppendLedgerEntry(ctx context.Context, entry *model.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRepository) ListLedger(ctx context.Context, userID int64) ([]*model.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LedgerEntry), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event model.RewardEvent) {
	m.Called(ctx, event)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(ctx context.Context, userID int64, input service.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func (m *MockTaskService) MarkCompleted(ctx context.Context, userID, taskID int64) (*model.FreeAwardResult, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FreeAwardResult), args.Error(1)
}

func (m *MockTaskService) Categories() []model.CategoryValue {
	args := m.Called()
	return args.Get(0).([]model.CategoryValue)
}

type MockRewardService struct {
	mock.Mock
}

func (m *MockRewardService) GrantFreeAwards(ctx context.Context, userID int64) (*model.FreeAwardResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FreeAwardResult), args.Error(1)
}

func (m *MockRewardService) Roll(ctx context.Context, userID int64) (*model.RollOutcome, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RollOutcome), args.Error(1)
}

func (m *MockRewardService) Balance(ctx context.Context, userID int64) (*model.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Balance), args.Error(1)
}

func (m *MockRewardService) ListOwned(ctx context.Context, userID int64) ([]*model.OwnedReward, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OwnedReward), args.Error(1)
}

func (m *MockRewardService) ListCatalog(ctx context.Context, userID int64) ([]*model.CatalogItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CatalogItem), args.Error(1)
}

func (m *MockRewardService) History(ctx context.Context, userID int64) ([]*model.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LedgerEntry), args.Error(1)
}

func (m *MockRewardService) Progress(ctx context.Context, userID int64) (*model.Progress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Progress), args.Error(1)
}

var (
	_ service.Repository     = (*MockRepository)(nil)
	_ service.Publisher      = (*MockPublisher)(nil)
	_ service.TaskServiceI   = (*MockTaskService)(nil)
	_ service.RewardServiceI = (*MockRewardService)(nil)
)
