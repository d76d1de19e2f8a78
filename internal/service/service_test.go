package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"study_garden/internal/catalog"
	"study_garden/internal/clock"
	"study_garden/internal/model"
	"study_garden/internal/random"
	"study_garden/internal/repository"
	"study_garden/internal/service"

	"github.com/stretchr/testify/require"
)

const testUser int64 = 100

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.RewardEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e model.RewardEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []model.RewardEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.RewardEvent(nil), p.events...)
}

type testEnv struct {
	repo *repository.Repository
	svc  *service.Service
	pub  *recordingPublisher
}

func newTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(repository.Config{
		Driver: repository.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "garden.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = repo.Migrate(context.Background())
	require.NoError(t, err)
	return repo
}

func newTestEnv(t *testing.T, names []string, seed uint64) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, newTestRepository(t), names, seed)
}

func newTestEnvWithRepo(t *testing.T, repo service.Repository, names []string, seed uint64) *testEnv {
	t.Helper()

	rnd := random.NewSeeded(seed)
	cat, err := catalog.New(names, rnd)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	clk := clock.Fixed(testNow)
	rewards := service.NewRewardService(repo, cat, rnd, clk, pub)
	tasks := service.NewTaskService(repo, rewards, clk)

	env := &testEnv{svc: service.NewService(tasks, rewards), pub: pub}
	if r, ok := repo.(*repository.Repository); ok {
		env.repo = r
	}
	return env
}

// addTask creates a task in category and returns its id.
func (e *testEnv) addTask(t *testing.T, category model.Category) int64 {
	t.Helper()
	task, err := e.svc.CreateTask(context.Background(), testUser, service.TaskInput{
		Course:   "BIO 110",
		Title:    "Chapter review",
		Category: category,
		DueAt:    testNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return task.ID
}

// complete creates and completes n tasks in category.
func (e *testEnv) complete(t *testing.T, category model.Category, n int) []*model.FreeAwardResult {
	t.Helper()
	results := make([]*model.FreeAwardResult, 0, n)
	for i := 0; i < n; i++ {
		res, err := e.svc.MarkCompleted(context.Background(), testUser, e.addTask(t, category))
		require.NoError(t, err)
		results = append(results, res)
	}
	return results
}

func (e *testEnv) ledger(t *testing.T) []*model.LedgerEntry {
	t.Helper()
	entries, err := e.svc.History(context.Background(), testUser)
	require.NoError(t, err)
	return entries
}

func (e *testEnv) ownedCount(t *testing.T) int {
	t.Helper()
	owned, err := e.svc.ListOwned(context.Background(), testUser)
	require.NoError(t, err)
	return len(owned)
}

func (e *testEnv) balance(t *testing.T) int {
	t.Helper()
	b, err := e.svc.Balance(context.Background(), testUser)
	require.NoError(t, err)
	return b.Balance
}

// failingRepository fails ledger appends of one kind.
type failingRepository struct {
	*repository.Repository
	failKind model.EntryKind
}

func (r *failingRepository) AppendLedgerEntry(ctx context.Context, e *model.LedgerEntry) error {
	if e.Kind == r.failKind {
		return errors.New("disk full")
	}
	return r.Repository.AppendLedgerEntry(ctx, e)
}
