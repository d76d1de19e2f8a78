package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"study_garden/internal/catalog"
	"study_garden/internal/clock"
	"study_garden/internal/model"
	"study_garden/internal/random"
	"study_garden/internal/service"
	"study_garden/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFreeAward_FiveHomeworkGrantsOne(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 1)

	results := env.complete(t, model.CategoryHomework, 5)
	for _, res := range results[:4] {
		assert.Empty(t, res.Granted)
	}
	require.Len(t, results[4].Granted, 1)
	assert.Equal(t, model.EventFreeAward, results[4].Granted[0].Type)

	entries := env.ledger(t)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Cost)
	assert.Equal(t, model.EntryAcquisition, entries[0].Kind)
	assert.Equal(t, model.SourceFree, entries[0].Source)
	assert.True(t, entries[0].Rarity.IsValid())

	assert.Equal(t, 5, env.balance(t))
	assert.Len(t, env.pub.Events(), 1)
}

func TestFreeAward_Idempotent(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 2)
	env.complete(t, model.CategoryQuiz, 10)
	before := env.ledger(t)
	require.Len(t, before, 2)

	for i := 0; i < 3; i++ {
		res, err := env.svc.GrantFreeAwards(context.Background(), testUser)
		require.NoError(t, err)
		assert.Empty(t, res.Granted)
		assert.False(t, res.Exhausted)
	}
	assert.Equal(t, before, env.ledger(t))
}

func TestFreeAward_NeverRepeatsOwnedNames(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 3)
	env.complete(t, model.CategoryHomework, 5*len(catalog.DefaultNames))

	seen := map[string]bool{}
	for _, e := range env.ledger(t) {
		assert.False(t, seen[e.Name], "free award repeated %s", e.Name)
		seen[e.Name] = true
	}
	assert.Len(t, seen, len(catalog.DefaultNames))
}

func TestFreeAward_CatalogExhausted(t *testing.T) {
	env := newTestEnv(t, []string{"Fern", "Rose", "Tulip"}, 4)

	results := env.complete(t, model.CategoryHomework, 20)
	assert.Len(t, env.ledger(t), 3)
	assert.True(t, results[19].Exhausted)
	assert.Empty(t, results[19].Granted)

	before := env.ledger(t)
	res, err := env.svc.GrantFreeAwards(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.Empty(t, res.Granted)
	assert.Equal(t, before, env.ledger(t))

	progress, err := env.svc.Progress(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 4, progress.FreeAwardsDue)
	assert.Equal(t, 3, progress.Owned)
	assert.True(t, progress.CollectionComplete)
}

func TestFreeAward_OwnedCoversDue(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 5)

	for i := 1; i <= 23; i++ {
		env.complete(t, model.CategoryPaper, 1)
		want := i / 5
		if want > len(catalog.DefaultNames) {
			want = len(catalog.DefaultNames)
		}
		assert.GreaterOrEqual(t, env.ownedCount(t), want)
	}
}

func TestRoll_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 6)
	env.complete(t, model.CategoryHomework, 4)

	outcome, err := env.svc.Roll(context.Background(), testUser)
	assert.Nil(t, outcome)
	require.ErrorIs(t, err, service.ErrInsufficientFunds)

	var funds *service.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, 4, funds.Balance)
	assert.Equal(t, service.RollCost, funds.Cost)

	assert.Empty(t, env.ledger(t))
	assert.Empty(t, env.pub.Events())
}

func TestRoll_ExactBalance(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 7)
	env.complete(t, model.CategoryMidTerm, 1)
	require.Equal(t, 5, env.balance(t))

	outcome, err := env.svc.Roll(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, model.RollNew, outcome.Result)
	assert.Equal(t, 0, outcome.BalanceAfter)
	assert.Equal(t, 0, env.balance(t))

	entries := env.ledger(t)
	require.Len(t, entries, 2)
	// newest first: acquisition, then the debit
	assert.Equal(t, model.EntryExpenditure, entries[1].Kind)
	assert.Equal(t, service.RollCost, entries[1].Cost)
	assert.Equal(t, model.EntryAcquisition, entries[0].Kind)
	assert.Equal(t, model.SourceRoll, entries[0].Source)
	assert.Equal(t, entries[1].RollID, entries[0].RollID)
	assert.Equal(t, outcome.RollID, entries[1].RollID.UUID)
}

func TestRoll_DuplicateRefund(t *testing.T) {
	env := newTestEnv(t, []string{"Fern"}, 8)
	env.complete(t, model.CategoryFinal, 1)

	first, err := env.svc.Roll(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, model.RollNew, first.Result)
	assert.Equal(t, "Fern", first.Name)
	assert.Equal(t, 1, env.ownedCount(t))

	second, err := env.svc.Roll(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, model.RollDuplicate, second.Result)
	assert.Equal(t, service.DuplicateRefund, second.Refund)
	assert.Equal(t, 1, second.BalanceAfter)
	assert.Equal(t, 1, env.balance(t))
	assert.Equal(t, 1, env.ownedCount(t))

	entries := env.ledger(t)
	require.Len(t, entries, 4)
	assert.Equal(t, model.EntryRefund, entries[0].Kind)
	assert.Equal(t, -service.DuplicateRefund, entries[0].Cost)
	assert.Equal(t, "Fern", entries[0].Name)
	assert.Equal(t, second.RollID, entries[0].RollID.UUID)

	owned, err := env.svc.ListOwned(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, owned[0].Duplicates)

	events := env.pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, model.EventRollNew, events[0].Type)
	assert.Equal(t, model.EventRollDuplicate, events[1].Type)
}

func TestRoll_LedgerInvariants(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 9)
	env.complete(t, model.CategoryFinal, 10)

	for {
		before := env.ledger(t)
		ownedBefore := env.ownedCount(t)
		balanceBefore := env.balance(t)

		outcome, err := env.svc.Roll(context.Background(), testUser)
		if errors.Is(err, service.ErrInsufficientFunds) {
			assert.Less(t, balanceBefore, service.RollCost)
			assert.Equal(t, before, env.ledger(t))
			break
		}
		require.NoError(t, err)

		after := env.ledger(t)
		require.Len(t, after, len(before)+2)
		debit := after[1]
		assert.Equal(t, model.EntryExpenditure, debit.Kind)
		assert.Equal(t, service.RollCost, debit.Cost)

		switch outcome.Result {
		case model.RollNew:
			assert.Equal(t, ownedBefore+1, env.ownedCount(t))
			assert.Equal(t, balanceBefore-service.RollCost, env.balance(t))
		case model.RollDuplicate:
			assert.Equal(t, ownedBefore, env.ownedCount(t))
			assert.Equal(t, balanceBefore-service.RollCost+service.DuplicateRefund, env.balance(t))
		default:
			t.Fatalf("unexpected roll result %q", outcome.Result)
		}
		assert.Equal(t, outcome.BalanceAfter, env.balance(t))
	}

	b, err := env.svc.Balance(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 100, b.Earned)
	assert.Equal(t, b.Earned-b.Spent, b.Balance)
}

func TestRoll_DeterministicWithSeed(t *testing.T) {
	run := func() []model.RollOutcome {
		env := newTestEnv(t, catalog.DefaultNames, 42)
		env.complete(t, model.CategoryFinal, 4)

		var outcomes []model.RollOutcome
		for i := 0; i < 8; i++ {
			o, err := env.svc.Roll(context.Background(), testUser)
			require.NoError(t, err)
			o.RollID = uuid.Nil
			outcomes = append(outcomes, *o)
		}
		return outcomes
	}

	assert.Equal(t, run(), run())
}

func TestRoll_EmptyCatalog(t *testing.T) {
	env := newTestEnv(t, nil, 10)
	env.complete(t, model.CategoryFinal, 1)

	_, err := env.svc.Roll(context.Background(), testUser)
	assert.ErrorIs(t, err, service.ErrCatalogExhausted)
	assert.Empty(t, env.ledger(t))
}

func TestRoll_StoreErrorRollsBackDebit(t *testing.T) {
	repo := &failingRepository{Repository: newTestRepository(t), failKind: model.EntryAcquisition}
	env := newTestEnvWithRepo(t, repo, catalog.DefaultNames, 11)
	env.complete(t, model.CategoryFinal, 1)

	_, err := env.svc.Roll(context.Background(), testUser)
	var storeErr *service.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "append roll reward", storeErr.Op)

	assert.Empty(t, env.ledger(t))
	assert.Equal(t, 10, env.balance(t))
	assert.Empty(t, env.pub.Events())
}

func TestMarkCompleted_StoreErrorRollsBackCompletion(t *testing.T) {
	repo := &failingRepository{Repository: newTestRepository(t), failKind: model.EntryAcquisition}
	env := newTestEnvWithRepo(t, repo, catalog.DefaultNames, 12)
	env.complete(t, model.CategoryHomework, 4)

	id := env.addTask(t, model.CategoryHomework)
	_, err := env.svc.MarkCompleted(context.Background(), testUser, id)
	var storeErr *service.StoreError
	require.ErrorAs(t, err, &storeErr)

	pending, err := env.svc.ListTasks(context.Background(), model.TaskFilter{UserID: testUser, Status: model.TaskStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, 4, env.balance(t))
}

func TestRoll_ConcurrentRequestsCannotOverspend(t *testing.T) {
	env := newTestEnv(t, catalog.DefaultNames, 13)
	env.complete(t, model.CategoryFinal, 1)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Roll(context.Background(), testUser)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, service.ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.GreaterOrEqual(t, env.balance(t), 0)
}

func TestListCatalog_OwnedFlags(t *testing.T) {
	env := newTestEnv(t, []string{"Fern"}, 14)
	ctx := context.Background()

	items, err := env.svc.ListCatalog(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Owned)

	env.complete(t, model.CategoryHomework, 5)

	again, err := env.svc.ListCatalog(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, again[0].Owned)
	assert.Equal(t, items[0].Rarity, again[0].Rarity)
}

func TestRoll_InsufficientFundsWithMocks(t *testing.T) {
	repo := &mocks.MockRepository{}
	pub := &mocks.MockPublisher{}
	rnd := random.NewSeeded(1)
	cat, err := catalog.New(catalog.DefaultNames, rnd)
	require.NoError(t, err)
	svc := service.NewRewardService(repo, cat, rnd, clock.Fixed(testNow), pub)

	repo.On("Transaction", mock.Anything).Return(nil)
	repo.On("ListTasks", mock.Anything, model.TaskFilter{UserID: testUser, Status: model.TaskStatusCompleted}).
		Return([]*model.Task{{Category: model.CategoryQuiz, Completed: true}}, nil)
	repo.On("ListLedger", mock.Anything, testUser).Return([]*model.LedgerEntry{}, nil)

	_, err = svc.Roll(context.Background(), testUser)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	repo.AssertNotCalled(t, "AppendLedgerEntry", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestReadProjections_StoreError(t *testing.T) {
	repo := &mocks.MockRepository{}
	rnd := random.NewSeeded(1)
	cat, err := catalog.New(catalog.DefaultNames, rnd)
	require.NoError(t, err)
	svc := service.NewRewardService(repo, cat, rnd, clock.Fixed(testNow), nil)

	repo.On("ListTasks", mock.Anything, mock.Anything).Return([]*model.Task{}, nil)
	repo.On("ListLedger", mock.Anything, testUser).Return(nil, errors.New("connection reset"))

	var storeErr *service.StoreError

	_, err = svc.Balance(context.Background(), testUser)
	assert.ErrorAs(t, err, &storeErr)
	_, err = svc.ListOwned(context.Background(), testUser)
	assert.ErrorAs(t, err, &storeErr)
	_, err = svc.ListCatalog(context.Background(), testUser)
	assert.ErrorAs(t, err, &storeErr)
	_, err = svc.History(context.Background(), testUser)
	assert.ErrorAs(t, err, &storeErr)
	_, err = svc.Progress(context.Background(), testUser)
	assert.ErrorAs(t, err, &storeErr)
}
