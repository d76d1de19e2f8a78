package service

import (
	"context"

	"study_garden/internal/catalog"
	"study_garden/internal/clock"
	"study_garden/internal/ledger"
	"study_garden/internal/model"
	"study_garden/internal/random"
	"study_garden/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RollCost        = 5
	DuplicateRefund = 1
)

// RewardService is the award engine: the only writer of the reward ledger.
type RewardService struct {
	repo      Repository
	catalog   *catalog.Catalog
	rnd       random.Source
	clock     clock.Clock
	publisher Publisher
	locks     *userLocks
}

func NewRewardService(repo Repository, cat *catalog.Catalog, rnd random.Source, clk clock.Clock, publisher Publisher) *RewardService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &RewardService{
		repo:      repo,
		catalog:   cat,
		rnd:       rnd,
		clock:     clk,
		publisher: publisher,
		locks:     newUserLocks(),
	}
}

// GrantFreeAwards tops the user's collection up to one distinct reward per
// five completed tasks. Calling it again without new completions writes
// nothing.
func (s *RewardService) GrantFreeAwards(ctx context.Context, userID int64) (*model.FreeAwardResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var result *model.FreeAwardResult
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.grantFreeAwards(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeError("grant free awards", err)
	}

	s.publish(ctx, result.Granted)
	return result, nil
}

// grantFreeAwards must run inside a transaction while holding userID's lock.
func (s *RewardService) grantFreeAwards(ctx context.Context, userID int64) (*model.FreeAwardResult, error) {
	log := logger.Logger()

	completed, err := s.repo.ListTasks(ctx, model.TaskFilter{UserID: userID, Status: model.TaskStatusCompleted})
	if err != nil {
		return nil, &StoreError{Op: "list completed tasks", Err: err}
	}
	entries, err := s.repo.ListLedger(ctx, userID)
	if err != nil {
		return nil, &StoreError{Op: "list ledger", Err: err}
	}

	due := ledger.FreeAwardsDue(ledger.CompletedCount(completed))
	owned := ledger.OwnedNames(entries)

	result := &model.FreeAwardResult{Granted: []model.RewardEvent{}}
	for len(owned) < due {
		unowned := s.catalog.Unowned(owned)
		if len(unowned) == 0 {
			result.Exhausted = true
			log.Info("catalog exhausted, free award skipped",
				zap.Int64("user_id", userID),
				zap.Int("due", due),
				zap.Int("owned", len(owned)))
			break
		}

		pick := unowned[s.rnd.Intn(len(unowned))]
		rarity := catalog.DrawRarity(s.rnd)
		now := s.clock.Now()

		entry := model.NewAcquisition(userID, pick.Name, rarity, model.SourceFree, uuid.NullUUID{}, now)
		if err = s.repo.AppendLedgerEntry(ctx, entry); err != nil {
			return nil, &StoreError{Op: "append free award", Err: err}
		}
		owned[pick.Name] = struct{}{}

		log.Info("free award granted",
			zap.Int64("user_id", userID),
			zap.String("name", pick.Name),
			zap.String("rarity", string(rarity)))

		result.Granted = append(result.Granted, model.RewardEvent{
			ID:         uuid.New(),
			UserID:     userID,
			Type:       model.EventFreeAward,
			Name:       pick.Name,
			Rarity:     rarity,
			OccurredAt: now,
		})
	}

	return result, nil
}

// Roll spends RollCost points on a weighted draw from the whole catalog. The
// debit is written before the outcome, in the same transaction.
func (s *RewardService) Roll(ctx context.Context, userID int64) (*model.RollOutcome, error) {
	log := logger.Logger()

	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		outcome *model.RollOutcome
		event   model.RewardEvent
	)
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if s.catalog.Len() == 0 {
			return ErrCatalogExhausted
		}

		completed, err := s.repo.ListTasks(ctx, model.TaskFilter{UserID: userID, Status: model.TaskStatusCompleted})
		if err != nil {
			return &StoreError{Op: "list completed tasks", Err: err}
		}
		entries, err := s.repo.ListLedger(ctx, userID)
		if err != nil {
			return &StoreError{Op: "list ledger", Err: err}
		}

		balance := ledger.Balance(completed, entries)
		log.Debug("roll balance check",
			zap.Int64("user_id", userID),
			zap.Int("balance", balance.Balance),
			zap.Int("cost", RollCost))
		if balance.Balance < RollCost {
			return &InsufficientFundsError{Balance: balance.Balance, Cost: RollCost}
		}

		rollID := uuid.New()
		now := s.clock.Now()
		if err = s.repo.AppendLedgerEntry(ctx, model.NewExpenditure(userID, RollCost, rollID, now)); err != nil {
			return &StoreError{Op: "append roll debit", Err: err}
		}

		pick, ok := s.catalog.WeightedPick(s.rnd)
		if !ok {
			return ErrCatalogExhausted
		}

		outcome = &model.RollOutcome{
			RollID:       rollID,
			Name:         pick.Name,
			Cost:         RollCost,
			BalanceAfter: balance.Balance - RollCost,
		}
		event = model.RewardEvent{
			ID:         uuid.New(),
			UserID:     userID,
			Name:       pick.Name,
			OccurredAt: now,
		}

		if _, dup := ledger.OwnedNames(entries)[pick.Name]; dup {
			err = s.repo.AppendLedgerEntry(ctx, model.NewRefund(userID, pick.Name, DuplicateRefund, rollID, now))
			if err != nil {
				return &StoreError{Op: "append duplicate refund", Err: err}
			}
			outcome.Result = model.RollDuplicate
			outcome.Rarity = pick.Rarity
			outcome.Refund = DuplicateRefund
			outcome.BalanceAfter += DuplicateRefund

			event.Type = model.EventRollDuplicate
			event.Rarity = pick.Rarity
			event.Refund = DuplicateRefund
			return nil
		}

		rarity := catalog.DrawRarity(s.rnd)
		err = s.repo.AppendLedgerEntry(ctx, model.NewAcquisition(userID, pick.Name, rarity, model.SourceRoll,
			uuid.NullUUID{UUID: rollID, Valid: true}, now))
		if err != nil {
			return &StoreError{Op: "append roll reward", Err: err}
		}
		outcome.Result = model.RollNew
		outcome.Rarity = rarity

		event.Type = model.EventRollNew
		event.Rarity = rarity
		return nil
	})
	if err != nil {
		return nil, storeError("roll", err)
	}

	log.Info("roll resolved",
		zap.Int64("user_id", userID),
		zap.String("roll_id", outcome.RollID.String()),
		zap.String("result", string(outcome.Result)),
		zap.String("name", outcome.Name),
		zap.String("rarity", string(outcome.Rarity)))

	s.publish(ctx, []model.RewardEvent{event})
	return outcome, nil
}

func (s *RewardService) Balance(ctx context.Context, userID int64) (*model.Balance, error) {
	completed, entries, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	b := ledger.Balance(completed, entries)
	return &b, nil
}

func (s *RewardService) ListOwned(ctx context.Context, userID int64) ([]*model.OwnedReward, error) {
	entries, err := s.repo.ListLedger(ctx, userID)
	if err != nil {
		return nil, storeError("list ledger", err)
	}
	return ledger.Owned(entries), nil
}

func (s *RewardService) ListCatalog(ctx context.Context, userID int64) ([]*model.CatalogItem, error) {
	entries, err := s.repo.ListLedger(ctx, userID)
	if err != nil {
		return nil, storeError("list ledger", err)
	}
	owned := ledger.OwnedNames(entries)

	items := make([]*model.CatalogItem, 0, s.catalog.Len())
	for _, e := range s.catalog.Entries() {
		_, has := owned[e.Name]
		items = append(items, &model.CatalogItem{
			Name:   e.Name,
			Rarity: e.Rarity,
			Owned:  has,
		})
	}
	return items, nil
}

// History returns every ledger entry, newest first.
func (s *RewardService) History(ctx context.Context, userID int64) ([]*model.LedgerEntry, error) {
	entries, err := s.repo.ListLedger(ctx, userID)
	if err != nil {
		return nil, storeError("list ledger", err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *RewardService) Progress(ctx context.Context, userID int64) (*model.Progress, error) {
	completed, entries, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := ledger.Progress(completed, entries, s.catalog.Len())
	return &p, nil
}

func (s *RewardService) load(ctx context.Context, userID int64) ([]*model.Task, []*model.LedgerEntry, error) {
	completed, err := s.repo.ListTasks(ctx, model.TaskFilter{UserID: userID, Status: model.TaskStatusCompleted})
	if err != nil {
		return nil, nil, storeError("list completed tasks", err)
	}
	entries, err := s.repo.ListLedger(ctx, userID)
	if err != nil {
		return nil, nil, storeError("list ledger", err)
	}
	return completed, entries, nil
}

func (s *RewardService) publish(ctx context.Context, events []model.RewardEvent) {
	for _, e := range events {
		s.publisher.Publish(ctx, e)
	}
}
