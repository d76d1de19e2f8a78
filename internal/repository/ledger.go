package repository

import (
	"context"
	"fmt"
	"time"

	"study_garden/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type LedgerEntry struct {
	ID         int64         `db:"id"`
	UserID     int64         `db:"user_id"`
	Kind       string        `db:"kind"`
	Name       string        `db:"name"`
	Rarity     string        `db:"rarity"`
	Cost       int           `db:"cost"`
	Source     string        `db:"source"`
	RollID     uuid.NullUUID `db:"roll_id"`
	AcquiredAt time.Time     `db:"acquired_at"`
}

// AppendLedgerEntry inserts e and sets its ID. Ledger rows are never updated
// or deleted.
func (r *Repository) AppendLedgerEntry(ctx context.Context, e *model.LedgerEntry) error {
	query, args, err := squirrel.
		Insert("reward_ledger").
		SetMap(map[string]interface{}{
			"user_id":     e.UserID,
			"kind":        string(e.Kind),
			"name":        e.Name,
			"rarity":      string(e.Rarity),
			"cost":        e.Cost,
			"source":      string(e.Source),
			"roll_id":     e.RollID,
			"acquired_at": e.AcquiredAt.UTC(),
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ledger insert query: %w", err)
	}

	var id int64
	if err = r.conn(ctx).GetContext(ctx, &id, query, args...); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	e.ID = id
	return nil
}

// ListLedger returns the user's ledger in insertion order.
func (r *Repository) ListLedger(ctx context.Context, userID int64) ([]*model.LedgerEntry, error) {
	query, args, err := squirrel.
		Select("id", "user_id", "kind", "name", "rarity", "cost", "source", "roll_id", "acquired_at").
		From("reward_ledger").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id").
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*LedgerEntry
	if err = r.conn(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}

	entries := make([]*model.LedgerEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.LedgerEntry{
			ID:         row.ID,
			UserID:     row.UserID,
			Kind:       model.EntryKind(row.Kind),
			Name:       row.Name,
			Rarity:     model.Rarity(row.Rarity),
			Cost:       row.Cost,
			Source:     model.AwardSource(row.Source),
			RollID:     row.RollID,
			AcquiredAt: row.AcquiredAt.UTC(),
		}
	}
	return entries, nil
}
