// Package ledger derives balances and collection state from completed tasks
// and reward history. Nothing here is stored; every value is recomputed from
// its inputs.
package ledger

import (
	"sort"

	"study_garden/internal/model"
)

// FreeAwardInterval is the number of completions that earns one free award.
const FreeAwardInterval = 5

func Earned(tasks []*model.Task) int {
	total := 0
	for _, t := range tasks {
		if t.Completed {
			total += t.Category.Points()
		}
	}
	return total
}

// Spent sums every recorded cost. Refunds carry negative costs.
func Spent(entries []*model.LedgerEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Cost
	}
	return total
}

func Balance(tasks []*model.Task, entries []*model.LedgerEntry) model.Balance {
	earned := Earned(tasks)
	spent := Spent(entries)
	return model.Balance{
		Earned:  earned,
		Spent:   spent,
		Balance: earned - spent,
	}
}

func CompletedCount(tasks []*model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

func FreeAwardsDue(completed int) int {
	return completed / FreeAwardInterval
}

// OwnedNames is the set of distinct names with an acquisition entry.
// Expenditures and refunds never add ownership.
func OwnedNames(entries []*model.LedgerEntry) map[string]struct{} {
	owned := make(map[string]struct{})
	for _, e := range entries {
		if e.Kind == model.EntryAcquisition {
			owned[e.Name] = struct{}{}
		}
	}
	return owned
}

// Owned projects one row per distinct acquired name, keeping the rarity and
// time of the first acquisition, ordered by that time.
func Owned(entries []*model.LedgerEntry) []*model.OwnedReward {
	byName := make(map[string]*model.OwnedReward)
	duplicates := make(map[string]int)

	for _, e := range entries {
		switch e.Kind {
		case model.EntryAcquisition:
			cur, ok := byName[e.Name]
			if !ok || e.AcquiredAt.Before(cur.AcquiredAt) {
				byName[e.Name] = &model.OwnedReward{
					Name:       e.Name,
					Rarity:     e.Rarity,
					Source:     e.Source,
					AcquiredAt: e.AcquiredAt,
				}
			}
		case model.EntryRefund:
			duplicates[e.Name]++
		}
	}

	out := make([]*model.OwnedReward, 0, len(byName))
	for name, r := range byName {
		r.Duplicates = duplicates[name]
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AcquiredAt.Equal(out[j].AcquiredAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].AcquiredAt.Before(out[j].AcquiredAt)
	})
	return out
}

func Progress(tasks []*model.Task, entries []*model.LedgerEntry, catalogSize int) model.Progress {
	completed := CompletedCount(tasks)
	owned := len(OwnedNames(entries))

	next := FreeAwardInterval - completed%FreeAwardInterval
	return model.Progress{
		TotalCompleted:     completed,
		FreeAwardsDue:      FreeAwardsDue(completed),
		NextFreeAwardIn:    next,
		Owned:              owned,
		CatalogSize:        catalogSize,
		CollectionComplete: catalogSize > 0 && owned >= catalogSize,
	}
}
