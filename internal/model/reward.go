package model

import (
	"time"

	"github.com/google/uuid"
)

type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists every tier from most to least likely.
func Rarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

var rarityWeights = map[Rarity]int{
	RarityCommon:    50,
	RarityRare:      30,
	RarityEpic:      15,
	RarityLegendary: 5,
}

// Weight is the tier's selection weight out of 100.
func (r Rarity) Weight() int {
	return rarityWeights[r]
}

func (r Rarity) IsValid() bool {
	_, ok := rarityWeights[r]
	return ok
}

type CatalogEntry struct {
	Name   string
	Rarity Rarity
}

type EntryKind string

const (
	EntryAcquisition EntryKind = "acquisition"
	EntryExpenditure EntryKind = "expenditure"
	EntryRefund      EntryKind = "refund"
)

type AwardSource string

const (
	SourceFree AwardSource = "free"
	SourceRoll AwardSource = "roll"
)

// LedgerEntry is one append-only row of reward history. Cost is positive for
// points spent, zero for acquisitions and negative for refunds.
type LedgerEntry struct {
	ID         int64
	UserID     int64
	Kind       EntryKind
	Name       string
	Rarity     Rarity
	Cost       int
	Source     AwardSource
	RollID     uuid.NullUUID
	AcquiredAt time.Time
}

func NewAcquisition(userID int64, name string, rarity Rarity, source AwardSource, rollID uuid.NullUUID, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		UserID:     userID,
		Kind:       EntryAcquisition,
		Name:       name,
		Rarity:     rarity,
		Cost:       0,
		Source:     source,
		RollID:     rollID,
		AcquiredAt: at,
	}
}

func NewExpenditure(userID int64, amount int, rollID uuid.UUID, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		UserID:     userID,
		Kind:       EntryExpenditure,
		Cost:       amount,
		Source:     SourceRoll,
		RollID:     uuid.NullUUID{UUID: rollID, Valid: true},
		AcquiredAt: at,
	}
}

// NewRefund records amount points returned; name is the duplicate that caused it.
func NewRefund(userID int64, name string, amount int, rollID uuid.UUID, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		UserID:     userID,
		Kind:       EntryRefund,
		Name:       name,
		Cost:       -amount,
		Source:     SourceRoll,
		RollID:     uuid.NullUUID{UUID: rollID, Valid: true},
		AcquiredAt: at,
	}
}

type Balance struct {
	Earned  int
	Spent   int
	Balance int
}

type OwnedReward struct {
	Name       string
	Rarity     Rarity
	Source     AwardSource
	AcquiredAt time.Time
	Duplicates int
}

type CatalogItem struct {
	Name   string
	Rarity Rarity
	Owned  bool
}

type Progress struct {
	TotalCompleted     int
	FreeAwardsDue      int
	NextFreeAwardIn    int
	Owned              int
	CatalogSize        int
	CollectionComplete bool
}
