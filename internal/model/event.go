package model

import (
	"time"

	"github.com/google/uuid"
)

type RewardEventType string

const (
	EventFreeAward     RewardEventType = "free_award"
	EventRollNew       RewardEventType = "roll_new"
	EventRollDuplicate RewardEventType = "roll_duplicate"
)

type RewardEvent struct {
	ID         uuid.UUID       `json:"id"`
	UserID     int64           `json:"user_id"`
	Type       RewardEventType `json:"type"`
	Name       string          `json:"name"`
	Rarity     Rarity          `json:"rarity,omitempty"`
	Refund     int             `json:"refund,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type RollResult string

const (
	RollNew       RollResult = "new"
	RollDuplicate RollResult = "duplicate"
)

type RollOutcome struct {
	RollID       uuid.UUID
	Result       RollResult
	Name         string
	Rarity       Rarity
	Cost         int
	Refund       int
	BalanceAfter int
}

type FreeAwardResult struct {
	Granted   []RewardEvent
	Exhausted bool
}
