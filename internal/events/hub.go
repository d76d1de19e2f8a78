package events

import (
	"context"
	"sync"

	"study_garden/internal/model"
	"study_garden/pkg/logger"

	"go.uber.org/zap"
)

const subscriberBuffer = 16

type Publisher interface {
	Publish(ctx context.Context, event model.RewardEvent)
}

// Hub fans reward events out to the subscribers of the user they belong to.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int64]map[int]chan model.RewardEvent
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[int]chan model.RewardEvent)}
}

// Subscribe returns a channel of userID's events and a cancel func that
// closes it.
func (h *Hub) Subscribe(userID int64) (<-chan model.RewardEvent, func()) {
	ch := make(chan model.RewardEvent, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan model.RewardEvent)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(_ context.Context, event model.RewardEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[event.UserID] {
		select {
		case ch <- event:
		default:
			logger.Logger().Warn("dropping reward event for slow subscriber",
				zap.Int64("user_id", event.UserID),
				zap.String("event_id", event.ID.String()))
		}
	}
}

func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Fanout publishes every event to each of its publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event model.RewardEvent) {
	for _, p := range f {
		p.Publish(ctx, event)
	}
}
