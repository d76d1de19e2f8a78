package notify

import (
	"context"
	"fmt"

	"study_garden/internal/model"
	"study_garden/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const queueSize = 64

type Config struct {
	BotToken string
	Debug    bool
}

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier messages users in their Telegram chat when they unlock a reward.
// Publish only queues; Run delivers.
type Notifier struct {
	sender Sender
	queue  chan model.RewardEvent
}

func NewTelegramNotifier(cfg Config) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = cfg.Debug

	return NewNotifier(bot), nil
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{
		sender: sender,
		queue:  make(chan model.RewardEvent, queueSize),
	}
}

func (n *Notifier) Publish(_ context.Context, event model.RewardEvent) {
	select {
	case n.queue <- event:
	default:
		logger.Logger().Warn("notification queue full, dropping event",
			zap.Int64("user_id", event.UserID),
			zap.String("event_id", event.ID.String()))
	}
}

// Run sends queued notifications until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	log := logger.Logger()

	for {
		select {
		case event := <-n.queue:
			// Private chat ids equal Telegram user ids.
			msg := tgbotapi.NewMessage(event.UserID, FormatEvent(event))
			if _, err := n.sender.Send(msg); err != nil {
				log.Error("failed to send reward notification",
					zap.Int64("user_id", event.UserID),
					zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func FormatEvent(event model.RewardEvent) string {
	switch event.Type {
	case model.EventFreeAward:
		return fmt.Sprintf("🌱 Five more assignments done! You earned a free %s (%s).", event.Name, event.Rarity)
	case model.EventRollNew:
		return fmt.Sprintf("✨ New plant unlocked: %s (%s).", event.Name, event.Rarity)
	case model.EventRollDuplicate:
		return fmt.Sprintf("You already have %s. %d point refunded.", event.Name, event.Refund)
	default:
		return fmt.Sprintf("Reward update: %s", event.Name)
	}
}
