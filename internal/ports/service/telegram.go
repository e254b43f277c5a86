package service

import (
	"context"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
)

// ITelegramService обработка входящих обновлений от Telegram
type ITelegramService interface {
	HandleUpdate(ctx context.Context, update *domain.Update) error
}
