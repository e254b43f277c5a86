package telegram

import (
	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	tgPorts "github.com/admin/tg-bots/cashier-bot/internal/ports/telegram"
)

// Service обработчик команд операторов из Telegram
// Все действия требуют, чтобы отправитель был в списке операторов
type Service struct {
	Client       tgPorts.IClient
	Review       service.IReviewService
	AdminUserIDs map[int64]struct{}
	Log          *slog.Logger
}

func New(
	client tgPorts.IClient,
	reviewService service.IReviewService,
	adminUserIDs []int64,
	log *slog.Logger,
) *Service {
	admins := make(map[int64]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = struct{}{}
	}

	return &Service{
		Client:       client,
		Review:       reviewService,
		AdminUserIDs: admins,
		Log:          log,
	}
}

var _ service.ITelegramService = (*Service)(nil)

// isAuthorized проверяет, что отправитель входит в список операторов
func (s *Service) isAuthorized(from *domain.TelegramUser) bool {
	if from == nil {
		return false
	}
	_, ok := s.AdminUserIDs[from.ID]
	return ok
}
