package review

import (
	"log/slog"

	kafkaPorts "github.com/admin/tg-bots/cashier-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/storage"
)

// Service бизнес-логика ручной проверки платежей
type Service struct {
	PaymentRepo repository.IPaymentRepo
	StepRepo    repository.IStepRepo
	Notifier    service.INotifierService
	Events      kafkaPorts.IEventProducer // может быть nil, события тогда не публикуются
	Proofs      storage.IProofStorage     // может быть nil, загрузка чеков тогда недоступна

	AdminChatID    int64
	ManagersChatID int64

	Log *slog.Logger
}

var _ service.IReviewService = (*Service)(nil)

// New создаёт новый сервис ручной проверки платежей
func New(
	paymentRepo repository.IPaymentRepo,
	stepRepo repository.IStepRepo,
	notifier service.INotifierService,
	events kafkaPorts.IEventProducer,
	proofs storage.IProofStorage,
	adminChatID int64,
	managersChatID int64,
	log *slog.Logger,
) *Service {
	return &Service{
		PaymentRepo:    paymentRepo,
		StepRepo:       stepRepo,
		Notifier:       notifier,
		Events:         events,
		Proofs:         proofs,
		AdminChatID:    adminChatID,
		ManagersChatID: managersChatID,
		Log:            log,
	}
}
