package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	reviewUsecase "github.com/admin/tg-bots/cashier-bot/internal/usecases/review"
)

const (
	paymentExpirerName     = "payment-expirer"
	paymentExpirerInterval = 5 * time.Minute
	paymentExpirerBatch    = 100
)

// PaymentExpirer джоба автоматической отмены просроченных заявок
// Заявки с истёкшим expires_at отменяются системным действием cancel
type PaymentExpirer struct {
	paymentRepo   repository.IPaymentRepo
	reviewService *reviewUsecase.Service
	log           *slog.Logger
}

func NewPaymentExpirer(
	paymentRepo repository.IPaymentRepo,
	reviewService *reviewUsecase.Service,
	log *slog.Logger,
) *PaymentExpirer {
	return &PaymentExpirer{
		paymentRepo:   paymentRepo,
		reviewService: reviewService,
		log:           log,
	}
}

func (j *PaymentExpirer) Name() string {
	return paymentExpirerName
}

// NextRun каждые 5 минут
func (j *PaymentExpirer) NextRun(now time.Time) time.Time {
	return now.Add(paymentExpirerInterval)
}

// Run отменяет просроченные заявки
func (j *PaymentExpirer) Run(ctx context.Context) error {
	expired, err := j.paymentRepo.ListExpired(ctx, time.Now(), paymentExpirerBatch)
	if err != nil {
		return fmt.Errorf("failed to list expired payments: %w", err)
	}

	if len(expired) == 0 {
		return nil
	}

	cancelled := 0
	for _, payment := range expired {
		_, err := j.reviewService.Transition(ctx, payment.ID, domain.ActionCancel, domain.ActorSystem)
		switch {
		case err == nil:
			cancelled++
		case domain.IsInvalidTransition(err):
			// Оператор успел обработать заявку между выборкой и отменой
			j.log.Debug("expired payment already handled",
				"payment_id", payment.ID,
			)
		default:
			j.log.Error("failed to cancel expired payment",
				"error", err,
				"payment_id", payment.ID,
			)
		}
	}

	j.log.Info("expired payments processed",
		"found", len(expired),
		"cancelled", cancelled,
	)

	return nil
}
