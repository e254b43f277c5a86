package repository

import (
	"context"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/persistence"
	"github.com/google/uuid"
)

// IStepRepo append-only история шагов платежа
type IStepRepo interface {
	// Append вставляет шаг через переданный executor, чтобы участвовать в транзакции перехода
	Append(ctx context.Context, ex persistence.Executor, step *domain.PaymentStep) error
	// ListByPayment шаги в хронологическом порядке
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]domain.PaymentStep, error)
	LatestByPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentStep, error)
}
