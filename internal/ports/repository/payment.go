package repository

import (
	"context"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

// TransitionUpdate атомарное применение перехода: CAS по статусу + шаг истории
// Дополнительные поля (код 3DS, новая карта, банковские данные) пишутся тем же UPDATE
type TransitionUpdate struct {
	PaymentID uuid.UUID
	Action    domain.PaymentAction
	From      domain.PaymentStatus
	To        domain.PaymentStatus
	Step      *domain.PaymentStep

	ThreeDSCode *string
	Card        *domain.CardDetails
	Bank        *domain.BankCredentials
}

// IPaymentRepo репозиторий платежей
type IPaymentRepo interface {
	// Create вставляет платёж вместе с первым шагом истории в одной транзакции
	Create(ctx context.Context, payment *domain.Payment, initialStep *domain.PaymentStep) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Payment, error)
	// ListAwaitingReview платежи в нетерминальных статусах старше порога
	ListAwaitingReview(ctx context.Context, olderThan time.Time, limit int) ([]domain.Payment, error)
	// ListExpired нетерминальные платежи с истёкшим expires_at
	ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Payment, error)
	// ApplyTransition одним юнитом: CAS UPDATE статуса + INSERT шага
	// При проигрыше гонки возвращает *domain.InvalidTransitionError с фактическим статусом
	ApplyTransition(ctx context.Context, upd TransitionUpdate) error
	SetProofPath(ctx context.Context, id uuid.UUID, proofPath string) error
}
