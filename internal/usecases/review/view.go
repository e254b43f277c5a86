package review

import (
	"context"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

// GetPayment возвращает платёж пользователя
func (s *Service) GetPayment(ctx context.Context, userID, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.getOwned(ctx, userID, paymentID)
}

// ListSteps возвращает историю платежа пользователя в хронологическом порядке
func (s *Service) ListSteps(ctx context.Context, userID, paymentID uuid.UUID) ([]domain.PaymentStep, error) {
	if _, err := s.getOwned(ctx, userID, paymentID); err != nil {
		return nil, err
	}
	return s.StepRepo.ListByPayment(ctx, paymentID)
}

// GetPaymentForReview платёж с историей для оператора, без проверки владельца
func (s *Service) GetPaymentForReview(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, []domain.PaymentStep, error) {
	payment, err := s.PaymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}

	steps, err := s.StepRepo.ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}

	return payment, steps, nil
}

// ListRecent последние платежи для оператора
func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.Payment, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.PaymentRepo.ListRecent(ctx, limit)
}
