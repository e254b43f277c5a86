package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	"github.com/admin/tg-bots/cashier-bot/internal/services/notifier"
	"github.com/google/uuid"
)

// Transition применяет действие оператора или системы к платежу
// Смена статуса и шаг истории атомарны; при гонке выигрывает ровно один вызов,
// остальные получают InvalidTransitionError с фактическим статусом
func (s *Service) Transition(ctx context.Context, paymentID uuid.UUID, action domain.PaymentAction, actor string) (*domain.Payment, error) {
	payment, err := s.PaymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	next, ok := domain.NextStatus(payment.Status, action)
	if !ok {
		s.Log.Debug("transition rejected",
			"payment_id", paymentID,
			"action", action,
			"status", payment.Status,
		)
		return nil, &domain.InvalidTransitionError{
			PaymentID: paymentID,
			Action:    action,
			Current:   payment.Status,
		}
	}

	upd := repository.TransitionUpdate{
		PaymentID: paymentID,
		Action:    action,
		From:      payment.Status,
		To:        next,
		Step:      s.buildStep(payment, action, next, actor),
	}

	if err := s.PaymentRepo.ApplyTransition(ctx, upd); err != nil {
		return nil, err
	}

	updated, err := s.PaymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, updated, action, payment.Status, next, actor)
	s.notifyAfterTransition(updated)

	return updated, nil
}

func (s *Service) buildStep(payment *domain.Payment, action domain.PaymentAction, next domain.PaymentStatus, actor string) *domain.PaymentStep {
	return &domain.PaymentStep{
		ID:          uuid.New(),
		PaymentID:   payment.ID,
		StepType:    domain.StepTypeForStatus(next),
		Status:      next,
		Description: describeAction(action, next),
		Actor:       actor,
		Details: domain.StepDetails{
			"action": string(action),
			"from":   string(payment.Status),
		},
		CreatedAt: time.Now(),
	}
}

func describeAction(action domain.PaymentAction, next domain.PaymentStatus) string {
	switch action {
	case domain.ActionApprove:
		return "Платёж подтверждён"
	case domain.ActionApproveCard:
		return "Карта прошла проверку"
	case domain.ActionApprove3DS:
		return "Код 3DS подтверждён"
	case domain.ActionReject:
		return "Платёж отклонён"
	case domain.ActionRequest3DS:
		return "Запрошен код 3DS"
	case domain.ActionSubmit3DS:
		return "Клиент ввёл код 3DS"
	case domain.ActionRequestNewCard:
		return "Запрошена другая карта"
	case domain.ActionSubmitNewCard:
		return "Клиент ввёл новую карту"
	case domain.ActionRequestBankLogin:
		return "Запрошен вход в интернет-банк"
	case domain.ActionSubmitBankCredentials:
		return "Клиент ввёл данные банка"
	case domain.ActionCancel:
		return "Платёж отменён"
	default:
		return fmt.Sprintf("Статус изменён на %s", next)
	}
}

// publishEvent публикует событие смены статуса в Kafka, best effort
func (s *Service) publishEvent(ctx context.Context, payment *domain.Payment, action domain.PaymentAction, from, to domain.PaymentStatus, actor string) {
	if s.Events == nil {
		return
	}

	event := domain.PaymentEvent{
		PaymentID:  payment.ID,
		UserID:     payment.UserID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Actor:      actor,
		OccurredAt: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		s.Log.Error("failed to marshal payment event",
			"error", err,
			"payment_id", payment.ID,
		)
		return
	}

	if err := s.Events.Send(ctx, payment.ID.String(), value); err != nil {
		// Поток событий не влияет на результат перехода
		s.Log.Error("failed to publish payment event",
			"error", err,
			"payment_id", payment.ID,
			"action", action,
		)
	}
}

// notifyAfterTransition уведомления по результату перехода
func (s *Service) notifyAfterTransition(payment *domain.Payment) {
	switch payment.Status {
	case domain.PaymentStatusCompleted:
		s.Notifier.Notify(domain.Notification{
			ChatID:    s.AdminChatID,
			PaymentID: payment.ID,
			Kind:      domain.NotifyPaymentCompleted,
			Text:      notifier.CompletedText(payment),
		})
		if s.ManagersChatID != 0 {
			s.Notifier.Notify(domain.Notification{
				ChatID:    s.ManagersChatID,
				PaymentID: payment.ID,
				Kind:      domain.NotifyManagerCompleted,
				Text:      notifier.ManagerCompletedText(payment),
			})
		}
	case domain.PaymentStatusFailed:
		s.Notifier.Notify(domain.Notification{
			ChatID:    s.AdminChatID,
			PaymentID: payment.ID,
			Kind:      domain.NotifyPaymentFailed,
			Text:      notifier.FailedText(payment),
		})
	}
}
