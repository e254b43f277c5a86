package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

// callbackPrefix формат callback-данных кнопок: dep:<payment_id>:<действие>
const callbackPrefix = "dep"

// callbackActions действия, доступные с inline-кнопок
var callbackActions = map[string]domain.PaymentAction{
	"approve":        domain.ActionApprove,
	"reject":         domain.ActionReject,
	"request_3ds":    domain.ActionRequest3DS,
	"ask_new_card":   domain.ActionRequestNewCard,
	"ask_bank_login": domain.ActionRequestBankLogin,
	"cancel":         domain.ActionCancel,
}

// HandleCallback обрабатывает нажатие inline-кнопки оператором
func (s *Service) HandleCallback(ctx context.Context, callback *domain.CallbackQuery) error {
	if callback == nil {
		return fmt.Errorf("callback query is nil")
	}

	// Авторизация до разбора данных и до любых переходов
	if !s.isAuthorized(callback.From) {
		s.Log.Warn("unauthorized callback",
			"callback_id", callback.ID,
		)
		s.answerCallback(ctx, callback.ID, "⛔ Недостаточно прав", true)
		return nil
	}

	if callback.Data == nil {
		s.answerCallback(ctx, callback.ID, "Пустой callback", true)
		return &domain.MalformedCommandError{Input: "", Reason: "callback data is empty"}
	}

	paymentID, action, err := ParseCallbackData(*callback.Data)
	if err != nil {
		s.Log.Warn("malformed callback",
			"error", err,
			"callback_id", callback.ID,
		)
		s.answerCallback(ctx, callback.ID, "Некорректные данные кнопки", true)
		return err
	}

	payment, err := s.Review.Transition(ctx, paymentID, action, domain.ActorAdmin(callback.From.ID))
	if err != nil {
		var transitionErr *domain.InvalidTransitionError
		switch {
		case errors.As(err, &transitionErr):
			// Повторное нажатие или гонка операторов: спокойно сообщаем фактический статус
			s.answerCallback(ctx, callback.ID,
				fmt.Sprintf("Уже обработано: статус %s", transitionErr.Current), false)
			return nil
		case errors.Is(err, domain.ErrPaymentNotFound):
			s.answerCallback(ctx, callback.ID, "Платёж не найден", true)
			return nil
		default:
			s.Log.Error("failed to apply callback action",
				"error", err,
				"payment_id", paymentID,
				"action", action,
			)
			s.answerCallback(ctx, callback.ID, "Не удалось выполнить действие", true)
			return err
		}
	}

	s.Log.Info("callback action applied",
		"payment_id", paymentID,
		"action", action,
		"telegram_user_id", callback.From.ID,
	)

	s.answerCallback(ctx, callback.ID, fmt.Sprintf("✅ %s", actionDone(action)), false)

	if callback.Message != nil && callback.Message.Chat != nil {
		s.reply(ctx, callback.Message.Chat.ID,
			fmt.Sprintf("%s\nПлатёж %s → %s", actionDone(action), paymentID, payment.Status))
	}

	return nil
}

// ParseCallbackData разбирает dep:<payment_id>:<действие>
func ParseCallbackData(data string) (uuid.UUID, domain.PaymentAction, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != callbackPrefix {
		return uuid.Nil, "", &domain.MalformedCommandError{
			Input:  data,
			Reason: "expected dep:<payment_id>:<action>",
		}
	}

	paymentID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, "", &domain.MalformedCommandError{
			Input:  data,
			Reason: "payment id is not a valid UUID",
		}
	}

	action, ok := callbackActions[parts[2]]
	if !ok {
		return uuid.Nil, "", &domain.MalformedCommandError{
			Input:  data,
			Reason: fmt.Sprintf("unknown action %q", parts[2]),
		}
	}

	return paymentID, action, nil
}
