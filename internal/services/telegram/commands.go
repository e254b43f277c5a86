package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

const helpText = `Команды оператора:
/payments — последние заявки
/payment <id> — заявка с историей шагов
/approve <id> — подтвердить платёж
/approve_card <id> — карта прошла проверку
/reject <id> [причина] — отклонить
/request_3ds <id> — запросить код 3DS
/3ds <id> — подтвердить код 3DS
/ask_new_card <id> — запросить другую карту
/ask_bank_login <id> — запросить вход в банк
/cancel <id> — отменить заявку`

// commandActions команды, которые напрямую применяют действие к платежу
var commandActions = map[string]domain.PaymentAction{
	"approve":        domain.ActionApprove,
	"approve_card":   domain.ActionApproveCard,
	"reject":         domain.ActionReject,
	"request_3ds":    domain.ActionRequest3DS,
	"3ds":            domain.ActionApprove3DS,
	"ask_new_card":   domain.ActionRequestNewCard,
	"ask_bank_login": domain.ActionRequestBankLogin,
	"cancel":         domain.ActionCancel,
}

// handleCommand выполняет команду уже авторизованного оператора
func (s *Service) handleCommand(ctx context.Context, chatID int64, from *domain.TelegramUser, command string, args []string) error {
	switch command {
	case "start", "help":
		s.reply(ctx, chatID, helpText)
		return nil

	case "payments":
		return s.handleListPayments(ctx, chatID)

	case "payment":
		return s.handleShowPayment(ctx, chatID, command, args)
	}

	action, ok := commandActions[command]
	if !ok {
		s.reply(ctx, chatID, "Неизвестная команда, /help — список команд")
		return nil
	}

	paymentID, err := parsePaymentIDArg(command, args)
	if err != nil {
		s.reply(ctx, chatID, fmt.Sprintf("Использование: /%s <id платежа>", command))
		return err
	}

	return s.applyAction(ctx, chatID, from, paymentID, action)
}

// applyAction применяет действие оператора к платежу и отвечает в чат
func (s *Service) applyAction(ctx context.Context, chatID int64, from *domain.TelegramUser, paymentID uuid.UUID, action domain.PaymentAction) error {
	payment, err := s.Review.Transition(ctx, paymentID, action, domain.ActorAdmin(from.ID))
	if err != nil {
		s.replyActionError(ctx, chatID, paymentID, err)
		return nil
	}

	s.Log.Info("operator action applied",
		"payment_id", paymentID,
		"action", action,
		"telegram_user_id", from.ID,
	)

	s.reply(ctx, chatID, fmt.Sprintf("✅ %s\nПлатёж %s → %s", actionDone(action), paymentID, payment.Status))
	return nil
}

// replyActionError переводит ошибку перехода в понятный ответ оператору
func (s *Service) replyActionError(ctx context.Context, chatID int64, paymentID uuid.UUID, err error) {
	var transitionErr *domain.InvalidTransitionError
	switch {
	case errors.As(err, &transitionErr):
		// Повторная доставка или гонка: платёж уже обработан
		s.reply(ctx, chatID, fmt.Sprintf("⚠️ Действие недоступно: платёж %s уже в статусе %s", paymentID, transitionErr.Current))
	case errors.Is(err, domain.ErrPaymentNotFound):
		s.reply(ctx, chatID, fmt.Sprintf("Платёж %s не найден", paymentID))
	default:
		s.Log.Error("failed to apply operator action",
			"error", err,
			"payment_id", paymentID,
		)
		s.reply(ctx, chatID, "Не удалось выполнить действие, попробуйте ещё раз")
	}
}

func (s *Service) handleListPayments(ctx context.Context, chatID int64) error {
	payments, err := s.Review.ListRecent(ctx, 10)
	if err != nil {
		s.Log.Error("failed to list payments", "error", err)
		s.reply(ctx, chatID, "Не удалось получить список заявок")
		return nil
	}

	if len(payments) == 0 {
		s.reply(ctx, chatID, "Заявок пока нет")
		return nil
	}

	var b strings.Builder
	b.WriteString("Последние заявки:\n")
	for _, p := range payments {
		fmt.Fprintf(&b, "\n%s\n%.2f %s • %s • %s\n", p.ID, p.Amount, p.Currency, p.Method, p.Status)
	}

	s.reply(ctx, chatID, b.String())
	return nil
}

func (s *Service) handleShowPayment(ctx context.Context, chatID int64, command string, args []string) error {
	paymentID, err := parsePaymentIDArg(command, args)
	if err != nil {
		s.reply(ctx, chatID, "Использование: /payment <id платежа>")
		return err
	}

	payment, steps, err := s.Review.GetPaymentForReview(ctx, paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			s.reply(ctx, chatID, fmt.Sprintf("Платёж %s не найден", paymentID))
			return nil
		}
		s.Log.Error("failed to get payment for review",
			"error", err,
			"payment_id", paymentID,
		)
		s.reply(ctx, chatID, "Не удалось получить заявку")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Заявка %s\n", payment.ID)
	fmt.Fprintf(&b, "Сумма: %.2f %s\n", payment.Amount, payment.Currency)
	fmt.Fprintf(&b, "Способ: %s\n", payment.Method)
	fmt.Fprintf(&b, "Статус: %s\n", payment.Status)
	if masked := payment.MaskedCardNumber(); masked != "" {
		fmt.Fprintf(&b, "Карта: %s\n", masked)
	}
	fmt.Fprintf(&b, "Попытки: %d из %d\n", payment.AttemptsCount, payment.MaxAttempts)

	b.WriteString("\nИстория:\n")
	for _, step := range steps {
		fmt.Fprintf(&b, "%s — %s (%s)\n",
			step.CreatedAt.Format("02.01 15:04:05"), step.Description, step.Status)
	}

	s.reply(ctx, chatID, b.String())
	return nil
}

// parsePaymentIDArg разбирает id платежа из аргументов команды
func parsePaymentIDArg(command string, args []string) (uuid.UUID, error) {
	if len(args) < 1 {
		return uuid.Nil, &domain.MalformedCommandError{
			Input:  "/" + command,
			Reason: "payment id is required",
		}
	}

	paymentID, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, &domain.MalformedCommandError{
			Input:  "/" + command + " " + args[0],
			Reason: "payment id is not a valid UUID",
		}
	}

	return paymentID, nil
}

func actionDone(action domain.PaymentAction) string {
	switch action {
	case domain.ActionApprove:
		return "Платёж подтверждён"
	case domain.ActionApproveCard:
		return "Карта одобрена"
	case domain.ActionApprove3DS:
		return "Код 3DS подтверждён"
	case domain.ActionReject:
		return "Платёж отклонён"
	case domain.ActionRequest3DS:
		return "Код 3DS запрошен"
	case domain.ActionRequestNewCard:
		return "Запрошена другая карта"
	case domain.ActionRequestBankLogin:
		return "Запрошен вход в банк"
	case domain.ActionCancel:
		return "Заявка отменена"
	default:
		return "Действие выполнено"
	}
}
