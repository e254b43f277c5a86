package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/admin/tg-bots/cashier-bot/internal/services/notifier"
	"github.com/google/uuid"
)

// paymentTTL срок жизни заявки: по истечении платёж отменяется автоматически
const paymentTTL = 24 * time.Hour

// CreateCardPayment создаёт заявку на пополнение картой
// Карточные платежи сразу уходят на проверку карты
func (s *Service) CreateCardPayment(ctx context.Context, input service.CardPaymentInput) (*domain.Payment, error) {
	if err := validatePaymentInput(input.PaymentInput); err != nil {
		return nil, err
	}
	if err := validateCard(input.Card); err != nil {
		return nil, err
	}

	payment := s.newPayment(input.PaymentInput, domain.PaymentMethodCard)
	cardNumber := strings.ReplaceAll(strings.ReplaceAll(input.Card.Number, " ", ""), "-", "")
	payment.CardHolder = &input.Card.Holder
	payment.CardNumber = &cardNumber
	payment.CardExpiry = &input.Card.Expiry
	payment.CardCVV = &input.Card.CVV

	if err := s.createWithInitialStep(ctx, payment); err != nil {
		return nil, err
	}

	s.notifyCreated(payment)
	return payment, nil
}

// CreateCryptoPayment создаёт заявку на пополнение криптовалютой
func (s *Service) CreateCryptoPayment(ctx context.Context, input service.CryptoPaymentInput) (*domain.Payment, error) {
	if err := validatePaymentInput(input.PaymentInput); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CryptoType) == "" {
		return nil, &domain.ValidationError{Field: "crypto_type", Reason: "is required"}
	}

	payment := s.newPayment(input.PaymentInput, domain.PaymentMethodCrypto)
	payment.CryptoType = &input.CryptoType
	if input.Network != "" {
		payment.Network = &input.Network
	}
	if input.WalletAddress != "" {
		payment.WalletAddress = &input.WalletAddress
	}

	if err := s.createWithInitialStep(ctx, payment); err != nil {
		return nil, err
	}

	s.notifyCreated(payment)
	return payment, nil
}

// CreateBankPayment создаёт заявку на пополнение банковским переводом
func (s *Service) CreateBankPayment(ctx context.Context, input service.BankPaymentInput) (*domain.Payment, error) {
	if err := validatePaymentInput(input.PaymentInput); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.BankName) == "" {
		return nil, &domain.ValidationError{Field: "bank_name", Reason: "is required"}
	}

	payment := s.newPayment(input.PaymentInput, domain.PaymentMethodBankTransfer)
	payment.BankName = &input.BankName

	if err := s.createWithInitialStep(ctx, payment); err != nil {
		return nil, err
	}

	s.notifyCreated(payment)
	return payment, nil
}

func (s *Service) newPayment(input service.PaymentInput, method domain.PaymentMethod) *domain.Payment {
	now := time.Now()
	expiresAt := now.Add(paymentTTL)

	payment := &domain.Payment{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Amount:      input.Amount,
		Currency:    strings.ToUpper(input.Currency),
		Method:      method,
		Status:      method.InitialStatus(),
		MaxAttempts: domain.DefaultMaxAttempts,
		Metadata:    domain.PaymentMetadata{},
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   &expiresAt,
	}

	if input.PaymentIP != "" {
		payment.PaymentIP = &input.PaymentIP
	}
	if input.UserAgent != "" {
		payment.UserAgent = &input.UserAgent
	}

	return payment
}

func (s *Service) createWithInitialStep(ctx context.Context, payment *domain.Payment) error {
	step := &domain.PaymentStep{
		ID:          uuid.New(),
		PaymentID:   payment.ID,
		StepType:    domain.StepTypePaymentCreated,
		Status:      payment.Status,
		Description: fmt.Sprintf("Заявка на пополнение создана (%s)", payment.Method),
		Actor:       domain.ActorUser(payment.UserID),
		Details: domain.StepDetails{
			"method": string(payment.Method),
			"amount": payment.Amount,
		},
		CreatedAt: payment.CreatedAt,
	}

	if err := s.PaymentRepo.Create(ctx, payment, step); err != nil {
		s.Log.Error("failed to create payment",
			"error", err,
			"user_id", payment.UserID,
			"method", payment.Method,
		)
		return domain.WrapBusinessError(err)
	}

	s.Log.Info("payment created",
		"payment_id", payment.ID,
		"user_id", payment.UserID,
		"method", payment.Method,
		"amount", payment.Amount,
		"status", payment.Status,
	)

	return nil
}

// notifyCreated уведомляет операторов и менеджеров о новой заявке
func (s *Service) notifyCreated(payment *domain.Payment) {
	s.Notifier.Notify(domain.Notification{
		ChatID:    s.AdminChatID,
		PaymentID: payment.ID,
		Kind:      domain.NotifyPaymentCreated,
		Text:      notifier.NewPaymentText(payment),
		Keyboard:  notifier.BuildAdminActionKeyboard(payment.ID),
	})

	if s.ManagersChatID != 0 {
		s.Notifier.Notify(domain.Notification{
			ChatID:    s.ManagersChatID,
			PaymentID: payment.ID,
			Kind:      domain.NotifyManagerCreated,
			Text:      notifier.ManagerCreatedText(payment),
		})
	}
}
