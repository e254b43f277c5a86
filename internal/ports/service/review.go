package service

import (
	"context"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/google/uuid"
)

// PaymentInput общие поля заявки на пополнение
type PaymentInput struct {
	UserID    uuid.UUID
	Amount    float64
	Currency  string
	PaymentIP string
	UserAgent string
}

// CardPaymentInput заявка на пополнение картой
type CardPaymentInput struct {
	PaymentInput
	Card domain.CardDetails
}

// CryptoPaymentInput заявка на пополнение криптой
type CryptoPaymentInput struct {
	PaymentInput
	CryptoType    string
	Network       string
	WalletAddress string
}

// BankPaymentInput заявка на пополнение банковским переводом
type BankPaymentInput struct {
	PaymentInput
	BankName string
}

// IReviewService основной use case ручной проверки платежей
type IReviewService interface {
	CreateCardPayment(ctx context.Context, input CardPaymentInput) (*domain.Payment, error)
	CreateCryptoPayment(ctx context.Context, input CryptoPaymentInput) (*domain.Payment, error)
	CreateBankPayment(ctx context.Context, input BankPaymentInput) (*domain.Payment, error)

	// Transition решение оператора или системное действие
	Transition(ctx context.Context, paymentID uuid.UUID, action domain.PaymentAction, actor string) (*domain.Payment, error)

	// Пользовательские сабмиты: валидация + переход + сохранение данных одним юнитом
	Submit3DSCode(ctx context.Context, userID, paymentID uuid.UUID, code string) (*domain.Payment, error)
	SubmitNewCard(ctx context.Context, userID, paymentID uuid.UUID, card domain.CardDetails) (*domain.Payment, error)
	SubmitBankCredentials(ctx context.Context, userID, paymentID uuid.UUID, creds domain.BankCredentials) (*domain.Payment, error)

	AttachProof(ctx context.Context, userID, paymentID uuid.UUID, filename string, contentType string, data []byte) (string, error)

	// GetPayment с проверкой владельца; для чужого платежа — ErrPaymentNotFound
	GetPayment(ctx context.Context, userID, paymentID uuid.UUID) (*domain.Payment, error)
	ListSteps(ctx context.Context, userID, paymentID uuid.UUID) ([]domain.PaymentStep, error)

	// Админские выборки (без проверки владельца, авторизация на уровне команд)
	GetPaymentForReview(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, []domain.PaymentStep, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Payment, error)
}
