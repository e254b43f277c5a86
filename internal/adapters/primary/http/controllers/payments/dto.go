package payments

import (
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
)

// Запросы на создание заявки. Валидация значений живёт в usecase,
// binding отсекает только структурно битый JSON

type createCardPaymentRequest struct {
	Amount     float64 `json:"amount" binding:"required"`
	Currency   string  `json:"currency" binding:"required"`
	CardHolder string  `json:"card_holder" binding:"required"`
	CardNumber string  `json:"card_number" binding:"required"`
	CardExpiry string  `json:"card_expiry" binding:"required"`
	CardCVV    string  `json:"card_cvv" binding:"required"`
}

type createCryptoPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required"`
	Currency      string  `json:"currency" binding:"required"`
	CryptoType    string  `json:"crypto_type" binding:"required"`
	Network       string  `json:"network"`
	WalletAddress string  `json:"wallet_address"`
}

type createBankPaymentRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency" binding:"required"`
	BankName string  `json:"bank_name" binding:"required"`
}

type submit3DSRequest struct {
	Code string `json:"code" binding:"required"`
}

type submitNewCardRequest struct {
	CardHolder string `json:"card_holder" binding:"required"`
	CardNumber string `json:"card_number" binding:"required"`
	CardExpiry string `json:"card_expiry" binding:"required"`
	CardCVV    string `json:"card_cvv" binding:"required"`
}

type submitBankCredentialsRequest struct {
	Login    string  `json:"login" binding:"required"`
	Password string  `json:"password" binding:"required"`
	SMSCode  *string `json:"sms_code"`
}

// paymentResponse платёж в ответах API
// Реквизиты карты, коды и банковские данные наружу не отдаются никогда,
// от карты остаётся только маскированный номер
type paymentResponse struct {
	ID            string     `json:"id"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	MaskedCard    string     `json:"masked_card,omitempty"`
	CryptoType    *string    `json:"crypto_type,omitempty"`
	Network       *string    `json:"network,omitempty"`
	WalletAddress *string    `json:"wallet_address,omitempty"`
	BankName      *string    `json:"bank_name,omitempty"`
	ProofPath     *string    `json:"proof_path,omitempty"`
	AttemptsCount int        `json:"attempts_count"`
	MaxAttempts   int        `json:"max_attempts"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID.String(),
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        string(p.Method),
		Status:        string(p.Status),
		MaskedCard:    p.MaskedCardNumber(),
		CryptoType:    p.CryptoType,
		Network:       p.Network,
		WalletAddress: p.WalletAddress,
		BankName:      p.BankName,
		ProofPath:     p.ProofPath,
		AttemptsCount: p.AttemptsCount,
		MaxAttempts:   p.MaxAttempts,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		ExpiresAt:     p.ExpiresAt,
	}
}

type stepResponse struct {
	StepType    string    `json:"step_type"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
	CreatedAt   time.Time `json:"created_at"`
}

func toStepResponses(steps []domain.PaymentStep) []stepResponse {
	out := make([]stepResponse, 0, len(steps))
	for _, s := range steps {
		out = append(out, stepResponse{
			StepType:    string(s.StepType),
			Status:      string(s.Status),
			Description: s.Description,
			Actor:       s.Actor,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out
}
