package review

import (
	"context"
	"strings"
	"testing"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/google/uuid"
)

func testCardInput(userID uuid.UUID) service.CardPaymentInput {
	return service.CardPaymentInput{
		PaymentInput: service.PaymentInput{
			UserID:   userID,
			Amount:   1500,
			Currency: "rub",
		},
		Card: domain.CardDetails{
			Holder: "IVAN PETROV",
			Number: "4276 1234 1234 5678",
			Expiry: "12/27",
			CVV:    "123",
		},
	}
}

func testBankInput(userID uuid.UUID) service.BankPaymentInput {
	return service.BankPaymentInput{
		PaymentInput: service.PaymentInput{
			UserID:   userID,
			Amount:   5000,
			Currency: "RUB",
		},
		BankName: "Сбербанк",
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestCreateCardPayment(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)

	userID := uuid.New()
	payment, err := svc.CreateCardPayment(context.Background(), testCardInput(userID))
	if err != nil {
		t.Fatalf("CreateCardPayment failed: %v", err)
	}

	if payment.Status != domain.PaymentStatusCardChecking {
		t.Errorf("status = %s, want %s", payment.Status, domain.PaymentStatusCardChecking)
	}
	if payment.Currency != "RUB" {
		t.Errorf("currency = %s, want RUB", payment.Currency)
	}
	if payment.CardNumber == nil || *payment.CardNumber != "4276123412345678" {
		t.Errorf("card number not normalized: %v", payment.CardNumber)
	}
	if payment.ExpiresAt == nil {
		t.Error("expires_at is not set")
	}
	if payment.MaxAttempts != domain.DefaultMaxAttempts {
		t.Errorf("max attempts = %d, want %d", payment.MaxAttempts, domain.DefaultMaxAttempts)
	}

	steps, err := repo.ListByPayment(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("ListByPayment failed: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected 1 initial step, got %d", len(steps))
	}
	if steps[0].StepType != domain.StepTypePaymentCreated {
		t.Errorf("step type = %s, want %s", steps[0].StepType, domain.StepTypePaymentCreated)
	}
	if steps[0].Status != payment.Status {
		t.Errorf("initial step status = %s, payment status = %s", steps[0].Status, payment.Status)
	}

	created := notifier.byKind(domain.NotifyPaymentCreated)
	if len(created) != 1 {
		t.Fatalf("expected 1 created notification, got %d", len(created))
	}
	if created[0].Keyboard == nil {
		t.Error("admin notification has no action keyboard")
	}
	// Полный номер карты не попадает в уведомление
	if containsAny(created[0].Text, "4276123412345678", "4276 1234 1234 5678") {
		t.Error("notification text leaks full card number")
	}
	if !strings.Contains(created[0].Text, "5678") {
		t.Error("notification text has no masked card tail")
	}

	managers := notifier.byKind(domain.NotifyManagerCreated)
	if len(managers) != 1 {
		t.Fatalf("expected 1 manager notification, got %d", len(managers))
	}
}

func TestCreateCardPayment_Validation(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubNotifier{})

	tests := []struct {
		name   string
		mutate func(*service.CardPaymentInput)
	}{
		{"zero user id", func(in *service.CardPaymentInput) { in.UserID = uuid.Nil }},
		{"zero amount", func(in *service.CardPaymentInput) { in.Amount = 0 }},
		{"negative amount", func(in *service.CardPaymentInput) { in.Amount = -10 }},
		{"amount too large", func(in *service.CardPaymentInput) { in.Amount = 1000000 }},
		{"bad currency", func(in *service.CardPaymentInput) { in.Currency = "RUBLE" }},
		{"empty holder", func(in *service.CardPaymentInput) { in.Card.Holder = "  " }},
		{"short card number", func(in *service.CardPaymentInput) { in.Card.Number = "1234" }},
		{"card number with letters", func(in *service.CardPaymentInput) { in.Card.Number = "4276abcd12345678" }},
		{"bad expiry month", func(in *service.CardPaymentInput) { in.Card.Expiry = "13/27" }},
		{"bad expiry format", func(in *service.CardPaymentInput) { in.Card.Expiry = "122027" }},
		{"expired card", func(in *service.CardPaymentInput) { in.Card.Expiry = "01/20" }},
		{"bad cvv", func(in *service.CardPaymentInput) { in.Card.CVV = "12" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testCardInput(uuid.New())
			tt.mutate(&input)

			_, err := svc.CreateCardPayment(context.Background(), input)
			if !domain.IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateCryptoPayment(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubNotifier{})

	input := service.CryptoPaymentInput{
		PaymentInput: service.PaymentInput{
			UserID:   uuid.New(),
			Amount:   300,
			Currency: "USD",
		},
		CryptoType:    "USDT",
		Network:       "TRC20",
		WalletAddress: "TXYZabc123",
	}

	payment, err := svc.CreateCryptoPayment(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateCryptoPayment failed: %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("status = %s, want %s", payment.Status, domain.PaymentStatusPending)
	}
	if payment.CryptoType == nil || *payment.CryptoType != "USDT" {
		t.Errorf("crypto type = %v, want USDT", payment.CryptoType)
	}
}

func TestCreateCryptoPayment_MissingType(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubNotifier{})

	input := service.CryptoPaymentInput{
		PaymentInput: service.PaymentInput{
			UserID:   uuid.New(),
			Amount:   300,
			Currency: "USD",
		},
	}

	_, err := svc.CreateCryptoPayment(context.Background(), input)
	if !domain.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateBankPayment_MissingBankName(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubNotifier{})

	input := testBankInput(uuid.New())
	input.BankName = ""

	_, err := svc.CreateBankPayment(context.Background(), input)
	if !domain.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreatePayment_RepoFailure(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = context.DeadlineExceeded
	svc := newTestService(repo, &stubNotifier{})

	_, err := svc.CreateCardPayment(context.Background(), testCardInput(uuid.New()))
	if !domain.IsBusinessError(err) {
		t.Fatalf("expected BusinessError, got %v", err)
	}
}
