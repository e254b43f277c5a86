package review

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/google/uuid"
)

const (
	minAmount = 0.01
	maxAmount = 100000
)

var (
	cardNumberRe  = regexp.MustCompile(`^\d{13,19}$`)
	cardExpiryRe  = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe         = regexp.MustCompile(`^\d{3,4}$`)
	threeDSCodeRe = regexp.MustCompile(`^\d{3,6}$`)
	smsCodeRe     = regexp.MustCompile(`^\d{4,6}$`)
)

func validatePaymentInput(input service.PaymentInput) error {
	if input.UserID == uuid.Nil {
		return &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if input.Amount < minAmount || input.Amount > maxAmount {
		return &domain.ValidationError{Field: "amount", Reason: "must be between 0.01 and 100000"}
	}
	if len(input.Currency) != 3 {
		return &domain.ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	return nil
}

func validateCard(card domain.CardDetails) error {
	if strings.TrimSpace(card.Holder) == "" {
		return &domain.ValidationError{Field: "card_holder", Reason: "is required"}
	}

	digits := strings.ReplaceAll(strings.ReplaceAll(card.Number, " ", ""), "-", "")
	if !cardNumberRe.MatchString(digits) {
		return &domain.ValidationError{Field: "card_number", Reason: "must contain 13-19 digits"}
	}

	if !cardExpiryRe.MatchString(card.Expiry) {
		return &domain.ValidationError{Field: "card_expiry", Reason: "must be in MM/YY format"}
	}
	if cardExpired(card.Expiry, time.Now()) {
		return &domain.ValidationError{Field: "card_expiry", Reason: "card is expired"}
	}

	if !cvvRe.MatchString(card.CVV) {
		return &domain.ValidationError{Field: "card_cvv", Reason: "must contain 3-4 digits"}
	}

	return nil
}

// cardExpired сравнивает MM/YY с текущим месяцем, формат уже проверен
func cardExpired(expiry string, now time.Time) bool {
	month, _ := strconv.Atoi(expiry[:2])
	year, _ := strconv.Atoi(expiry[3:])
	year += 2000

	if year != now.Year() {
		return year < now.Year()
	}
	return month < int(now.Month())
}

func validate3DSCode(code string) error {
	if !threeDSCodeRe.MatchString(code) {
		return &domain.ValidationError{Field: "code", Reason: "must contain 3-6 digits"}
	}
	return nil
}

func validateBankCredentials(creds domain.BankCredentials) error {
	if len(creds.Login) < 3 || len(creds.Login) > 100 {
		return &domain.ValidationError{Field: "bank_login", Reason: "must be 3-100 characters"}
	}
	if len(creds.Password) < 4 || len(creds.Password) > 255 {
		return &domain.ValidationError{Field: "bank_password", Reason: "must be 4-255 characters"}
	}
	if creds.SMSCode != nil && !smsCodeRe.MatchString(*creds.SMSCode) {
		return &domain.ValidationError{Field: "bank_sms_code", Reason: "must contain 4-6 digits"}
	}
	return nil
}
