package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NotificationKind вид события, по которому уведомляем операторов
// Пара (payment_id, kind) — ключ дедупликации: не больше одной успешной отправки
type NotificationKind string

const (
	NotifyPaymentCreated           NotificationKind = "payment_created"
	NotifyNewCardSubmitted         NotificationKind = "new_card_submitted"
	Notify3DSSubmitted             NotificationKind = "three_ds_submitted"
	NotifyBankCredentialsSubmitted NotificationKind = "bank_credentials_submitted"
	NotifyPaymentCompleted         NotificationKind = "payment_completed"
	NotifyPaymentFailed            NotificationKind = "payment_failed"
	NotifyManagerCreated           NotificationKind = "manager_created"   // копия в чат менеджеров
	NotifyManagerCompleted         NotificationKind = "manager_completed" // копия в чат менеджеров
)

// DedupKey ключ дедупликации уведомления
func (k NotificationKind) DedupKey(paymentID uuid.UUID) string {
	return fmt.Sprintf("notify:%s:%s", paymentID, k)
}

// Notification задание на отправку уведомления в Telegram-чат
type Notification struct {
	ChatID    int64
	PaymentID uuid.UUID
	Kind      NotificationKind
	Text      string
	Keyboard  map[string]interface{} // inline-клавиатура с действиями оператора, может быть nil
}
