package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEvent событие смены статуса платежа для внешнего стрима (Kafka)
type PaymentEvent struct {
	PaymentID  uuid.UUID     `json:"payment_id"`
	UserID     uuid.UUID     `json:"user_id"`
	Action     PaymentAction `json:"action"`
	FromStatus PaymentStatus `json:"from_status"`
	ToStatus   PaymentStatus `json:"to_status"`
	Actor      string        `json:"actor"`
	OccurredAt time.Time     `json:"occurred_at"`
}
