package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// StepType тип шага в истории платежа
type StepType string

const (
	StepTypePaymentCreated    StepType = "payment_created"
	StepTypeCardPayment       StepType = "card_payment"
	StepType3DSVerification   StepType = "3ds_verification"
	StepTypeNewCardRequest    StepType = "new_card_request"
	StepTypeBankLogin         StepType = "bank_login"
	StepTypePaymentProcessing StepType = "payment_processing"
	StepTypePaymentReview     StepType = "payment_review" // решение оператора
	StepTypePaymentCompleted  StepType = "payment_completed"
	StepTypePaymentFailed     StepType = "payment_failed"
	StepTypePaymentCancelled  StepType = "payment_cancelled"
)

// StepTypeForStatus тип шага, соответствующий результирующему статусу перехода
func StepTypeForStatus(status PaymentStatus) StepType {
	switch status {
	case PaymentStatusCardChecking, PaymentStatusCardApproved, PaymentStatusCardRejected:
		return StepTypeCardPayment
	case PaymentStatusWaiting3DS, PaymentStatus3DSSubmitted, PaymentStatus3DSApproved, PaymentStatus3DSRejected:
		return StepType3DSVerification
	case PaymentStatusRequiresNewCard:
		return StepTypeNewCardRequest
	case PaymentStatusRequiresBankLogin:
		return StepTypeBankLogin
	case PaymentStatusProcessing:
		return StepTypePaymentProcessing
	case PaymentStatusCompleted:
		return StepTypePaymentCompleted
	case PaymentStatusFailed:
		return StepTypePaymentFailed
	case PaymentStatusCancelled:
		return StepTypePaymentCancelled
	default:
		return StepTypePaymentReview
	}
}

// StepDetails дополнительные данные шага (JSONB)
// Реквизиты карты и пароли сюда не попадают, только маскированные значения
type StepDetails = PaymentMetadata

// PaymentStep запись в append-only истории платежа
// Статус последнего шага всегда совпадает с материализованным статусом платежа
type PaymentStep struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	PaymentID   uuid.UUID     `json:"payment_id" db:"payment_id"`
	StepType    StepType      `json:"step_type" db:"step_type"`
	Status      PaymentStatus `json:"status" db:"status"` // статус платежа после шага
	Description string        `json:"description" db:"description"`
	Actor       string        `json:"actor" db:"actor"` // кто инициировал: admin:<tg_id>, user:<uuid>, system
	Details     StepDetails   `json:"details,omitempty" db:"details"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// Акторы шагов
const ActorSystem = "system"

func ActorAdmin(telegramUserID int64) string {
	return "admin:" + strconv.FormatInt(telegramUserID, 10)
}

func ActorUser(userID uuid.UUID) string {
	return "user:" + userID.String()
}
