package domain

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod способ пополнения
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCrypto       PaymentMethod = "crypto"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCrypto, PaymentMethodBankTransfer:
		return true
	default:
		return false
	}
}

// InitialStatus стартовый статус платежа для данного способа оплаты
// Карточные платежи сразу уходят на проверку карты, остальные ждут оператора
func (m PaymentMethod) InitialStatus() PaymentStatus {
	if m == PaymentMethodCard {
		return PaymentStatusCardChecking
	}
	return PaymentStatusPending
}

// PaymentStatus статус платежа в процессе ручной проверки
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"             // создан, ожидает оператора
	PaymentStatusCardChecking      PaymentStatus = "card_checking"       // карта на проверке
	PaymentStatusCardApproved      PaymentStatus = "card_approved"       // карта одобрена
	PaymentStatusCardRejected      PaymentStatus = "card_rejected"       // карта отклонена
	PaymentStatusWaiting3DS        PaymentStatus = "waiting_3ds"         // запрошен 3DS код у пользователя
	PaymentStatus3DSSubmitted      PaymentStatus = "3ds_submitted"       // пользователь прислал 3DS код
	PaymentStatus3DSApproved       PaymentStatus = "3ds_approved"        // 3DS код подтверждён
	PaymentStatus3DSRejected       PaymentStatus = "3ds_rejected"        // 3DS код отклонён
	PaymentStatusRequiresNewCard   PaymentStatus = "requires_new_card"   // нужна другая карта
	PaymentStatusRequiresBankLogin PaymentStatus = "requires_bank_login" // нужен вход в банк
	PaymentStatusProcessing        PaymentStatus = "processing"          // платёж исполняется
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCancelled         PaymentStatus = "cancelled"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal терминальный статус, из которого нет переходов
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// IsSoftTerminal отказ, из которого оператор может перенаправить платёж
// (новая карта или вход в банк), но обычные действия уже недоступны
func (s PaymentStatus) IsSoftTerminal() bool {
	return s == PaymentStatusCardRejected || s == PaymentStatus3DSRejected
}

func (s PaymentStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// PaymentMetadata метаданные платежа (JSONB) с поддержкой sql.Scanner
type PaymentMetadata map[string]interface{}

// Scan реализует sql.Scanner для сканирования JSONB из БД
func (m *PaymentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(PaymentMetadata)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = make(PaymentMetadata)
		return nil
	}

	if len(bytes) == 0 {
		*m = make(PaymentMetadata)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Value реализует driver.Valuer для сохранения в БД
func (m PaymentMetadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Payment платёж на ручной проверке
type Payment struct {
	ID       uuid.UUID     `json:"id" db:"id"`
	UserID   uuid.UUID     `json:"user_id" db:"user_id"` // пользователь казино (внешняя ссылка)
	Amount   float64       `json:"amount" db:"amount"`
	Currency string        `json:"currency" db:"currency"`
	Method   PaymentMethod `json:"method" db:"method"`
	Status   PaymentStatus `json:"status" db:"status"`

	// Карточные реквизиты (только для method=card)
	CardHolder  *string `json:"-" db:"card_holder"`
	CardNumber  *string `json:"-" db:"card_number"`
	CardExpiry  *string `json:"-" db:"card_expiry"`
	CardCVV     *string `json:"-" db:"card_cvv"`
	ThreeDSCode *string `json:"-" db:"three_ds_code"`

	// Крипта (только для method=crypto)
	CryptoType    *string `json:"crypto_type,omitempty" db:"crypto_type"`
	Network       *string `json:"network,omitempty" db:"network"`
	WalletAddress *string `json:"wallet_address,omitempty" db:"wallet_address"`

	// Банковский перевод (только для method=bank_transfer)
	BankName     *string `json:"bank_name,omitempty" db:"bank_name"`
	BankLogin    *string `json:"-" db:"bank_login"`
	BankPassword *string `json:"-" db:"bank_password"`
	BankSMSCode  *string `json:"-" db:"bank_sms_code"`

	ProofPath *string `json:"proof_path,omitempty" db:"proof_path"` // ключ чека в S3

	PaymentIP     *string `json:"-" db:"payment_ip"`
	UserAgent     *string `json:"-" db:"user_agent"`
	AttemptsCount int     `json:"attempts_count" db:"attempts_count"`
	MaxAttempts   int     `json:"max_attempts" db:"max_attempts"`

	Notes      *string         `json:"notes,omitempty" db:"notes"`
	AdminNotes *string         `json:"-" db:"admin_notes"`
	Metadata   PaymentMetadata `json:"metadata,omitempty" db:"metadata"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" db:"processed_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

const DefaultMaxAttempts = 10

// CardDetails реквизиты карты, присланные пользователем
type CardDetails struct {
	Holder string
	Number string
	Expiry string // MM/YY
	CVV    string
}

// BankCredentials данные входа в интернет-банк
type BankCredentials struct {
	Login    string
	Password string
	SMSCode  *string
}

// MaskedCardNumber маскированный номер карты для ответов API и шагов аудита
// Полный номер наружу не отдаём никогда
func (p *Payment) MaskedCardNumber() string {
	if p.CardNumber == nil {
		return ""
	}
	return MaskCardNumber(*p.CardNumber)
}

// MaskCardNumber оставляет только последние 4 цифры
func MaskCardNumber(number string) string {
	digits := strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
	if len(digits) < 4 {
		return "****"
	}
	return "**** **** **** " + digits[len(digits)-4:]
}
