package stepRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	"github.com/google/uuid"
)

type stepColumns struct {
	TableName   string
	ID          string
	PaymentID   string
	StepType    string
	Status      string
	Description string
	Actor       string
	Details     string
	CreatedAt   string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns stepColumns
}

// New создаёт новый репозиторий для истории шагов платежа
func New(db persistence.Persistence, log *slog.Logger) ports.IStepRepo {
	cols := stepColumns{
		TableName:   "payment_steps",
		ID:          "id",
		PaymentID:   "payment_id",
		StepType:    "step_type",
		Status:      "status",
		Description: "description",
		Actor:       "actor",
		Details:     "details",
		CreatedAt:   "created_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (8 полей)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.PaymentID,
		r.columns.StepType,
		r.columns.Status,
		r.columns.Description,
		r.columns.Actor,
		r.columns.Details,
		r.columns.CreatedAt,
	)
}

// Append вставляет шаг истории через переданный executor
// Внутри транзакции перехода ex — это persistence.Transaction
func (r *Repository) Append(ctx context.Context, ex persistence.Executor, step *domain.PaymentStep) error {
	detailsValue, err := step.Details.Value()
	if err != nil {
		r.Log.Error("failed to marshal step details",
			"error", err,
			"payment_id", step.PaymentID,
		)
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.columns.TableName,
		r.allColumns(),
	)

	err = ex.Exec(ctx, query,
		step.ID,
		step.PaymentID,
		string(step.StepType),
		string(step.Status),
		step.Description,
		step.Actor,
		detailsValue,
		step.CreatedAt,
	)
	if err != nil {
		r.Log.Error("failed to append payment step",
			"error", err,
			"payment_id", step.PaymentID,
			"step_type", step.StepType,
		)
		return fmt.Errorf("failed to append payment step: %w", err)
	}

	r.Log.Debug("payment step appended",
		"payment_id", step.PaymentID,
		"step_type", step.StepType,
		"status", step.Status,
	)

	return nil
}

// ListByPayment шаги платежа в хронологическом порядке
func (r *Repository) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]domain.PaymentStep, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC, %s ASC`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.PaymentID,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	var steps []domain.PaymentStep
	if err := r.db.Select(ctx, &steps, query, paymentID); err != nil {
		r.Log.Error("failed to list payment steps",
			"error", err,
			"payment_id", paymentID,
		)
		return nil, fmt.Errorf("failed to list payment steps: %w", err)
	}

	return steps, nil
}

// LatestByPayment последний шаг платежа
func (r *Repository) LatestByPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentStep, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC, %s DESC LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.PaymentID,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	var step domain.PaymentStep
	err := r.db.Get(ctx, &step, query, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.Log.Error("failed to get latest payment step",
			"error", err,
			"payment_id", paymentID,
		)
		return nil, fmt.Errorf("failed to get latest payment step: %w", err)
	}

	return &step, nil
}
